package events

import (
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

const aggregateInvitation = "invitation"

// InvitationCreated is emitted when the core administrator invites an email
type InvitationCreated struct {
	common.BaseDomainEvent
	InvitationID    string                     `json:"invitationId"`
	Email           string                     `json:"email"`
	ExpiresAt       time.Time                  `json:"expiresAt"`
	PagePermissions permission.PagePermissions `json:"pagePermissions"`
}

func (e *InvitationCreated) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		InvitationID    string                     `json:"invitationId"`
		Email           string                     `json:"email"`
		ExpiresAt       time.Time                  `json:"expiresAt"`
		PagePermissions permission.PagePermissions `json:"pagePermissions"`
	}{e.InvitationID, e.Email, e.ExpiresAt, e.PagePermissions})
}

func NewInvitationCreated(ctx *common.ExecutionContext, inv *invitation.Invitation) *InvitationCreated {
	return &InvitationCreated{
		BaseDomainEvent: newBase(ctx, EventTypeInvitationCreated, aggregateInvitation, inv.ID),
		InvitationID:    inv.ID,
		Email:           inv.Email,
		ExpiresAt:       inv.ExpiresAt,
		PagePermissions: inv.PagePermissions,
	}
}

// InvitationExpired is emitted when an expired invitation is first touched
type InvitationExpired struct {
	common.BaseDomainEvent
	InvitationID string `json:"invitationId"`
	Email        string `json:"email"`
}

func (e *InvitationExpired) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"invitationId": e.InvitationID,
		"email":        e.Email,
	})
}

func NewInvitationExpired(ctx *common.ExecutionContext, inv *invitation.Invitation) *InvitationExpired {
	return &InvitationExpired{
		BaseDomainEvent: newBase(ctx, EventTypeInvitationExpired, aggregateInvitation, inv.ID),
		InvitationID:    inv.ID,
		Email:           inv.Email,
	}
}

// InvitationAccepted is emitted when an invitee accepts and becomes a delegate
type InvitationAccepted struct {
	common.BaseDomainEvent
	InvitationID string `json:"invitationId"`
	SubAdminID   string `json:"subAdminId"`
	Email        string `json:"email"`
}

func (e *InvitationAccepted) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"invitationId": e.InvitationID,
		"subAdminId":   e.SubAdminID,
		"email":        e.Email,
	})
}

func NewInvitationAccepted(ctx *common.ExecutionContext, inv *invitation.Invitation, subAdminID string) *InvitationAccepted {
	return &InvitationAccepted{
		BaseDomainEvent: newBase(ctx, EventTypeInvitationAccepted, aggregateInvitation, inv.ID),
		InvitationID:    inv.ID,
		SubAdminID:      subAdminID,
		Email:           inv.Email,
	}
}

// InvitationRevoked is emitted when an invitation is deleted
type InvitationRevoked struct {
	common.BaseDomainEvent
	InvitationID string `json:"invitationId"`
	Email        string `json:"email"`
	Status       string `json:"status"`
}

func (e *InvitationRevoked) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"invitationId": e.InvitationID,
		"email":        e.Email,
		"status":       e.Status,
	})
}

func NewInvitationRevoked(ctx *common.ExecutionContext, inv *invitation.Invitation) *InvitationRevoked {
	return &InvitationRevoked{
		BaseDomainEvent: newBase(ctx, EventTypeInvitationRevoked, aggregateInvitation, inv.ID),
		InvitationID:    inv.ID,
		Email:           inv.Email,
		Status:          string(inv.Status),
	}
}
