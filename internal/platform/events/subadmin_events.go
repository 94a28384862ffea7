package events

import (
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

const aggregateSubAdmin = "sub_admin"

// SubAdminPermissionsUpdated is emitted when a delegate's grant changes
type SubAdminPermissionsUpdated struct {
	common.BaseDomainEvent
	SubAdminID      string                     `json:"subAdminId"`
	Email           string                     `json:"email"`
	PagePermissions permission.PagePermissions `json:"pagePermissions"`
}

func (e *SubAdminPermissionsUpdated) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		SubAdminID      string                     `json:"subAdminId"`
		Email           string                     `json:"email"`
		PagePermissions permission.PagePermissions `json:"pagePermissions"`
	}{e.SubAdminID, e.Email, e.PagePermissions})
}

func NewSubAdminPermissionsUpdated(ctx *common.ExecutionContext, s *subadmin.SubAdmin) *SubAdminPermissionsUpdated {
	return &SubAdminPermissionsUpdated{
		BaseDomainEvent: newBase(ctx, EventTypeSubAdminPermissionsUpdated, aggregateSubAdmin, s.ID),
		SubAdminID:      s.ID,
		Email:           s.Email,
		PagePermissions: s.PagePermissions,
	}
}

// SubAdminDisabled is emitted when a delegate is disabled
type SubAdminDisabled struct {
	common.BaseDomainEvent
	SubAdminID string `json:"subAdminId"`
	Email      string `json:"email"`
	Reason     string `json:"reason,omitempty"`
}

func (e *SubAdminDisabled) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"subAdminId": e.SubAdminID,
		"email":      e.Email,
		"reason":     e.Reason,
	})
}

func NewSubAdminDisabled(ctx *common.ExecutionContext, s *subadmin.SubAdmin) *SubAdminDisabled {
	return &SubAdminDisabled{
		BaseDomainEvent: newBase(ctx, EventTypeSubAdminDisabled, aggregateSubAdmin, s.ID),
		SubAdminID:      s.ID,
		Email:           s.Email,
		Reason:          s.DisabledReason,
	}
}

// SubAdminEnabled is emitted when a disabled delegate is re-enabled
type SubAdminEnabled struct {
	common.BaseDomainEvent
	SubAdminID string `json:"subAdminId"`
	Email      string `json:"email"`
}

func (e *SubAdminEnabled) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{"subAdminId": e.SubAdminID, "email": e.Email})
}

func NewSubAdminEnabled(ctx *common.ExecutionContext, s *subadmin.SubAdmin) *SubAdminEnabled {
	return &SubAdminEnabled{
		BaseDomainEvent: newBase(ctx, EventTypeSubAdminEnabled, aggregateSubAdmin, s.ID),
		SubAdminID:      s.ID,
		Email:           s.Email,
	}
}

// SubAdminDeleted is emitted when a delegate is removed
type SubAdminDeleted struct {
	common.BaseDomainEvent
	SubAdminID string `json:"subAdminId"`
	Email      string `json:"email"`
}

func (e *SubAdminDeleted) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{"subAdminId": e.SubAdminID, "email": e.Email})
}

func NewSubAdminDeleted(ctx *common.ExecutionContext, s *subadmin.SubAdmin) *SubAdminDeleted {
	return &SubAdminDeleted{
		BaseDomainEvent: newBase(ctx, EventTypeSubAdminDeleted, aggregateSubAdmin, s.ID),
		SubAdminID:      s.ID,
		Email:           s.Email,
	}
}
