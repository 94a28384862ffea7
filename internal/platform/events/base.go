// Package events defines the domain events emitted by the admin API.
// Every state change commits exactly one of these through the unit of work.
package events

import (
	"fmt"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

// Event type codes follow the format: {domain}:{aggregate}:{action}

// Invitation event codes
const (
	EventTypeInvitationCreated  = "admin:invitation:created"
	EventTypeInvitationExpired  = "admin:invitation:expired"
	EventTypeInvitationAccepted = "admin:invitation:accepted"
	EventTypeInvitationRevoked  = "admin:invitation:revoked"
)

// SubAdmin event codes
const (
	EventTypeSubAdminPermissionsUpdated = "admin:sub_admin:permissions-updated"
	EventTypeSubAdminDisabled           = "admin:sub_admin:disabled"
	EventTypeSubAdminEnabled            = "admin:sub_admin:enabled"
	EventTypeSubAdminDeleted            = "admin:sub_admin:deleted"
)

// PendingRequest event codes
const (
	EventTypePendingRequestSubmitted = "admin:pending_request:submitted"
	EventTypePendingRequestApproved  = "admin:pending_request:approved"
	EventTypePendingRequestRejected  = "admin:pending_request:rejected"
	EventTypePendingRequestExecuted  = "admin:pending_request:executed"
	EventTypePendingRequestDeleted   = "admin:pending_request:deleted"
)

const domain = "admin"

// subject builds a subject string for domain events
// Format: {domain}.{aggregate}.{id}
func subject(aggregate, id string) string {
	return fmt.Sprintf("%s.%s.%s", domain, aggregate, id)
}

func newBase(ctx *common.ExecutionContext, eventType, aggregate, id string) common.BaseDomainEvent {
	return common.NewBaseDomainEvent(ctx, eventType, subject(aggregate, id))
}
