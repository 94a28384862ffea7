// Package audit reads the audit trail written by every unit of work commit.
package audit

import (
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

// Filter narrows an audit log listing. Zero fields match everything.
type Filter struct {
	EntityType  string
	EntityID    string
	PrincipalID string

	// Before pages backwards from a performedAt timestamp
	Before time.Time
	Limit  int64
}

// AuditLogDTO is the list view of an audit entry (without the operation payload)
type AuditLogDTO struct {
	ID            string    `json:"id"`
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId,omitempty"`
	Operation     string    `json:"operation"`
	EventType     string    `json:"eventType"`
	PrincipalID   string    `json:"principalId,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	PerformedAt   time.Time `json:"performedAt"`
}

// AuditLogDetailDTO adds the recorded command
type AuditLogDetailDTO struct {
	AuditLogDTO
	OperationJSON string `json:"operationJson,omitempty"`
}

// ToDTO converts an entry to its list view
func ToDTO(e *common.AuditEntry) AuditLogDTO {
	return AuditLogDTO{
		ID:            e.ID,
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		Operation:     e.Operation,
		EventType:     e.EventType,
		PrincipalID:   e.PrincipalID,
		CorrelationID: e.CorrelationID,
		PerformedAt:   e.PerformedAt,
	}
}

// ToDetailDTO converts an entry including its operation payload
func ToDetailDTO(e *common.AuditEntry) AuditLogDetailDTO {
	return AuditLogDetailDTO{AuditLogDTO: ToDTO(e), OperationJSON: e.OperationJSON}
}
