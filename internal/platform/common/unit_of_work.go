package common

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

// PersistFunc performs the state change of a use case. Repository calls made
// with the ctx it receives take part in the unit of work's transaction.
// Returning a *UseCaseError aborts the commit with that error.
type PersistFunc func(ctx context.Context) error

// UnitOfWork commits a state change together with its domain event and an
// audit log entry. It is the only way to obtain a successful Result.
//
//	func (uc *RevokeInvitationUseCase) Execute(ctx context.Context, cmd RevokeInvitationCommand,
//	    execCtx *common.ExecutionContext) common.Result[common.DomainEvent] {
//	    ...
//	    event := events.NewInvitationRevoked(execCtx, inv)
//	    return uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
//	        return uc.repo.Delete(ctx, inv.ID)
//	    })
//	}
type UnitOfWork interface {
	// Commit runs persist, then stores the event (collection "events") and
	// the audit entry (collection "audit_logs"). With transactions enabled
	// all three happen atomically.
	Commit(ctx context.Context, event DomainEvent, command any, persist PersistFunc) Result[DomainEvent]
}

// CommitValue commits through uow and, on success, yields value instead of the event.
func CommitValue[T any](ctx context.Context, uow UnitOfWork, value T, event DomainEvent, command any, persist PersistFunc) Result[T] {
	return Map(uow.Commit(ctx, event, command, persist), func(DomainEvent) T { return value })
}

// Auditable is an optional interface that commands can implement
// to customize how they are serialized for audit logging.
type Auditable interface {
	// ToAuditJSON returns the JSON representation for audit logging,
	// with secrets such as invitation tokens removed.
	ToAuditJSON() string
}

// AuditEntry is one row of the audit_logs collection.
type AuditEntry struct {
	ID            string    `bson:"_id" json:"id"`
	EntityType    string    `bson:"entityType" json:"entityType"`
	EntityID      string    `bson:"entityId,omitempty" json:"entityId,omitempty"`
	Operation     string    `bson:"operation" json:"operation"`
	OperationJSON string    `bson:"operationJson,omitempty" json:"operationJson,omitempty"`
	EventType     string    `bson:"eventType" json:"eventType"`
	PrincipalID   string    `bson:"principalId,omitempty" json:"principalId,omitempty"`
	CorrelationID string    `bson:"correlationId,omitempty" json:"correlationId,omitempty"`
	PerformedAt   time.Time `bson:"performedAt" json:"performedAt"`
}

// AuditCollection and EventCollection are written by every commit.
const (
	AuditCollection = "audit_logs"
	EventCollection = "events"
)

func newAuditEntry(event DomainEvent, command any) *AuditEntry {
	var operationJSON string
	if auditable, ok := command.(Auditable); ok {
		operationJSON = auditable.ToAuditJSON()
	} else if bytes, err := json.Marshal(command); err == nil {
		operationJSON = string(bytes)
	} else {
		operationJSON = "{}"
	}

	return &AuditEntry{
		ID:            uuid.NewString(),
		EntityType:    toPascalCase(subjectPart(event.Subject(), 1)),
		EntityID:      subjectPart(event.Subject(), 2),
		Operation:     operationName(command),
		OperationJSON: operationJSON,
		EventType:     event.EventType(),
		PrincipalID:   event.PrincipalID(),
		CorrelationID: event.CorrelationID(),
		PerformedAt:   event.Time(),
	}
}

// commitFailure translates an error from the persist step or the store into a UseCaseError.
func commitFailure(event DomainEvent, err error) *UseCaseError {
	var ucErr *UseCaseError
	if errors.As(err, &ucErr) {
		return ucErr
	}
	if errors.Is(err, repository.ErrDuplicateKey) || mongo.IsDuplicateKeyError(err) {
		return BusinessRuleError(ErrCodeDuplicateKey, "A conflicting record already exists", nil)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return NotFoundError(ErrCodeEntityMissing, "Entity not found", nil)
	}

	slog.Error("Unit of work commit failed",
		"eventType", event.EventType(),
		"subject", event.Subject(),
		"error", err)
	return InternalError(ErrCodeCommitFailed, "Failed to save changes")
}

// operationName is the command type name, e.g. "CreateInvitationCommand".
func operationName(command any) string {
	if command == nil {
		return "Unknown"
	}
	t := reflect.TypeOf(command)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// toPascalCase converts "pendingrequest" to "Pendingrequest" and
// "sub_admin" to "SubAdmin".
func toPascalCase(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	if b.Len() == 0 {
		return "Unknown"
	}
	return b.String()
}
