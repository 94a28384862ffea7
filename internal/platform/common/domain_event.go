package common

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventSource is stamped on every event emitted by this service.
const EventSource = "portfolio:admin"

// DomainEvent is an immutable record of something that happened to an aggregate.
type DomainEvent interface {
	EventID() string

	// EventType has the form {domain}:{aggregate}:{action},
	// e.g. "admin:invitation:created"
	EventType() string

	// Subject has the form {domain}.{aggregate}.{id},
	// e.g. "admin.pendingrequest.6f1c..."
	Subject() string

	Time() time.Time
	CorrelationID() string
	ExecutionID() string
	PrincipalID() string

	// ToDataJSON serializes the event-specific payload.
	ToDataJSON() string
}

// BaseDomainEvent provides the envelope fields; concrete events embed it and
// override ToDataJSON.
type BaseDomainEvent struct {
	ID          string    `json:"eventId" bson:"_id"`
	Type        string    `json:"eventType" bson:"type"`
	Subj        string    `json:"subject" bson:"subject"`
	Timestamp   time.Time `json:"time" bson:"time"`
	Correlation string    `json:"correlationId" bson:"correlationId"`
	Execution   string    `json:"executionId" bson:"executionId"`
	Principal   string    `json:"principalId" bson:"principalId"`
}

// NewBaseDomainEvent creates a BaseDomainEvent populated from the execution context.
func NewBaseDomainEvent(ctx *ExecutionContext, eventType, subject string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		Subj:        subject,
		Timestamp:   time.Now(),
		Correlation: ctx.CorrelationID,
		Execution:   ctx.ExecutionID,
		Principal:   ctx.PrincipalID,
	}
}

func (e BaseDomainEvent) EventID() string       { return e.ID }
func (e BaseDomainEvent) EventType() string     { return e.Type }
func (e BaseDomainEvent) Subject() string       { return e.Subj }
func (e BaseDomainEvent) Time() time.Time       { return e.Timestamp }
func (e BaseDomainEvent) CorrelationID() string { return e.Correlation }
func (e BaseDomainEvent) ExecutionID() string   { return e.Execution }
func (e BaseDomainEvent) PrincipalID() string   { return e.Principal }

// ToDataJSON returns an empty object for the base event.
func (e BaseDomainEvent) ToDataJSON() string {
	return "{}"
}

// PersistedEvent is the stored form of a domain event (collection "events").
type PersistedEvent struct {
	ID            string    `bson:"_id" json:"id"`
	Type          string    `bson:"type" json:"type"`
	Source        string    `bson:"source" json:"source"`
	Subject       string    `bson:"subject" json:"subject"`
	Time          time.Time `bson:"time" json:"time"`
	Data          string    `bson:"data" json:"data"`
	CorrelationID string    `bson:"correlationId" json:"correlationId"`
	ExecutionID   string    `bson:"executionId" json:"executionId"`
	PrincipalID   string    `bson:"principalId" json:"principalId"`
	AggregateType string    `bson:"aggregateType" json:"aggregateType"`
}

// ToPersistedEvent converts a DomainEvent to its stored form.
func ToPersistedEvent(event DomainEvent) *PersistedEvent {
	return &PersistedEvent{
		ID:            event.EventID(),
		Type:          event.EventType(),
		Source:        EventSource,
		Subject:       event.Subject(),
		Time:          event.Time(),
		Data:          event.ToDataJSON(),
		CorrelationID: event.CorrelationID(),
		ExecutionID:   event.ExecutionID(),
		PrincipalID:   event.PrincipalID(),
		AggregateType: subjectPart(event.Subject(), 1),
	}
}

// subjectPart returns the i-th dot separated segment of a subject.
func subjectPart(subject string, i int) string {
	parts := strings.SplitN(subject, ".", 3)
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// MarshalDataJSON is a helper to serialize event payload to JSON.
func MarshalDataJSON(data any) string {
	bytes, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(bytes)
}
