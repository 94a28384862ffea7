package events

import (
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

const (
	aggregateContent = "content"
	aggregateMessage = "message"
)

// Content event codes
const (
	EventTypeContentCreated  = "admin:content:created"
	EventTypeContentUpdated  = "admin:content:updated"
	EventTypeContentDeleted  = "admin:content:deleted"
	EventTypeMessageReceived = "admin:message:received"
)

// ContentChanged is emitted when an administrator writes portfolio content directly
type ContentChanged struct {
	common.BaseDomainEvent
	Collection string `json:"collection"`
	DocumentID string `json:"documentId"`
}

func (e *ContentChanged) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"collection": e.Collection,
		"documentId": e.DocumentID,
	})
}

// NewContentChanged creates the event for eventType, one of the content event codes.
func NewContentChanged(ctx *common.ExecutionContext, eventType, collection, documentID string) *ContentChanged {
	return &ContentChanged{
		BaseDomainEvent: newBase(ctx, eventType, aggregateContent, documentID),
		Collection:      collection,
		DocumentID:      documentID,
	}
}

// MessageReceived is emitted when a visitor submits the contact form
type MessageReceived struct {
	common.BaseDomainEvent
	MessageID string `json:"messageId"`
	Email     string `json:"email"`
}

func (e *MessageReceived) ToDataJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"messageId": e.MessageID,
		"email":     e.Email,
	})
}

func NewMessageReceived(ctx *common.ExecutionContext, messageID, email string) *MessageReceived {
	return &MessageReceived{
		BaseDomainEvent: newBase(ctx, EventTypeMessageReceived, aggregateMessage, messageID),
		MessageID:       messageID,
		Email:           email,
	}
}
