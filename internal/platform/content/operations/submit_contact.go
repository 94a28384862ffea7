package operations

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/content"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
)

// Contact form limits
const (
	maxContactName    = 200
	maxContactSubject = 300
	maxContactMessage = 5000
)

// SubmitContactCommand is a visitor's contact form submission
type SubmitContactCommand struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// ToAuditJSON omits the message body.
func (c SubmitContactCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]string{"name": c.Name, "email": c.Email, "subject": c.Subject})
}

// SubmitContactUseCase stores a contact message for the admins to read
type SubmitContactUseCase struct {
	docs       store.DocumentStore
	unitOfWork common.UnitOfWork
	now        func() time.Time
}

// NewSubmitContactUseCase creates a new SubmitContactUseCase
func NewSubmitContactUseCase(docs store.DocumentStore, uow common.UnitOfWork) *SubmitContactUseCase {
	return &SubmitContactUseCase{docs: docs, unitOfWork: uow, now: time.Now}
}

// Execute validates and stores the message, returning its id.
func (uc *SubmitContactUseCase) Execute(
	ctx context.Context,
	cmd SubmitContactCommand,
	execCtx *common.ExecutionContext,
) common.Result[string] {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.Subject = strings.TrimSpace(cmd.Subject)
	cmd.Message = strings.TrimSpace(cmd.Message)

	if ucErr := validateContact(cmd); ucErr != nil {
		return common.Failure[string](ucErr)
	}

	id := uuid.NewString()
	fields := map[string]any{
		"name":      cmd.Name,
		"email":     cmd.Email,
		"subject":   cmd.Subject,
		"message":   cmd.Message,
		"read":      false,
		"createdAt": uc.now(),
	}

	event := events.NewMessageReceived(execCtx, id, cmd.Email)
	return common.CommitValue(ctx, uc.unitOfWork, id, event, cmd, func(ctx context.Context) error {
		return uc.docs.Set(ctx, content.MessagesCollection, id, fields)
	})
}

func validateContact(cmd SubmitContactCommand) *common.UseCaseError {
	switch {
	case cmd.Name == "":
		return common.ValidationError(common.ErrCodeRequired, "Name is required", map[string]any{"field": "name"})
	case cmd.Message == "":
		return common.ValidationError(common.ErrCodeRequired, "Message is required", map[string]any{"field": "message"})
	case cmd.Email == "":
		return common.ValidationError(common.ErrCodeRequired, "Email is required", map[string]any{"field": "email"})
	}
	if addr, err := mail.ParseAddress(cmd.Email); err != nil || addr.Address != cmd.Email {
		return common.ValidationError(common.ErrCodeInvalidEmail, "Email address is not valid", map[string]any{"field": "email"})
	}
	if utf8.RuneCountInString(cmd.Name) > maxContactName ||
		utf8.RuneCountInString(cmd.Subject) > maxContactSubject ||
		utf8.RuneCountInString(cmd.Message) > maxContactMessage {
		return common.ValidationError(common.ErrCodeInvalidValue, "Contact form field is too long", nil)
	}
	return nil
}
