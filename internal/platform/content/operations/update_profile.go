package operations

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// UpdateProfileCommand sets one section of the profile: Fields are merged
// into the section, Value replaces it.
type UpdateProfileCommand struct {
	Section string         `json:"section"`
	Fields  map[string]any `json:"fields,omitempty"`
	Value   any            `json:"value,omitempty"`
}

// Data is the payload an approval request for this change carries.
func (c UpdateProfileCommand) Data() map[string]any {
	data := map[string]any{"section": c.Section}
	if c.Fields != nil {
		data["fields"] = c.Fields
	} else if c.Value != nil {
		data["value"] = c.Value
	}
	return data
}

// ToAuditJSON records the section only.
func (c UpdateProfileCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]string{"section": c.Section})
}

// ProfileExecutor applies a profile section change.
type ProfileExecutor interface {
	Execute(ctx context.Context, req *pendingrequest.PendingRequest) execution.Outcome
}

// UpdateProfileUseCase writes a profile section directly. It runs the same
// handler an approved profileSection request runs.
type UpdateProfileUseCase struct {
	executor   ProfileExecutor
	unitOfWork common.UnitOfWork
}

// NewUpdateProfileUseCase creates a new UpdateProfileUseCase
func NewUpdateProfileUseCase(executor ProfileExecutor, uow common.UnitOfWork) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{executor: executor, unitOfWork: uow}
}

// Execute applies the section change.
func (uc *UpdateProfileUseCase) Execute(
	ctx context.Context,
	cmd UpdateProfileCommand,
	execCtx *common.ExecutionContext,
) common.Result[execution.Outcome] {
	if cmd.Section == "" {
		return common.Failure[execution.Outcome](
			common.ValidationError(common.ErrCodeRequired, "Profile section is required", nil),
		)
	}

	req := &pendingrequest.PendingRequest{
		ID:           execCtx.ExecutionID,
		Action:       "UPDATE",
		ResourceType: execution.KindProfileSection,
		ResourceID:   execution.ProfileDocumentID,
		Data:         cmd.Data(),
	}

	var outcome execution.Outcome
	event := events.NewContentChanged(execCtx, events.EventTypeContentUpdated, execution.ProfileCollection, execution.ProfileDocumentID)
	result := uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
		outcome = uc.executor.Execute(ctx, req)
		if !outcome.Success {
			return common.ValidationError(outcome.Code, outcome.Message, map[string]any{"section": cmd.Section})
		}
		return nil
	})
	return common.Map(result, func(common.DomainEvent) execution.Outcome { return outcome })
}
