package operations

import (
	"context"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// DisableSubAdminCommand contains the data needed to disable a delegate
type DisableSubAdminCommand struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// DisableSubAdminUseCase handles disabling an active delegate
type DisableSubAdminUseCase struct {
	repo       subadmin.Repository
	unitOfWork common.UnitOfWork
}

// NewDisableSubAdminUseCase creates a new DisableSubAdminUseCase
func NewDisableSubAdminUseCase(repo subadmin.Repository, uow common.UnitOfWork) *DisableSubAdminUseCase {
	return &DisableSubAdminUseCase{repo: repo, unitOfWork: uow}
}

// Execute disables the delegate. The row stays; the resolver stops seeing it.
func (uc *DisableSubAdminUseCase) Execute(
	ctx context.Context,
	cmd DisableSubAdminCommand,
	execCtx *common.ExecutionContext,
) common.Result[*subadmin.SubAdmin] {
	if cmd.ID == "" {
		return common.Failure[*subadmin.SubAdmin](
			common.ValidationError(common.ErrCodeRequired, "Sub-admin ID is required", nil),
		)
	}

	existing, err := uc.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[*subadmin.SubAdmin](common.StoreError(ctx, "load sub-admin", err))
	}
	if existing == nil {
		return common.Failure[*subadmin.SubAdmin](
			common.NotFoundError(common.ErrCodeSubAdminNotFound, "Sub-admin not found", map[string]any{"id": cmd.ID}),
		)
	}
	if !existing.IsActive {
		return common.Failure[*subadmin.SubAdmin](
			common.BusinessRuleError(common.ErrCodeInvalidState, "Sub-admin is already disabled", map[string]any{"id": cmd.ID}),
		)
	}

	existing.Disable(cmd.Reason, time.Now())

	event := events.NewSubAdminDisabled(execCtx, existing)
	return common.CommitValue(ctx, uc.unitOfWork, existing, event, cmd, func(ctx context.Context) error {
		return uc.repo.Update(ctx, existing)
	})
}
