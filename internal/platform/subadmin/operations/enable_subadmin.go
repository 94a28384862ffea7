package operations

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// EnableSubAdminCommand contains the data needed to re-enable a delegate
type EnableSubAdminCommand struct {
	ID string `json:"id"`
}

// EnableSubAdminUseCase handles re-enabling a disabled delegate
type EnableSubAdminUseCase struct {
	repo       subadmin.Repository
	unitOfWork common.UnitOfWork
}

// NewEnableSubAdminUseCase creates a new EnableSubAdminUseCase
func NewEnableSubAdminUseCase(repo subadmin.Repository, uow common.UnitOfWork) *EnableSubAdminUseCase {
	return &EnableSubAdminUseCase{repo: repo, unitOfWork: uow}
}

// Execute re-enables a disabled delegate
func (uc *EnableSubAdminUseCase) Execute(
	ctx context.Context,
	cmd EnableSubAdminCommand,
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
	if existing.IsActive {
		return common.Failure[*subadmin.SubAdmin](
			common.BusinessRuleError(common.ErrCodeInvalidState, "Sub-admin is already active", map[string]any{"id": cmd.ID}),
		)
	}

	existing.Enable()

	event := events.NewSubAdminEnabled(execCtx, existing)
	return common.CommitValue(ctx, uc.unitOfWork, existing, event, cmd, func(ctx context.Context) error {
		return uc.repo.Update(ctx, existing)
	})
}
