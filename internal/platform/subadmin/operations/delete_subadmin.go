package operations

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// DeleteSubAdminCommand contains the data needed to remove a delegate
type DeleteSubAdminCommand struct {
	ID string `json:"id"`
}

// DeleteSubAdminUseCase handles hard-deleting a delegate
type DeleteSubAdminUseCase struct {
	repo       subadmin.Repository
	unitOfWork common.UnitOfWork
}

// NewDeleteSubAdminUseCase creates a new DeleteSubAdminUseCase
func NewDeleteSubAdminUseCase(repo subadmin.Repository, uow common.UnitOfWork) *DeleteSubAdminUseCase {
	return &DeleteSubAdminUseCase{repo: repo, unitOfWork: uow}
}

// Execute deletes the delegate profile
func (uc *DeleteSubAdminUseCase) Execute(
	ctx context.Context,
	cmd DeleteSubAdminCommand,
	execCtx *common.ExecutionContext,
) common.Result[common.DomainEvent] {
	if cmd.ID == "" {
		return common.Failure[common.DomainEvent](
			common.ValidationError(common.ErrCodeRequired, "Sub-admin ID is required", nil),
		)
	}

	existing, err := uc.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[common.DomainEvent](common.StoreError(ctx, "load sub-admin", err))
	}
	if existing == nil {
		return common.Failure[common.DomainEvent](
			common.NotFoundError(common.ErrCodeSubAdminNotFound, "Sub-admin not found", map[string]any{"id": cmd.ID}),
		)
	}

	event := events.NewSubAdminDeleted(execCtx, existing)
	return uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
		return uc.repo.Delete(ctx, existing.ID)
	})
}
