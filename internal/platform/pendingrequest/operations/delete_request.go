package operations

import (
	"context"
	"errors"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// DeleteRequestCommand identifies the request to delete
type DeleteRequestCommand struct {
	ID string `json:"id"`
}

// DeleteRequestUseCase handles removing a request. The core administrator
// may delete any request; a delegate only their own while it is pending.
type DeleteRequestUseCase struct {
	repo       pendingrequest.Repository
	unitOfWork common.UnitOfWork
}

// NewDeleteRequestUseCase creates a new DeleteRequestUseCase
func NewDeleteRequestUseCase(repo pendingrequest.Repository, uow common.UnitOfWork) *DeleteRequestUseCase {
	return &DeleteRequestUseCase{repo: repo, unitOfWork: uow}
}

// Execute deletes the request.
func (uc *DeleteRequestUseCase) Execute(
	ctx context.Context,
	cmd DeleteRequestCommand,
	requester Requester,
	execCtx *common.ExecutionContext,
) common.Result[common.DomainEvent] {
	if !requester.Core && requester.Profile == nil {
		return common.Failure[common.DomainEvent](
			common.ForbiddenError(common.ErrCodeAccessDenied, "Access denied", nil),
		)
	}

	req, err := uc.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[common.DomainEvent](common.StoreError(ctx, "load request", err))
	}
	if req == nil {
		return common.Failure[common.DomainEvent](requestNotFound(cmd.ID))
	}

	event := events.NewPendingRequestDeleted(execCtx, req)

	if requester.Core {
		return uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
			return uc.repo.Delete(ctx, req.ID)
		})
	}

	owner := requester.Profile.ID
	if req.SubAdminID != owner || req.Status != pendingrequest.StatusPending {
		return common.Failure[common.DomainEvent](cannotDelete())
	}
	return uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
		err := uc.repo.DeleteIfPendingOwned(ctx, req.ID, owner)
		if errors.Is(err, repository.ErrConditionFailed) {
			return cannotDelete()
		}
		return err
	})
}

func cannotDelete() *common.UseCaseError {
	return common.ForbiddenError(common.ErrCodeAccessDenied,
		"You can only delete your own pending requests", nil)
}
