package operations

import (
	"context"
	"errors"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// DefaultClaimTimeout is how long an execution claim blocks other runners.
const DefaultClaimTimeout = 5 * time.Minute

// RetryExecutionCommand identifies the approved request to execute again
type RetryExecutionCommand struct {
	ID string `json:"id"`
}

// RetryExecutionUseCase reruns the execution of an approved request whose
// previous attempt failed or never completed.
type RetryExecutionUseCase struct {
	runner
	claimTimeout time.Duration
}

// NewRetryExecutionUseCase creates a new RetryExecutionUseCase
func NewRetryExecutionUseCase(
	repo pendingrequest.Repository,
	executor Executor,
	uow common.UnitOfWork,
	notifier notify.Notifier,
	claimTimeout time.Duration,
) *RetryExecutionUseCase {
	if claimTimeout <= 0 {
		claimTimeout = DefaultClaimTimeout
	}
	return &RetryExecutionUseCase{
		runner: runner{
			repo:       repo,
			executor:   executor,
			unitOfWork: uow,
			notifier:   notifier,
			now:        time.Now,
		},
		claimTimeout: claimTimeout,
	}
}

// Execute claims and runs the execution phase once more.
func (uc *RetryExecutionUseCase) Execute(
	ctx context.Context,
	cmd RetryExecutionCommand,
	execCtx *common.ExecutionContext,
) common.Result[*ProcessedRequest] {
	req, err := uc.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[*ProcessedRequest](common.StoreError(ctx, "load request", err))
	}
	if req == nil {
		return common.Failure[*ProcessedRequest](requestNotFound(cmd.ID))
	}
	if !req.Executable() {
		return common.Failure[*ProcessedRequest](notExecutable(req))
	}

	now := uc.now()
	err = uc.repo.ClaimExecution(ctx, req.ID, now, now.Add(-uc.claimTimeout))
	if errors.Is(err, repository.ErrConditionFailed) {
		return common.Failure[*ProcessedRequest](
			common.BusinessRuleError(common.ErrCodeInvalidState, "Execution is already in progress", nil),
		)
	}
	if err != nil {
		return common.Failure[*ProcessedRequest](common.StoreError(ctx, "claim execution", err))
	}
	req.ClaimedAt = &now

	action, committed := uc.run(ctx, req, execCtx)
	if committed.IsSuccess() && action.Success {
		uc.notifyDecision(ctx, req, &action)
	}
	return common.Map(committed, func(common.DomainEvent) *ProcessedRequest {
		return &ProcessedRequest{Request: req, ActionResult: &action}
	})
}

func notExecutable(req *pendingrequest.PendingRequest) *common.UseCaseError {
	details := map[string]any{
		"status":          string(req.Status),
		"executionStatus": string(req.ExecutionStatus),
	}
	if req.Status != pendingrequest.StatusApproved {
		return common.BusinessRuleError(common.ErrCodeInvalidState, "Only approved requests can be executed", details)
	}
	return common.BusinessRuleError(common.ErrCodeInvalidState, "Request has already been executed", details)
}
