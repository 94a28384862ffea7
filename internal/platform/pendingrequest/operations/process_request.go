package operations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// ProcessRequestCommand contains the core administrator's decision
type ProcessRequestCommand struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// ProcessedRequest is the decided request and, for approvals, the execution outcome.
type ProcessedRequest struct {
	Request      *pendingrequest.PendingRequest `json:"request"`
	ActionResult *ActionResult                  `json:"actionResult,omitempty"`
}

// ProcessRequestUseCase handles approving or rejecting a pending request
type ProcessRequestUseCase struct {
	runner
}

// NewProcessRequestUseCase creates a new ProcessRequestUseCase
func NewProcessRequestUseCase(
	repo pendingrequest.Repository,
	executor Executor,
	uow common.UnitOfWork,
	notifier notify.Notifier,
) *ProcessRequestUseCase {
	return &ProcessRequestUseCase{runner: runner{
		repo:       repo,
		executor:   executor,
		unitOfWork: uow,
		notifier:   notifier,
		now:        time.Now,
	}}
}

// Execute decides the request exactly once. An approval then executes the
// request; an execution failure is reported in ActionResult and leaves the
// request approved.
func (uc *ProcessRequestUseCase) Execute(
	ctx context.Context,
	cmd ProcessRequestCommand,
	execCtx *common.ExecutionContext,
) common.Result[*ProcessedRequest] {
	status, ok := pendingrequest.ParseStatus(strings.ToLower(strings.TrimSpace(cmd.Status)))
	if !ok || status == pendingrequest.StatusPending {
		return common.Failure[*ProcessedRequest](
			common.ValidationError(common.ErrCodeValidationFailed, "Status must be approved or rejected", map[string]any{"field": "status"}),
		)
	}

	req, err := uc.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[*ProcessedRequest](common.StoreError(ctx, "load request", err))
	}
	if req == nil {
		return common.Failure[*ProcessedRequest](requestNotFound(cmd.ID))
	}
	if req.Status != pendingrequest.StatusPending {
		return common.Failure[*ProcessedRequest](alreadyProcessed(req.Status))
	}

	now := uc.now()
	decision := pendingrequest.Decision{
		Status:      status,
		ProcessedBy: execCtx.PrincipalID,
		ProcessedAt: now,
	}
	var event common.DomainEvent
	if status == pendingrequest.StatusRejected {
		decision.RejectionReason = strings.TrimSpace(cmd.RejectionReason)
		event = events.NewPendingRequestRejected(execCtx, req, decision.RejectionReason)
	} else {
		event = events.NewPendingRequestApproved(execCtx, req)
	}

	result := uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
		err := uc.repo.Decide(ctx, req.ID, decision)
		if errors.Is(err, repository.ErrConditionFailed) {
			return alreadyProcessed("")
		}
		return err
	})
	if result.IsFailure() {
		return common.Failure[*ProcessedRequest](result.Error())
	}
	metrics.ApprovalDecisions.WithLabelValues(string(status)).Inc()

	applyDecision(req, decision)
	processed := &ProcessedRequest{Request: req}
	if status == pendingrequest.StatusApproved {
		action, _ := uc.run(ctx, req, execCtx)
		processed.ActionResult = &action
	}

	uc.notifyDecision(ctx, req, processed.ActionResult)
	return common.Map(result, func(common.DomainEvent) *ProcessedRequest { return processed })
}

func applyDecision(req *pendingrequest.PendingRequest, d pendingrequest.Decision) {
	at := d.ProcessedAt
	req.Status = d.Status
	req.ProcessedAt = &at
	req.ProcessedBy = d.ProcessedBy
	req.RejectionReason = d.RejectionReason
	if d.Status == pendingrequest.StatusApproved {
		req.ExecutionStatus = pendingrequest.ExecutionPending
		req.ClaimedAt = &at
	}
}

func requestNotFound(id string) *common.UseCaseError {
	return common.NotFoundError(common.ErrCodeRequestNotFound, "Request not found", map[string]any{"id": id})
}

func alreadyProcessed(status pendingrequest.Status) *common.UseCaseError {
	err := common.BusinessRuleError(common.ErrCodeAlreadyProcessed, "Request has already been processed", nil)
	if status != "" {
		err.WithDetail("status", string(status))
	}
	return err
}
