package operations

import (
	"context"
	"log/slog"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// ActionResult is the execution outcome returned to the core administrator.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// recordExecutionCommand is the audited operation for one execution attempt.
type recordExecutionCommand struct {
	RequestID string `json:"requestId"`
	Attempt   int    `json:"attempt"`
	Success   bool   `json:"success"`
}

// runner executes a claimed request and records the attempt. It is shared by
// processing, manual retry and the reconciler.
type runner struct {
	repo       pendingrequest.Repository
	executor   Executor
	unitOfWork common.UnitOfWork
	notifier   notify.Notifier
	now        func() time.Time
}

// run executes req, whose execution phase the caller has claimed, and stores
// the result. req is updated to reflect the recorded attempt. The returned
// result is the commit of that record.
func (r *runner) run(
	ctx context.Context,
	req *pendingrequest.PendingRequest,
	execCtx *common.ExecutionContext,
) (ActionResult, common.Result[common.DomainEvent]) {
	outcome := r.executor.Execute(ctx, req)

	at := r.now()
	result := pendingrequest.ExecutionResult{Succeeded: outcome.Success, At: at}
	if outcome.Success {
		result.Message = outcome.Message
	} else {
		result.Error = outcome.Message
	}

	event := events.NewPendingRequestExecuted(execCtx, req, outcome.Success, outcome.Message)
	cmd := recordExecutionCommand{RequestID: req.ID, Attempt: req.ExecutionAttempts + 1, Success: outcome.Success}
	committed := r.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
		return r.repo.RecordExecution(ctx, req.ID, result)
	})
	if committed.IsFailure() {
		// The claim stays in place and the reconciler picks the request up
		// once it goes stale.
		slog.ErrorContext(ctx, "Failed to record execution result",
			"requestId", req.ID,
			"success", outcome.Success,
			"error", committed.Error())
	} else {
		applyExecution(req, result)
	}

	if !outcome.Success {
		slog.WarnContext(ctx, "Approved request was not applied",
			"requestId", req.ID,
			"resourceType", req.ResourceType,
			"attempt", req.ExecutionAttempts,
			"code", outcome.Code,
			"message", outcome.Message)
	}
	return toActionResult(outcome), committed
}

func applyExecution(req *pendingrequest.PendingRequest, result pendingrequest.ExecutionResult) {
	req.ExecutionAttempts++
	req.ClaimedAt = nil
	req.ExecutionMessage = result.Message
	req.ExecutionError = result.Error
	if result.Succeeded {
		req.ExecutionStatus = pendingrequest.ExecutionSucceeded
		at := result.At
		req.ExecutedAt = &at
	} else {
		req.ExecutionStatus = pendingrequest.ExecutionFailed
	}
}

func toActionResult(o execution.Outcome) ActionResult {
	return ActionResult{Success: o.Success, Message: o.Message, Code: o.Code}
}

// notifyDecision tells the requesting delegate about the decision. Failures
// are logged only.
func (r *runner) notifyDecision(ctx context.Context, req *pendingrequest.PendingRequest, action *ActionResult) {
	if r.notifier == nil || req.SubAdminEmail == "" {
		return
	}
	n := notify.DecisionNotification{
		To:              req.SubAdminEmail,
		RequestID:       req.ID,
		Status:          string(req.Status),
		Action:          req.Action,
		ResourceType:    req.ResourceType,
		ResourceName:    req.ResourceName,
		RejectionReason: req.RejectionReason,
	}
	if action != nil {
		n.Executed = action.Success
		n.Message = action.Message
	}
	if err := r.notifier.SendDecision(ctx, n); err != nil {
		slog.WarnContext(ctx, "Failed to send decision notification",
			"requestId", req.ID,
			"error", err)
	}
}
