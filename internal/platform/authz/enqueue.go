package authz

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

// EnqueueOutcome is the result of DecideOrEnqueue.
type EnqueueOutcome int

const (
	Denied EnqueueOutcome = iota
	Allowed
	Enqueued
)

func (o EnqueueOutcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case Enqueued:
		return "enqueued"
	default:
		return "denied"
	}
}

// EnqueueResult carries the id of the created request when Outcome is Enqueued.
type EnqueueResult struct {
	Outcome          EnqueueOutcome
	PendingRequestID string
}

// Mutation is the change a write endpoint would have applied.
type Mutation struct {
	ResourceType string
	ResourceID   string
	ResourceName string
	Data         map[string]any
	PreviousData map[string]any
	Reason       string
}

// Enqueuer turns approval-requiring writes into pending requests.
type Enqueuer struct {
	submit *operations.SubmitRequestUseCase
}

// NewEnqueuer creates an Enqueuer backed by submit
func NewEnqueuer(submit *operations.SubmitRequestUseCase) *Enqueuer {
	return &Enqueuer{submit: submit}
}

// DecideOrEnqueue lets the write proceed, denies it, or stores it as a
// pending request for the core administrator. Denials are returned as the
// error; a duplicate pending request fails with DUPLICATE_REQUEST.
func (e *Enqueuer) DecideOrEnqueue(
	ctx context.Context,
	role Role,
	page permission.Page,
	action permission.Action,
	m Mutation,
	execCtx *common.ExecutionContext,
) (EnqueueResult, *common.UseCaseError) {
	decision := Decide(role, page, action)
	switch decision.Outcome {
	case permission.Allow:
		return EnqueueResult{Outcome: Allowed}, nil
	case permission.Deny:
		return EnqueueResult{Outcome: Denied}, decision.Err()
	}

	result := e.submit.Execute(ctx, operations.SubmitRequestCommand{
		Action:       action.String(),
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		ResourceName: m.ResourceName,
		Page:         string(page),
		Data:         m.Data,
		PreviousData: m.PreviousData,
		Reason:       m.Reason,
	}, role.Requester(), execCtx)
	if result.IsFailure() {
		return EnqueueResult{Outcome: Denied}, result.Error()
	}
	return EnqueueResult{Outcome: Enqueued, PendingRequestID: result.Value().ID}, nil
}
