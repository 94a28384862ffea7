package pendingrequest

import (
	"context"
	"time"
)

// Repository defines the interface for pending request data access.
// Find methods return nil, nil when nothing matches.
type Repository interface {
	FindByID(ctx context.Context, id string) (*PendingRequest, error)
	FindPendingByDedupeKey(ctx context.Context, key string) (*PendingRequest, error)

	// FindAll returns requests newest first, optionally filtered by status.
	FindAll(ctx context.Context, status Status) ([]*PendingRequest, error)

	// FindBySubAdmin returns one delegate's requests newest first.
	FindBySubAdmin(ctx context.Context, subAdminID string) ([]*PendingRequest, error)

	// Insert fails with repository.ErrDuplicateKey when a pending request
	// with the same dedupe key exists.
	Insert(ctx context.Context, req *PendingRequest) error

	// Decide applies d to a pending request. An approval also claims the
	// execution phase. Fails with repository.ErrConditionFailed when the
	// request is no longer pending.
	Decide(ctx context.Context, id string, d Decision) error

	// ClaimExecution takes the execution phase of an approved request whose
	// execution is pending or failed and not claimed since staleBefore.
	// Fails with repository.ErrConditionFailed otherwise.
	ClaimExecution(ctx context.Context, id string, at, staleBefore time.Time) error

	// RecordExecution stores one attempt's result and releases the claim.
	RecordExecution(ctx context.Context, id string, result ExecutionResult) error

	FindExecutionBacklog(ctx context.Context, q BacklogQuery) ([]*PendingRequest, error)

	Delete(ctx context.Context, id string) error

	// DeleteIfPendingOwned deletes the request only while it is pending and
	// owned by subAdminID. Fails with repository.ErrConditionFailed otherwise.
	DeleteIfPendingOwned(ctx context.Context, id, subAdminID string) error

	Stats(ctx context.Context) (*Stats, error)
}
