package operations

import (
	"context"
	"strings"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// Queries serves the read side of the workflow. Reads are not audited, so
// they return plain values.
type Queries struct {
	repo pendingrequest.Repository
}

// NewQueries creates the read side over repo
func NewQueries(repo pendingrequest.Repository) *Queries {
	return &Queries{repo: repo}
}

// List returns requests newest first. An empty status lists all of them.
func (q *Queries) List(ctx context.Context, status string) ([]*pendingrequest.PendingRequest, *common.UseCaseError) {
	var filter pendingrequest.Status
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		parsed, ok := pendingrequest.ParseStatus(status)
		if !ok {
			return nil, common.ValidationError(common.ErrCodeInvalidValue, "Unknown status filter", map[string]any{"status": status})
		}
		filter = parsed
	}
	requests, err := q.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, common.StoreError(ctx, "list requests", err)
	}
	return nonNil(requests), nil
}

// ListMine returns one delegate's requests newest first.
func (q *Queries) ListMine(ctx context.Context, subAdminID string) ([]*pendingrequest.PendingRequest, *common.UseCaseError) {
	requests, err := q.repo.FindBySubAdmin(ctx, subAdminID)
	if err != nil {
		return nil, common.StoreError(ctx, "list requests", err)
	}
	return nonNil(requests), nil
}

// Get returns one request to the core administrator or its owner.
func (q *Queries) Get(ctx context.Context, id string, requester Requester) (*pendingrequest.PendingRequest, *common.UseCaseError) {
	req, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, common.StoreError(ctx, "load request", err)
	}
	if req == nil {
		return nil, requestNotFound(id)
	}
	if !requester.Core && (requester.Profile == nil || requester.Profile.ID != req.SubAdminID) {
		return nil, common.ForbiddenError(common.ErrCodeAccessDenied, "You can only view your own requests", nil)
	}
	return req, nil
}

// Stats returns the dashboard counts.
func (q *Queries) Stats(ctx context.Context) (*pendingrequest.Stats, *common.UseCaseError) {
	stats, err := q.repo.Stats(ctx)
	if err != nil {
		return nil, common.StoreError(ctx, "compute request stats", err)
	}
	return stats, nil
}

func nonNil(requests []*pendingrequest.PendingRequest) []*pendingrequest.PendingRequest {
	if requests == nil {
		return []*pendingrequest.PendingRequest{}
	}
	return requests
}
