package audit

import (
	"context"
	"errors"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListQuery are the listing parameters accepted from callers
type ListQuery struct {
	EntityType  string
	EntityID    string
	PrincipalID string
	Before      string // RFC 3339
	Limit       int
}

// Queries serves the read side of the audit trail
type Queries struct {
	repo Repository
}

// NewQueries creates audit queries over repo
func NewQueries(repo Repository) *Queries {
	return &Queries{repo: repo}
}

// List returns recent entries matching q, newest first.
func (q *Queries) List(ctx context.Context, in ListQuery) ([]AuditLogDTO, *common.UseCaseError) {
	filter := Filter{
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		PrincipalID: in.PrincipalID,
		Limit:       DefaultLimit,
	}
	switch {
	case in.Limit < 0:
		return nil, common.ValidationError(common.ErrCodeInvalidValue, "limit must be positive", map[string]any{"field": "limit"})
	case in.Limit > MaxLimit:
		filter.Limit = MaxLimit
	case in.Limit > 0:
		filter.Limit = int64(in.Limit)
	}
	if in.Before != "" {
		before, err := time.Parse(time.RFC3339, in.Before)
		if err != nil {
			return nil, common.ValidationError(common.ErrCodeInvalidValue, "before must be an RFC 3339 timestamp", map[string]any{"field": "before"})
		}
		filter.Before = before
	}

	entries, err := q.repo.Find(ctx, filter)
	if err != nil {
		return nil, common.StoreError(ctx, "load audit logs", err)
	}

	out := make([]AuditLogDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToDTO(e))
	}
	return out, nil
}

// Get returns one entry with its operation payload.
func (q *Queries) Get(ctx context.Context, id string) (*AuditLogDetailDTO, *common.UseCaseError) {
	entry, err := q.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, common.NotFoundError(common.ErrCodeEntityMissing, "Audit log not found", nil)
	}
	if err != nil {
		return nil, common.StoreError(ctx, "load audit log", err)
	}
	dto := ToDetailDTO(entry)
	return &dto, nil
}
