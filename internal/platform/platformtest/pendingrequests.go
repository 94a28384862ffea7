package platformtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// PendingRequests is an in-memory pendingrequest.Repository. At most one
// pending request per dedupe key may exist.
type PendingRequests struct {
	mu   sync.Mutex
	rows map[string]pendingrequest.PendingRequest

	// Err, when set, is returned by every call.
	Err error
	// RecordErr, when set, is returned by RecordExecution only.
	RecordErr error
}

// NewPendingRequests creates an empty repository.
func NewPendingRequests() *PendingRequests {
	return &PendingRequests{rows: map[string]pendingrequest.PendingRequest{}}
}

// Seed stores req as-is and returns it.
func (r *PendingRequests) Seed(req *pendingrequest.PendingRequest) *pendingrequest.PendingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r.rows[req.ID] = *req
	return req
}

// Get returns a stored request without going through the interface.
func (r *PendingRequests) Get(id string) (pendingrequest.PendingRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	return row, ok
}

func (r *PendingRequests) FindByID(_ context.Context, id string) (*pendingrequest.PendingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *PendingRequests) FindPendingByDedupeKey(_ context.Context, key string) (*pendingrequest.PendingRequest, error) {
	found := r.filter(func(p pendingrequest.PendingRequest) bool {
		return p.DedupeKey == key && p.Status == pendingrequest.StatusPending
	}, nil)
	if r.Err != nil {
		return nil, r.Err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *PendingRequests) FindAll(_ context.Context, status pendingrequest.Status) ([]*pendingrequest.PendingRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filter(func(p pendingrequest.PendingRequest) bool {
		return status == "" || p.Status == status
	}, newestFirst), nil
}

func (r *PendingRequests) FindBySubAdmin(_ context.Context, subAdminID string) ([]*pendingrequest.PendingRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filter(func(p pendingrequest.PendingRequest) bool {
		return p.SubAdminID == subAdminID
	}, newestFirst), nil
}

func newestFirst(a, b *pendingrequest.PendingRequest) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *PendingRequests) filter(match func(pendingrequest.PendingRequest) bool, less func(a, b *pendingrequest.PendingRequest) bool) []*pendingrequest.PendingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*pendingrequest.PendingRequest{}
	for _, row := range r.rows {
		if match(row) {
			row := row
			out = append(out, &row)
		}
	}
	if less != nil {
		sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func (r *PendingRequests) Insert(_ context.Context, req *pendingrequest.PendingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.ExecutionStatus == "" {
		req.ExecutionStatus = pendingrequest.ExecutionNone
	}
	for _, row := range r.rows {
		if row.ID == req.ID {
			return repository.ErrDuplicateKey
		}
		if req.Status == pendingrequest.StatusPending && row.Status == pendingrequest.StatusPending && row.DedupeKey == req.DedupeKey {
			return repository.ErrDuplicateKey
		}
	}
	r.rows[req.ID] = *req
	return nil
}

func (r *PendingRequests) Decide(_ context.Context, id string, d pendingrequest.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	row, ok := r.rows[id]
	if !ok || row.Status != pendingrequest.StatusPending {
		return repository.ErrConditionFailed
	}
	at := d.ProcessedAt
	row.Status = d.Status
	row.ProcessedAt = &at
	row.ProcessedBy = d.ProcessedBy
	if d.RejectionReason != "" {
		row.RejectionReason = d.RejectionReason
	}
	if d.Status == pendingrequest.StatusApproved {
		row.ExecutionStatus = pendingrequest.ExecutionPending
		row.ClaimedAt = &at
	}
	r.rows[id] = row
	return nil
}

func (r *PendingRequests) ClaimExecution(_ context.Context, id string, at, staleBefore time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	row, ok := r.rows[id]
	if !ok || !row.Executable() || (row.ClaimedAt != nil && !row.ClaimedAt.Before(staleBefore)) {
		return repository.ErrConditionFailed
	}
	row.ClaimedAt = &at
	r.rows[id] = row
	return nil
}

func (r *PendingRequests) RecordExecution(_ context.Context, id string, res pendingrequest.ExecutionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.RecordErr != nil {
		return r.RecordErr
	}
	row, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	at := res.At
	row.ExecutionAttempts++
	row.ExecutionMessage = res.Message
	row.ExecutionError = res.Error
	row.ExecutedAt = &at
	row.ClaimedAt = nil
	if res.Succeeded {
		row.ExecutionStatus = pendingrequest.ExecutionSucceeded
	} else {
		row.ExecutionStatus = pendingrequest.ExecutionFailed
	}
	r.rows[id] = row
	return nil
}

func (r *PendingRequests) FindExecutionBacklog(_ context.Context, q pendingrequest.BacklogQuery) ([]*pendingrequest.PendingRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := r.filter(func(p pendingrequest.PendingRequest) bool {
		if p.Status != pendingrequest.StatusApproved {
			return false
		}
		switch p.ExecutionStatus {
		case pendingrequest.ExecutionPending:
			return p.ClaimedAt != nil && p.ClaimedAt.Before(q.PendingBefore)
		case pendingrequest.ExecutionFailed:
			return p.ExecutionAttempts < q.MaxAttempts
		}
		return false
	}, func(a, b *pendingrequest.PendingRequest) bool {
		return a.ProcessedAt != nil && b.ProcessedAt != nil && a.ProcessedAt.Before(*b.ProcessedAt)
	})
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *PendingRequests) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *PendingRequests) DeleteIfPendingOwned(_ context.Context, id, subAdminID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	row, ok := r.rows[id]
	if !ok || row.SubAdminID != subAdminID || row.Status != pendingrequest.StatusPending {
		return repository.ErrConditionFailed
	}
	delete(r.rows, id)
	return nil
}

func (r *PendingRequests) Stats(_ context.Context) (*pendingrequest.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	stats := &pendingrequest.Stats{ByPage: map[string]int64{}, ByAction: map[string]int64{}}
	for _, row := range r.rows {
		stats.Total++
		switch row.Status {
		case pendingrequest.StatusPending:
			stats.Pending++
		case pendingrequest.StatusApproved:
			stats.Approved++
		case pendingrequest.StatusRejected:
			stats.Rejected++
		}
		if row.ExecutionStatus == pendingrequest.ExecutionFailed {
			stats.ExecutionFailed++
		}
		stats.ByPage[string(row.Page)]++
		stats.ByAction[row.Action]++
	}
	return stats, nil
}
