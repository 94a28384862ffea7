package pendingrequest

import (
	"context"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

type instrumentedRepository struct {
	inner Repository
}

func newInstrumentedRepository(inner Repository) Repository {
	return &instrumentedRepository{inner: inner}
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*PendingRequest, error) {
	return repository.Instrument(ctx, CollectionName, "FindByID", func() (*PendingRequest, error) {
		return r.inner.FindByID(ctx, id)
	})
}

func (r *instrumentedRepository) FindPendingByDedupeKey(ctx context.Context, key string) (*PendingRequest, error) {
	return repository.Instrument(ctx, CollectionName, "FindPendingByDedupeKey", func() (*PendingRequest, error) {
		return r.inner.FindPendingByDedupeKey(ctx, key)
	})
}

func (r *instrumentedRepository) FindAll(ctx context.Context, status Status) ([]*PendingRequest, error) {
	return repository.Instrument(ctx, CollectionName, "FindAll", func() ([]*PendingRequest, error) {
		return r.inner.FindAll(ctx, status)
	})
}

func (r *instrumentedRepository) FindBySubAdmin(ctx context.Context, subAdminID string) ([]*PendingRequest, error) {
	return repository.Instrument(ctx, CollectionName, "FindBySubAdmin", func() ([]*PendingRequest, error) {
		return r.inner.FindBySubAdmin(ctx, subAdminID)
	})
}

func (r *instrumentedRepository) Insert(ctx context.Context, req *PendingRequest) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Insert", func() error {
		return r.inner.Insert(ctx, req)
	})
}

func (r *instrumentedRepository) Decide(ctx context.Context, id string, d Decision) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Decide", func() error {
		return r.inner.Decide(ctx, id, d)
	})
}

func (r *instrumentedRepository) ClaimExecution(ctx context.Context, id string, at, staleBefore time.Time) error {
	return repository.InstrumentVoid(ctx, CollectionName, "ClaimExecution", func() error {
		return r.inner.ClaimExecution(ctx, id, at, staleBefore)
	})
}

func (r *instrumentedRepository) RecordExecution(ctx context.Context, id string, res ExecutionResult) error {
	return repository.InstrumentVoid(ctx, CollectionName, "RecordExecution", func() error {
		return r.inner.RecordExecution(ctx, id, res)
	})
}

func (r *instrumentedRepository) FindExecutionBacklog(ctx context.Context, q BacklogQuery) ([]*PendingRequest, error) {
	return repository.Instrument(ctx, CollectionName, "FindExecutionBacklog", func() ([]*PendingRequest, error) {
		return r.inner.FindExecutionBacklog(ctx, q)
	})
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Delete", func() error {
		return r.inner.Delete(ctx, id)
	})
}

func (r *instrumentedRepository) DeleteIfPendingOwned(ctx context.Context, id, subAdminID string) error {
	return repository.InstrumentVoid(ctx, CollectionName, "DeleteIfPendingOwned", func() error {
		return r.inner.DeleteIfPendingOwned(ctx, id, subAdminID)
	})
}

func (r *instrumentedRepository) Stats(ctx context.Context) (*Stats, error) {
	return repository.Instrument(ctx, CollectionName, "Stats", func() (*Stats, error) {
		return r.inner.Stats(ctx)
	})
}
