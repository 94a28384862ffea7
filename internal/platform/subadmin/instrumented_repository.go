package subadmin

import (
	"context"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

// instrumentedRepository wraps a Repository with metrics and logging
type instrumentedRepository struct {
	inner Repository
}

func newInstrumentedRepository(inner Repository) Repository {
	return &instrumentedRepository{inner: inner}
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*SubAdmin, error) {
	return repository.Instrument(ctx, CollectionName, "FindByID", func() (*SubAdmin, error) {
		return r.inner.FindByID(ctx, id)
	})
}

func (r *instrumentedRepository) FindByEmail(ctx context.Context, email string) (*SubAdmin, error) {
	return repository.Instrument(ctx, CollectionName, "FindByEmail", func() (*SubAdmin, error) {
		return r.inner.FindByEmail(ctx, email)
	})
}

func (r *instrumentedRepository) FindActiveByEmail(ctx context.Context, email string) (*SubAdmin, error) {
	return repository.Instrument(ctx, CollectionName, "FindActiveByEmail", func() (*SubAdmin, error) {
		return r.inner.FindActiveByEmail(ctx, email)
	})
}

func (r *instrumentedRepository) FindAll(ctx context.Context) ([]*SubAdmin, error) {
	return repository.Instrument(ctx, CollectionName, "FindAll", func() ([]*SubAdmin, error) {
		return r.inner.FindAll(ctx)
	})
}

func (r *instrumentedRepository) Insert(ctx context.Context, s *SubAdmin) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Insert", func() error {
		return r.inner.Insert(ctx, s)
	})
}

func (r *instrumentedRepository) Update(ctx context.Context, s *SubAdmin) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Update", func() error {
		return r.inner.Update(ctx, s)
	})
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Delete", func() error {
		return r.inner.Delete(ctx, id)
	})
}

func (r *instrumentedRepository) TouchLogin(ctx context.Context, id, subjectID string, at time.Time) error {
	return repository.InstrumentVoid(ctx, CollectionName, "TouchLogin", func() error {
		return r.inner.TouchLogin(ctx, id, subjectID, at)
	})
}
