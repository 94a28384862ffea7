package invitation

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

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	return repository.Instrument(ctx, CollectionName, "FindByID", func() (*Invitation, error) {
		return r.inner.FindByID(ctx, id)
	})
}

func (r *instrumentedRepository) FindPendingByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error) {
	return repository.Instrument(ctx, CollectionName, "FindPendingByTokenHash", func() (*Invitation, error) {
		return r.inner.FindPendingByTokenHash(ctx, tokenHash)
	})
}

func (r *instrumentedRepository) FindPendingByEmail(ctx context.Context, email string) (*Invitation, error) {
	return repository.Instrument(ctx, CollectionName, "FindPendingByEmail", func() (*Invitation, error) {
		return r.inner.FindPendingByEmail(ctx, email)
	})
}

func (r *instrumentedRepository) FindAll(ctx context.Context, status Status) ([]*Invitation, error) {
	return repository.Instrument(ctx, CollectionName, "FindAll", func() ([]*Invitation, error) {
		return r.inner.FindAll(ctx, status)
	})
}

func (r *instrumentedRepository) Insert(ctx context.Context, inv *Invitation) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Insert", func() error {
		return r.inner.Insert(ctx, inv)
	})
}

func (r *instrumentedRepository) Transition(ctx context.Context, id string, status Status, at time.Time) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Transition", func() error {
		return r.inner.Transition(ctx, id, status, at)
	})
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) error {
	return repository.InstrumentVoid(ctx, CollectionName, "Delete", func() error {
		return r.inner.Delete(ctx, id)
	})
}
