package invitation

import (
	"context"
	"time"
)

// Repository defines the interface for invitation data access.
// Find methods return nil, nil when nothing matches.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Invitation, error)
	FindPendingByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	FindPendingByEmail(ctx context.Context, email string) (*Invitation, error)

	// FindAll returns invitations newest first, optionally filtered by status.
	FindAll(ctx context.Context, status Status) ([]*Invitation, error)

	Insert(ctx context.Context, inv *Invitation) error

	// Transition moves a pending invitation to status. It fails with
	// repository.ErrConditionFailed when the invitation is no longer pending.
	Transition(ctx context.Context, id string, status Status, at time.Time) error

	Delete(ctx context.Context, id string) error
}
