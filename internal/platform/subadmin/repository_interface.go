package subadmin

import (
	"context"
	"time"
)

// Repository defines the interface for sub-admin data access.
// Find methods return nil, nil when nothing matches.
// All implementations must be wrapped with instrumentation.
type Repository interface {
	FindByID(ctx context.Context, id string) (*SubAdmin, error)
	FindByEmail(ctx context.Context, email string) (*SubAdmin, error)
	FindActiveByEmail(ctx context.Context, email string) (*SubAdmin, error)
	FindAll(ctx context.Context) ([]*SubAdmin, error)
	Insert(ctx context.Context, s *SubAdmin) error
	Update(ctx context.Context, s *SubAdmin) error
	Delete(ctx context.Context, id string) error

	// TouchLogin records a successful authentication and rebinds the subject id.
	TouchLogin(ctx context.Context, id, subjectID string, at time.Time) error
}
