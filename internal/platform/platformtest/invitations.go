package platformtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// Invitations is an in-memory invitation.Repository. At most one pending
// invitation per email may exist.
type Invitations struct {
	mu   sync.Mutex
	rows map[string]invitation.Invitation

	// Err, when set, is returned by every call.
	Err error
}

// NewInvitations creates an empty repository.
func NewInvitations() *Invitations {
	return &Invitations{rows: map[string]invitation.Invitation{}}
}

// Seed stores inv as-is and returns it.
func (r *Invitations) Seed(inv *invitation.Invitation) *invitation.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	r.rows[inv.ID] = *inv
	return inv
}

func (r *Invitations) find(match func(invitation.Invitation) bool) (*invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, row := range r.rows {
		if match(row) {
			out := row
			return &out, nil
		}
	}
	return nil, nil
}

func (r *Invitations) FindByID(_ context.Context, id string) (*invitation.Invitation, error) {
	return r.find(func(i invitation.Invitation) bool { return i.ID == id })
}

func (r *Invitations) FindPendingByTokenHash(_ context.Context, tokenHash string) (*invitation.Invitation, error) {
	return r.find(func(i invitation.Invitation) bool {
		return i.TokenHash == tokenHash && i.Status == invitation.StatusPending
	})
}

func (r *Invitations) FindPendingByEmail(_ context.Context, email string) (*invitation.Invitation, error) {
	email = subadmin.NormalizeEmail(email)
	return r.find(func(i invitation.Invitation) bool {
		return i.Email == email && i.Status == invitation.StatusPending
	})
}

func (r *Invitations) FindAll(_ context.Context, status invitation.Status) ([]*invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []*invitation.Invitation{}
	for _, row := range r.rows {
		if status != "" && row.Status != status {
			continue
		}
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Invitations) Insert(_ context.Context, inv *invitation.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	for _, row := range r.rows {
		if row.ID == inv.ID {
			return repository.ErrDuplicateKey
		}
		if inv.Status == invitation.StatusPending && row.Status == invitation.StatusPending && row.Email == inv.Email {
			return repository.ErrDuplicateKey
		}
	}
	r.rows[inv.ID] = *inv
	return nil
}

func (r *Invitations) Transition(_ context.Context, id string, status invitation.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	row, ok := r.rows[id]
	if !ok || row.Status != invitation.StatusPending {
		return repository.ErrConditionFailed
	}
	row.Status = status
	if status == invitation.StatusAccepted {
		row.AcceptedAt = &at
	}
	r.rows[id] = row
	return nil
}

func (r *Invitations) Delete(_ context.Context, id string) error {
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

// Get returns a stored invitation without going through the interface.
func (r *Invitations) Get(id string) (invitation.Invitation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	return row, ok
}
