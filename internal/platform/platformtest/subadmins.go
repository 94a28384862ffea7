package platformtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// SubAdmins is an in-memory subadmin.Repository. Email is unique.
type SubAdmins struct {
	mu   sync.Mutex
	rows map[string]subadmin.SubAdmin

	// Err, when set, is returned by every call.
	Err error
	// TouchErr, when set, is returned by TouchLogin only.
	TouchErr error
}

// NewSubAdmins creates an empty repository.
func NewSubAdmins() *SubAdmins {
	return &SubAdmins{rows: map[string]subadmin.SubAdmin{}}
}

// Seed stores s as-is and returns it.
func (r *SubAdmins) Seed(s *subadmin.SubAdmin) *subadmin.SubAdmin {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.rows[s.ID] = *s
	return s
}

func (r *SubAdmins) find(match func(subadmin.SubAdmin) bool) (*subadmin.SubAdmin, error) {
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

func (r *SubAdmins) FindByID(_ context.Context, id string) (*subadmin.SubAdmin, error) {
	return r.find(func(s subadmin.SubAdmin) bool { return s.ID == id })
}

func (r *SubAdmins) FindByEmail(_ context.Context, email string) (*subadmin.SubAdmin, error) {
	email = subadmin.NormalizeEmail(email)
	return r.find(func(s subadmin.SubAdmin) bool { return s.Email == email })
}

func (r *SubAdmins) FindActiveByEmail(_ context.Context, email string) (*subadmin.SubAdmin, error) {
	email = subadmin.NormalizeEmail(email)
	return r.find(func(s subadmin.SubAdmin) bool { return s.Email == email && s.IsActive })
}

func (r *SubAdmins) FindAll(_ context.Context) ([]*subadmin.SubAdmin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []*subadmin.SubAdmin{}
	for _, row := range r.rows {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *SubAdmins) Insert(_ context.Context, s *subadmin.SubAdmin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Email = subadmin.NormalizeEmail(s.Email)
	for _, row := range r.rows {
		if row.ID == s.ID || row.Email == s.Email {
			return repository.ErrDuplicateKey
		}
	}
	r.rows[s.ID] = *s
	return nil
}

func (r *SubAdmins) Update(_ context.Context, s *subadmin.SubAdmin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[s.ID]; !ok {
		return repository.ErrNotFound
	}
	r.rows[s.ID] = *s
	return nil
}

func (r *SubAdmins) Delete(_ context.Context, id string) error {
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

func (r *SubAdmins) TouchLogin(_ context.Context, id, subjectID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.TouchErr != nil {
		return r.TouchErr
	}
	row, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.LastLoginAt = at
	row.SubjectID = subjectID
	r.rows[id] = row
	return nil
}

// Count returns the number of stored profiles.
func (r *SubAdmins) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
