package platformtest

import (
	"context"
	"sort"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/audit"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

// AuditLogs is an audit.Repository reading the entries recorded by a
// MemoryUnitOfWork.
type AuditLogs struct {
	UoW *common.MemoryUnitOfWork

	// Err, when set, is returned by every call.
	Err error
}

func (r *AuditLogs) Find(_ context.Context, f audit.Filter) ([]*common.AuditEntry, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	out := []*common.AuditEntry{}
	for _, e := range r.UoW.AuditEntries() {
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		if f.PrincipalID != "" && e.PrincipalID != f.PrincipalID {
			continue
		}
		if !f.Before.IsZero() && !e.PerformedAt.Before(f.Before) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PerformedAt.After(out[j].PerformedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *AuditLogs) FindByID(_ context.Context, id string) (*common.AuditEntry, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	for _, e := range r.UoW.AuditEntries() {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}
