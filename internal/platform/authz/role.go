// Package authz classifies callers of the admin API and guards routes with
// the permission model.
package authz

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/identity"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// Role is a resolved caller. Profile is set only for delegated administrators.
type Role struct {
	Kind     permission.RoleKind
	Identity identity.Identity
	Profile  *subadmin.SubAdmin
}

func (r Role) IsCore() bool      { return r.Kind == permission.RoleCore }
func (r Role) IsDelegated() bool { return r.Kind == permission.RoleDelegated }
func (r Role) IsAdmin() bool     { return r.IsCore() || r.IsDelegated() }

// Grant returns the input of the permission model for this caller.
func (r Role) Grant() permission.Grant {
	g := permission.Grant{Kind: r.Kind}
	if r.Profile != nil {
		g.Permissions = r.Profile.PagePermissions
	}
	return g
}

// Requester returns the caller as seen by the approval workflow.
func (r Role) Requester() operations.Requester {
	if r.IsCore() {
		return operations.CoreRequester()
	}
	return operations.DelegateRequester(r.Profile)
}

type roleKey struct{}

// WithRole stores the resolved role in ctx.
func WithRole(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, roleKey{}, r)
}

// RoleFrom returns the role stored by Authenticate.
func RoleFrom(ctx context.Context) (Role, bool) {
	r, ok := ctx.Value(roleKey{}).(Role)
	return r, ok
}
