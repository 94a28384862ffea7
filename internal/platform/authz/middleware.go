package authz

import (
	"net/http"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/identity"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

// Middleware guards routes with the resolver and the permission model.
type Middleware struct {
	resolver *Resolver
}

// NewMiddleware creates a new authorization middleware
func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Authenticate resolves the bearer credential and stores the role in the
// request context. Verified callers without a profile pass through with an
// unauthorized role; routes that need an administrator add RequireAdmin.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := identity.BearerToken(r.Header.Get("Authorization"))
		role, ucErr := m.resolver.Resolve(r.Context(), token)
		if ucErr != nil {
			common.WriteUseCaseError(w, ucErr)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
	})
}

// RequireAdmin lets the core administrator and active delegates through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := RoleFrom(r.Context())
		if !ok {
			common.WriteUseCaseError(w, unauthenticated())
			return
		}
		if !role.IsAdmin() {
			common.WriteUseCaseError(w, common.ForbiddenError(common.ErrCodeNotAdmin,
				"You are not authorized to access the admin panel", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCore lets only the core administrator through.
func RequireCore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := RoleFrom(r.Context())
		if !ok {
			common.WriteUseCaseError(w, unauthenticated())
			return
		}
		if !role.IsCore() {
			common.WriteUseCaseError(w, common.ForbiddenError(common.ErrCodeAccessDenied,
				"Only the main administrator can perform this action", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage allows the request only when the permission model allows action
// on page outright. Approval-requiring writes are refused with the hints a
// client needs to submit a pending request instead.
func RequirePage(page permission.Page, action permission.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFrom(r.Context())
			if !ok {
				common.WriteUseCaseError(w, unauthenticated())
				return
			}
			decision := Decide(role, page, action)
			if !decision.Allowed() {
				common.WriteUseCaseError(w, decision.Err())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Decide applies the permission model to role and records the decision.
func Decide(role Role, page permission.Page, action permission.Action) permission.Decision {
	d := permission.Decide(role.Grant(), page, action)
	metrics.AuthzDecisions.WithLabelValues(string(page), action.String(), d.Outcome.String()).Inc()
	return d
}

func unauthenticated() *common.UseCaseError {
	return common.UnauthenticatedError(common.ErrCodeMissingCredential, "Authentication required")
}
