package api

import (
	"net/http"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/authz"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/ratelimit"
)

// anonymousPrincipal is recorded on events raised by unauthenticated callers.
const anonymousPrincipal = "anonymous"

// MaxBodySize caps request bodies at limit bytes. Decoders see a
// *http.MaxBytesError once the cap is hit.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimited applies limiter to the route, or nothing when limiter is nil.
func rateLimited(limiter ratelimit.Limiter, scope string) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(limiter, scope)
}

// callerRole returns the role stored by authz.Middleware.Authenticate.
// Routes behind RequireAdmin or RequireCore always have one.
func callerRole(r *http.Request) authz.Role {
	role, _ := authz.RoleFrom(r.Context())
	return role
}

// execContext builds the execution context for the calling administrator.
func execContext(r *http.Request) *common.ExecutionContext {
	role, ok := authz.RoleFrom(r.Context())
	if !ok || role.Identity.SubjectID == "" {
		return common.ExecutionContextFromRequest(r, anonymousPrincipal, "")
	}
	return common.ExecutionContextFromRequest(r, role.Identity.SubjectID, role.Identity.Email)
}
