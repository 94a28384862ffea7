package authz

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/identity"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// Resolver maps a bearer credential to a Role.
type Resolver struct {
	verifier  identity.Verifier
	subAdmins subadmin.Repository
	coreEmail string
	now       func() time.Time
}

// NewResolver creates a resolver. coreEmail identifies the core administrator.
func NewResolver(verifier identity.Verifier, subAdmins subadmin.Repository, coreEmail string) *Resolver {
	return &Resolver{
		verifier:  verifier,
		subAdmins: subAdmins,
		coreEmail: subadmin.NormalizeEmail(coreEmail),
		now:       time.Now,
	}
}

// Resolve verifies credential and classifies the caller. A verified caller
// without an active profile resolves to an unauthorized role, not an error.
func (r *Resolver) Resolve(ctx context.Context, credential string) (Role, *common.UseCaseError) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		metrics.AuthResolutions.WithLabelValues("missing").Inc()
		return Role{}, common.UnauthenticatedError(common.ErrCodeMissingCredential, "No authorization token provided")
	}

	id, err := r.verifier.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			slog.WarnContext(ctx, "Identity provider unavailable", "error", err)
			metrics.AuthResolutions.WithLabelValues("upstream").Inc()
			return Role{}, common.UpstreamError(common.ErrCodeUpstream, "Identity provider is unavailable")
		}
		metrics.AuthResolutions.WithLabelValues("invalid").Inc()
		return Role{}, common.UnauthenticatedError(common.ErrCodeInvalidCredential, "Invalid or expired token")
	}

	email := subadmin.NormalizeEmail(id.Email)
	if r.coreEmail != "" && email == r.coreEmail {
		metrics.AuthResolutions.WithLabelValues("core").Inc()
		return Role{Kind: permission.RoleCore, Identity: id}, nil
	}

	profile, err := r.subAdmins.FindActiveByEmail(ctx, email)
	if err != nil {
		metrics.AuthResolutions.WithLabelValues("upstream").Inc()
		return Role{}, common.StoreError(ctx, "load administrator profile", err)
	}
	if profile == nil {
		metrics.AuthResolutions.WithLabelValues("unauthorized").Inc()
		return Role{Kind: permission.RoleUnauthorized, Identity: id}, nil
	}

	now := r.now()
	if err := r.subAdmins.TouchLogin(ctx, profile.ID, id.SubjectID, now); err != nil {
		slog.WarnContext(ctx, "Failed to record sub-admin login",
			"subAdminId", profile.ID,
			"error", err)
	} else {
		profile.LastLoginAt = now
		profile.SubjectID = id.SubjectID
	}

	metrics.AuthResolutions.WithLabelValues("delegated").Inc()
	return Role{Kind: permission.RoleDelegated, Identity: id, Profile: profile}, nil
}
