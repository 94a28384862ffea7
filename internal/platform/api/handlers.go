// Package api is the HTTP surface of the portfolio admin backend.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/audit"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/authz"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	invitationops "github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	requestops "github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/ratelimit"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/storage"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// Dependencies are the collaborators the handlers are built from.
type Dependencies struct {
	// UnitOfWork for atomic operations
	UnitOfWork common.UnitOfWork

	// Repositories
	SubAdmins       subadmin.Repository
	Invitations     invitation.Repository
	PendingRequests pendingrequest.Repository
	AuditLogs       audit.Repository

	Documents  store.DocumentStore
	Files      storage.FileStorage
	Dispatcher *execution.Dispatcher
	Notifier   notify.Notifier
	Resolver   *authz.Resolver

	// PublicLimiter throttles unauthenticated endpoints; nil disables it
	PublicLimiter ratelimit.Limiter

	Invitation   invitationops.Settings
	AutoEnqueue  bool
	ClaimTimeout time.Duration
	MaxBodyBytes int64
}

// Handlers contains all API handlers
type Handlers struct {
	deps Dependencies
	auth *authz.Middleware

	invitationHandler *InvitationHandler
	delegateHandler   *DelegateHandler
	requestHandler    *PendingRequestHandler
	contentHandler    *ContentHandler
	uploadHandler     *UploadHandler
	auditHandler      *AuditLogHandler
}

// NewHandlers wires the use cases into handlers
func NewHandlers(deps Dependencies) *Handlers {
	submit := requestops.NewSubmitRequestUseCase(deps.PendingRequests, deps.Dispatcher, deps.UnitOfWork)

	return &Handlers{
		deps:              deps,
		auth:              authz.NewMiddleware(deps.Resolver),
		invitationHandler: NewInvitationHandler(deps.Invitations, deps.SubAdmins, deps.UnitOfWork, deps.Notifier, deps.Invitation),
		delegateHandler:   NewDelegateHandler(deps.SubAdmins, deps.UnitOfWork),
		requestHandler: NewPendingRequestHandler(
			deps.PendingRequests,
			submit,
			deps.Dispatcher,
			deps.UnitOfWork,
			deps.Notifier,
			deps.ClaimTimeout,
		),
		contentHandler: NewContentHandler(
			deps.Documents,
			deps.Dispatcher,
			authz.NewEnqueuer(submit),
			deps.UnitOfWork,
			deps.AutoEnqueue,
		),
		uploadHandler: NewUploadHandler(deps.Files, deps.MaxBodyBytes),
		auditHandler:  NewAuditLogHandler(deps.AuditLogs),
	}
}

// Mount registers every /api route on r.
func (h *Handlers) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(MaxBodySize(h.deps.MaxBodyBytes))

		// Public
		r.With(rateLimited(h.deps.PublicLimiter, "invitation_verify")).
			Get("/invitations/{token}/verify", h.invitationHandler.Verify)
		r.With(rateLimited(h.deps.PublicLimiter, "contact")).
			Post("/contact", h.contentHandler.Contact)
		r.Get("/profile", h.contentHandler.GetProfile)
		h.contentHandler.MountPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticate)

			// Any verified identity may accept an invitation addressed to it
			r.With(rateLimited(h.deps.PublicLimiter, "invitation_accept")).
				Post("/invitations/{token}/accept", h.invitationHandler.Accept)

			r.Group(func(r chi.Router) {
				r.Use(authz.RequireAdmin)

				r.Get("/my-permissions", h.delegateHandler.MyPermissions)
				r.Mount("/pending-requests", h.requestHandler.Routes())
				r.Put("/profile", h.contentHandler.UpdateProfile)
				r.With(authz.RequirePage(permission.PageProfile, permission.ActionCreate)).
					Post("/uploads", h.uploadHandler.Upload)
				h.contentHandler.MountAdmin(r)

				r.Group(func(r chi.Router) {
					r.Use(authz.RequireCore)

					r.Post("/invitations", h.invitationHandler.Create)
					r.Get("/invitations", h.invitationHandler.List)
					r.Delete("/invitations/{id}", h.invitationHandler.Revoke)
					r.Mount("/delegates", h.delegateHandler.Routes())
					r.Mount("/audit-logs", h.auditHandler.Routes())
				})
			})
		})
	})
}
