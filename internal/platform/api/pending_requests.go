package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/authz"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest/operations"
)

// PendingRequestHandler handles the approval workflow endpoints
type PendingRequestHandler struct {
	queries *operations.Queries

	submitUseCase  *operations.SubmitRequestUseCase
	processUseCase *operations.ProcessRequestUseCase
	retryUseCase   *operations.RetryExecutionUseCase
	deleteUseCase  *operations.DeleteRequestUseCase
}

// NewPendingRequestHandler creates a new pending request handler.
// submit is shared with the content endpoints.
func NewPendingRequestHandler(
	repo pendingrequest.Repository,
	submit *operations.SubmitRequestUseCase,
	executor operations.Executor,
	uow common.UnitOfWork,
	notifier notify.Notifier,
	claimTimeout time.Duration,
) *PendingRequestHandler {
	return &PendingRequestHandler{
		queries:        operations.NewQueries(repo),
		submitUseCase:  submit,
		processUseCase: operations.NewProcessRequestUseCase(repo, executor, uow, notifier),
		retryUseCase:   operations.NewRetryExecutionUseCase(repo, executor, uow, notifier, claimTimeout),
		deleteUseCase:  operations.NewDeleteRequestUseCase(repo, uow),
	}
}

// Routes returns the router for pending request endpoints. The caller is
// already known to be an administrator.
func (h *PendingRequestHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Submit)
	r.Get("/mine", h.ListMine)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireCore)
		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Put("/{id}/process", h.Process)
		r.Post("/{id}/retry", h.Retry)
	})

	return r
}

// Submit handles POST /api/pending-requests
func (h *PendingRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var cmd operations.SubmitRequestCommand
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteInvalidBody(w, err)
		return
	}

	result := h.submitUseCase.Execute(r.Context(), cmd, callerRole(r).Requester(), execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusCreated, "Request submitted for approval", result.Value())
}

// List handles GET /api/pending-requests?status=
func (h *PendingRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.queries.List(r.Context(), r.URL.Query().Get("status"))
	WriteQueryResult(w, requests, err)
}

// ListMine handles GET /api/pending-requests/mine
func (h *PendingRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	role := callerRole(r)
	if !role.IsDelegated() || role.Profile == nil {
		common.WriteUseCaseError(w, common.ForbiddenError(common.ErrCodeAccessDenied,
			"Only sub-admins have their own requests", nil))
		return
	}
	requests, err := h.queries.ListMine(r.Context(), role.Profile.ID)
	WriteQueryResult(w, requests, err)
}

// Stats handles GET /api/pending-requests/stats
func (h *PendingRequestHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.Stats(r.Context())
	WriteQueryResult(w, stats, err)
}

// Get handles GET /api/pending-requests/{id}. Delegates only see their own.
func (h *PendingRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.queries.Get(r.Context(), chi.URLParam(r, "id"), callerRole(r).Requester())
	WriteQueryResult(w, req, err)
}

// Process handles PUT /api/pending-requests/{id}/process.
// Approval runs the execution inline; a failed execution still answers 200
// with the failure in actionResult, since the decision itself stands.
func (h *PendingRequestHandler) Process(w http.ResponseWriter, r *http.Request) {
	var cmd operations.ProcessRequestCommand
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteInvalidBody(w, err)
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	result := h.processUseCase.Execute(r.Context(), cmd, execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusOK, "Request "+string(result.Value().Request.Status), result.Value())
}

// Retry handles POST /api/pending-requests/{id}/retry
func (h *PendingRequestHandler) Retry(w http.ResponseWriter, r *http.Request) {
	result := h.retryUseCase.Execute(r.Context(), operations.RetryExecutionCommand{
		ID: chi.URLParam(r, "id"),
	}, execContext(r))
	WriteUseCaseResult(w, result, http.StatusOK)
}

// Delete handles DELETE /api/pending-requests/{id}. The core administrator
// may delete any request; a delegate only their own pending ones.
func (h *PendingRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result := h.deleteUseCase.Execute(r.Context(), operations.DeleteRequestCommand{
		ID: chi.URLParam(r, "id"),
	}, callerRole(r).Requester(), execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusOK, "Request deleted", nil)
}
