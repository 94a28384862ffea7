package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin/operations"
)

// DelegateHandler handles delegated administrator endpoints using UseCases
type DelegateHandler struct {
	repo subadmin.Repository

	// UseCases
	updatePermissionsUseCase *operations.UpdatePermissionsUseCase
	disableUseCase           *operations.DisableSubAdminUseCase
	enableUseCase            *operations.EnableSubAdminUseCase
	deleteUseCase            *operations.DeleteSubAdminUseCase
}

// NewDelegateHandler creates a new delegate handler with UseCases
func NewDelegateHandler(repo subadmin.Repository, uow common.UnitOfWork) *DelegateHandler {
	return &DelegateHandler{
		repo:                     repo,
		updatePermissionsUseCase: operations.NewUpdatePermissionsUseCase(repo, uow),
		disableUseCase:           operations.NewDisableSubAdminUseCase(repo, uow),
		enableUseCase:            operations.NewEnableSubAdminUseCase(repo, uow),
		deleteUseCase:            operations.NewDeleteSubAdminUseCase(repo, uow),
	}
}

// Routes returns the router for delegate endpoints
func (h *DelegateHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/permissions", h.UpdatePermissions)
	r.Put("/{id}/disable", h.Disable)
	r.Put("/{id}/enable", h.Enable)
	r.Delete("/{id}", h.Delete)

	return r
}

// List handles GET /api/delegates
func (h *DelegateHandler) List(w http.ResponseWriter, r *http.Request) {
	delegates, err := h.repo.FindAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list sub-admins", "error", err)
		common.WriteUseCaseError(w, common.StoreError(r.Context(), "list sub-admins", err))
		return
	}
	if delegates == nil {
		delegates = []*subadmin.SubAdmin{}
	}
	common.WriteSuccess(w, http.StatusOK, delegates)
}

// Get handles GET /api/delegates/{id}
func (h *DelegateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	delegate, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		common.WriteUseCaseError(w, common.StoreError(r.Context(), "load sub-admin", err))
		return
	}
	if delegate == nil {
		common.WriteUseCaseError(w, common.NotFoundError(common.ErrCodeSubAdminNotFound, "Sub-admin not found", map[string]any{"id": id}))
		return
	}
	common.WriteSuccess(w, http.StatusOK, delegate)
}

// UpdatePermissions handles PUT /api/delegates/{id}/permissions
func (h *DelegateHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	var cmd operations.UpdatePermissionsCommand
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteInvalidBody(w, err)
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	WriteUseCaseResult(w, h.updatePermissionsUseCase.Execute(r.Context(), cmd, execContext(r)), http.StatusOK)
}

// Disable handles PUT /api/delegates/{id}/disable
func (h *DelegateHandler) Disable(w http.ResponseWriter, r *http.Request) {
	var cmd operations.DisableSubAdminCommand
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteInvalidBody(w, err)
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	WriteUseCaseResult(w, h.disableUseCase.Execute(r.Context(), cmd, execContext(r)), http.StatusOK)
}

// Enable handles PUT /api/delegates/{id}/enable
func (h *DelegateHandler) Enable(w http.ResponseWriter, r *http.Request) {
	cmd := operations.EnableSubAdminCommand{ID: chi.URLParam(r, "id")}
	WriteUseCaseResult(w, h.enableUseCase.Execute(r.Context(), cmd, execContext(r)), http.StatusOK)
}

// Delete handles DELETE /api/delegates/{id}
func (h *DelegateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result := h.deleteUseCase.Execute(r.Context(), operations.DeleteSubAdminCommand{
		ID: chi.URLParam(r, "id"),
	}, execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusOK, "Sub-admin deleted", nil)
}

// MyPermissionsResponse describes the caller's grant.
type MyPermissionsResponse struct {
	Role        string                     `json:"role"`
	Email       string                     `json:"email"`
	DisplayName string                     `json:"displayName,omitempty"`
	Permissions permission.PagePermissions `json:"permissions"`
}

// MyPermissions handles GET /api/my-permissions
func (h *DelegateHandler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	role := callerRole(r)

	resp := MyPermissionsResponse{
		Role:  role.Kind.String(),
		Email: role.Identity.Email,
	}
	if role.IsCore() {
		resp.Permissions = permission.FullPermissions()
	} else if role.Profile != nil {
		resp.DisplayName = role.Profile.DisplayName
		resp.Permissions = role.Profile.PagePermissions
	}
	common.WriteSuccess(w, http.StatusOK, resp)
}
