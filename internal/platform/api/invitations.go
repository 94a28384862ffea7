package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// InvitationHandler handles invitation endpoints using UseCases
type InvitationHandler struct {
	createUseCase *operations.CreateInvitationUseCase
	listUseCase   *operations.ListInvitationsUseCase
	verifyUseCase *operations.VerifyInvitationUseCase
	acceptUseCase *operations.AcceptInvitationUseCase
	revokeUseCase *operations.RevokeInvitationUseCase
}

// NewInvitationHandler creates a new invitation handler with UseCases
func NewInvitationHandler(
	invitations invitation.Repository,
	subAdmins subadmin.Repository,
	uow common.UnitOfWork,
	notifier notify.Notifier,
	settings operations.Settings,
) *InvitationHandler {
	return &InvitationHandler{
		createUseCase: operations.NewCreateInvitationUseCase(invitations, subAdmins, uow, notifier, settings),
		listUseCase:   operations.NewListInvitationsUseCase(invitations),
		verifyUseCase: operations.NewVerifyInvitationUseCase(invitations, uow),
		acceptUseCase: operations.NewAcceptInvitationUseCase(invitations, subAdmins, uow),
		revokeUseCase: operations.NewRevokeInvitationUseCase(invitations, uow),
	}
}

// Create handles POST /api/invitations.
// The raw token is returned once, in the accept URL.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd operations.CreateInvitationCommand
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteInvalidBody(w, err)
		return
	}

	result := h.createUseCase.Execute(r.Context(), cmd, execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusCreated, "Invitation sent", result.Value())
}

// List handles GET /api/invitations?status=
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.listUseCase.Execute(r.Context(), r.URL.Query().Get("status"))
	WriteQueryResult(w, invitations, err)
}

// Verify handles GET /api/invitations/{token}/verify
func (h *InvitationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	summary, err := h.verifyUseCase.Execute(r.Context(), chi.URLParam(r, "token"), execContext(r))
	WriteQueryResult(w, summary, err)
}

type acceptInvitationRequest struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

// Accept handles POST /api/invitations/{token}/accept.
// The identity comes from the verified credential, not the body.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req acceptInvitationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteInvalidBody(w, err)
		return
	}

	role := callerRole(r)
	result := h.acceptUseCase.Execute(r.Context(), operations.AcceptInvitationCommand{
		Token:       chi.URLParam(r, "token"),
		SubjectID:   role.Identity.SubjectID,
		Email:       role.Identity.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	}, execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusOK, "Invitation accepted", result.Value())
}

// Revoke handles DELETE /api/invitations/{id}
func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	result := h.revokeUseCase.Execute(r.Context(), operations.RevokeInvitationCommand{
		ID: chi.URLParam(r, "id"),
	}, execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusOK, "Invitation revoked", nil)
}
