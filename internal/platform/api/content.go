package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/authz"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/content"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/content/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
)

// ContentHandler serves the portfolio collections and the profile.
// Delegate updates and deletes are approval-gated: refused with hints, or
// turned into pending requests when auto-enqueue is on.
type ContentHandler struct {
	docs        store.DocumentStore
	resources   []content.Resource
	enqueuer    *authz.Enqueuer
	autoEnqueue bool

	writes  *operations.ContentUseCases
	profile *operations.UpdateProfileUseCase
	contact *operations.SubmitContactUseCase
}

// NewContentHandler creates a new content handler
func NewContentHandler(
	docs store.DocumentStore,
	executor operations.ProfileExecutor,
	enqueuer *authz.Enqueuer,
	uow common.UnitOfWork,
	autoEnqueue bool,
) *ContentHandler {
	return &ContentHandler{
		docs:        docs,
		resources:   content.Resources(),
		enqueuer:    enqueuer,
		autoEnqueue: autoEnqueue,
		writes:      operations.NewContentUseCases(docs, uow),
		profile:     operations.NewUpdateProfileUseCase(executor, uow),
		contact:     operations.NewSubmitContactUseCase(docs, uow),
	}
}

// MountPublic registers the read routes of the public collections.
func (h *ContentHandler) MountPublic(r chi.Router) {
	for _, res := range h.resources {
		if res.Private {
			continue
		}
		r.Get("/"+res.Collection, h.list(res))
		r.Get("/"+res.Collection+"/{id}", h.get(res))
	}
}

// MountAdmin registers the write routes, and the reads of private
// collections. The caller is already known to be an administrator.
func (h *ContentHandler) MountAdmin(r chi.Router) {
	for _, res := range h.resources {
		if res.Private {
			view := authz.RequirePage(res.Page, permission.ActionView)
			r.With(view).Get("/"+res.Collection, h.list(res))
			r.With(view).Get("/"+res.Collection+"/{id}", h.get(res))
		}
		r.With(authz.RequirePage(res.Page, permission.ActionCreate)).
			Post("/"+res.Collection, h.create(res))
		r.Put("/"+res.Collection+"/{id}", h.update(res))
		r.Delete("/"+res.Collection+"/{id}", h.delete(res))
	}
}

func (h *ContentHandler) list(res content.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.docs.Query(r.Context(), res.Collection, store.Query{OrderBy: res.OrderBy, Desc: res.Desc})
		if err != nil {
			common.WriteUseCaseError(w, common.StoreError(r.Context(), "list "+res.Collection, err))
			return
		}
		common.WriteSuccess(w, http.StatusOK, docs)
	}
}

func (h *ContentHandler) get(res content.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ucErr := h.writes.Load(r.Context(), res, chi.URLParam(r, "id"))
		WriteQueryResult(w, doc, ucErr)
	}
}

func (h *ContentHandler) create(res content.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]any
		if err := DecodeJSON(r, &fields); err != nil {
			WriteInvalidBody(w, err)
			return
		}
		result := h.writes.Create(r.Context(), res, operations.CreateContentCommand{Fields: fields}, execContext(r))
		WriteUseCaseResult(w, result, http.StatusCreated)
	}
}

func (h *ContentHandler) update(res content.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]any
		if err := DecodeJSON(r, &fields); err != nil {
			WriteInvalidBody(w, err)
			return
		}
		id := chi.URLParam(r, "id")

		previous, ucErr := h.writes.Load(r.Context(), res, id)
		if ucErr != nil {
			common.WriteUseCaseError(w, ucErr)
			return
		}
		if !h.gate(w, r, res.Page, permission.ActionUpdate, authz.Mutation{
			ResourceType: res.Kind,
			ResourceID:   id,
			ResourceName: content.DisplayName(previous),
			Data:         fields,
			PreviousData: previous,
		}) {
			return
		}

		result := h.writes.Update(r.Context(), res, operations.UpdateContentCommand{ID: id, Fields: fields}, execContext(r))
		WriteUseCaseResult(w, result, http.StatusOK)
	}
}

func (h *ContentHandler) delete(res content.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		previous, ucErr := h.writes.Load(r.Context(), res, id)
		if ucErr != nil {
			common.WriteUseCaseError(w, ucErr)
			return
		}
		if !h.gate(w, r, res.Page, permission.ActionDelete, authz.Mutation{
			ResourceType: res.Kind,
			ResourceID:   id,
			ResourceName: content.DisplayName(previous),
			Data:         map[string]any{},
			PreviousData: previous,
		}) {
			return
		}

		result := h.writes.Delete(r.Context(), res, operations.DeleteContentCommand{ID: id}, execContext(r))
		if result.IsFailure() {
			common.WriteUseCaseError(w, result.Error())
			return
		}
		common.WriteMessage(w, http.StatusOK, "Deleted", nil)
	}
}

// GetProfile handles GET /api/profile. A missing profile is an empty object.
func (h *ContentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.Get(r.Context(), execution.ProfileCollection, execution.ProfileDocumentID)
	if errors.Is(err, store.ErrNotFound) {
		doc = store.Document{}
	} else if err != nil {
		common.WriteUseCaseError(w, common.StoreError(r.Context(), "load profile", err))
		return
	}
	common.WriteSuccess(w, http.StatusOK, doc)
}

// UpdateProfile handles PUT /api/profile with {section, fields|value}
func (h *ContentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var cmd operations.UpdateProfileCommand
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteInvalidBody(w, err)
		return
	}
	if !h.gate(w, r, permission.PageProfile, permission.ActionUpdate, authz.Mutation{
		ResourceType: execution.KindProfileSection,
		ResourceName: cmd.Section,
		Data:         cmd.Data(),
	}) {
		return
	}
	WriteUseCaseResult(w, h.profile.Execute(r.Context(), cmd, execContext(r)), http.StatusOK)
}

// Contact handles POST /api/contact
func (h *ContentHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var cmd operations.SubmitContactCommand
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteInvalidBody(w, err)
		return
	}
	result := h.contact.Execute(r.Context(), cmd, execContext(r))
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteMessage(w, http.StatusCreated, "Message sent", map[string]string{"id": result.Value()})
}

// gate applies the permission model to a write. It reports whether the
// handler should apply the write itself; otherwise the response is written.
func (h *ContentHandler) gate(
	w http.ResponseWriter,
	r *http.Request,
	page permission.Page,
	action permission.Action,
	m authz.Mutation,
) bool {
	role := callerRole(r)

	if !h.autoEnqueue {
		decision := authz.Decide(role, page, action)
		if !decision.Allowed() {
			common.WriteUseCaseError(w, decision.Err())
			return false
		}
		return true
	}

	result, ucErr := h.enqueuer.DecideOrEnqueue(r.Context(), role, page, action, m, execContext(r))
	if ucErr != nil {
		common.WriteUseCaseError(w, ucErr)
		return false
	}
	if result.Outcome == authz.Enqueued {
		common.WriteMessage(w, http.StatusAccepted, "Change submitted for approval",
			map[string]string{"pendingRequestId": result.PendingRequestID})
		return false
	}
	return true
}
