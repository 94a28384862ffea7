package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/audit"
)

// AuditLogHandler handles audit log API requests
type AuditLogHandler struct {
	queries *audit.Queries
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(repo audit.Repository) *AuditLogHandler {
	return &AuditLogHandler{queries: audit.NewQueries(repo)}
}

// Routes returns the router for audit log endpoints
func (h *AuditLogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// List handles GET /api/audit-logs with optional entityType, entityId,
// principalId, before (RFC 3339) and limit filters.
func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteBadRequest(w, "limit must be a number")
			return
		}
		limit = n
	}

	logs, err := h.queries.List(r.Context(), audit.ListQuery{
		EntityType:  q.Get("entityType"),
		EntityID:    q.Get("entityId"),
		PrincipalID: q.Get("principalId"),
		Before:      q.Get("before"),
		Limit:       limit,
	})
	WriteQueryResult(w, logs, err)
}

// Get handles GET /api/audit-logs/{id}
func (h *AuditLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.queries.Get(r.Context(), chi.URLParam(r, "id"))
	WriteQueryResult(w, entry, err)
}
