package common

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const correlationIDKey contextKey = "correlationID"

// HTTP header names for request correlation
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"
)

// ExecutionContext contains metadata about the current use case execution.
// It is copied onto every domain event and audit log entry.
type ExecutionContext struct {
	// ExecutionID is unique per use case invocation
	ExecutionID string

	// CorrelationID ties together everything done for one inbound request
	CorrelationID string

	// PrincipalID is the subject id of the acting administrator
	PrincipalID string

	// PrincipalEmail is recorded for display in audit views
	PrincipalEmail string

	InitiatedAt time.Time
}

// NewExecutionContext creates an execution context for work not tied to a request,
// such as the reconciler.
func NewExecutionContext(principalID string) *ExecutionContext {
	execID := "exec-" + uuid.NewString()
	return &ExecutionContext{
		ExecutionID:   execID,
		CorrelationID: execID,
		PrincipalID:   principalID,
		InitiatedAt:   time.Now(),
	}
}

// ExecutionContextFromRequest creates an execution context for an HTTP request.
func ExecutionContextFromRequest(r *http.Request, principalID, principalEmail string) *ExecutionContext {
	ec := NewExecutionContext(principalID)
	ec.PrincipalEmail = principalEmail
	if id := CorrelationIDFromContext(r.Context()); id != "" {
		ec.CorrelationID = id
	}
	return ec
}

// CorrelationIDFromContext returns the correlation id set by TracingMiddleware.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID adds a correlation ID to a context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// TracingMiddleware reads or generates a correlation id, stores it in the request
// context and echoes it on the response.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = r.Header.Get(HeaderRequestID)
		}
		if correlationID == "" {
			correlationID = "trace-" + uuid.NewString()
		}

		w.Header().Set(HeaderCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), correlationID)))
	})
}
