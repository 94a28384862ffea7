// Package execution replays the intended effect of an approved pending
// request against the document store.
//
// Special resource kinds (profileSection, cvUpload, reorder) have bespoke
// handlers; every other kind goes through a table that binds the kind to a
// collection with generic create/update/delete semantics.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/storage"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
)

// Special resource kinds
const (
	KindProfileSection = "profileSection"
	KindCVUpload       = "cvUpload"
	KindReorder        = "reorder"
)

// Outcome is the result of executing an approved request.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Handler applies one resource kind's effect and returns a success message.
type Handler interface {
	Handle(ctx context.Context, req *pendingrequest.PendingRequest) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *pendingrequest.PendingRequest) (string, error)

func (f HandlerFunc) Handle(ctx context.Context, req *pendingrequest.PendingRequest) (string, error) {
	return f(ctx, req)
}

// GenericKind binds a resource kind to a collection.
type GenericKind struct {
	Collection string

	// BatchDelete lets DELETE remove the ids listed in data.ids.
	BatchDelete bool
}

// DefaultGenericKinds is the resource kind to collection table.
var DefaultGenericKinds = map[string]GenericKind{
	"project":    {Collection: "projects"},
	"skill":      {Collection: "skills"},
	"education":  {Collection: "education"},
	"experience": {Collection: "experience"},
	"faq":        {Collection: "faqs"},
	"message":    {Collection: "messages", BatchDelete: true},
}

// Dispatcher routes approved requests to their handler.
type Dispatcher struct {
	docs    store.DocumentStore
	files   storage.FileStorage
	special map[string]Handler
	generic map[string]GenericKind
	now     func() time.Time
}

// NewDispatcher creates a dispatcher with the special kinds and the default
// generic table registered. files may be nil; stored-file cleanup is then skipped.
func NewDispatcher(docs store.DocumentStore, files storage.FileStorage) *Dispatcher {
	d := &Dispatcher{
		docs:    docs,
		files:   files,
		special: map[string]Handler{},
		generic: map[string]GenericKind{},
		now:     time.Now,
	}
	d.Register(KindProfileSection, HandlerFunc(d.profileSection))
	d.Register(KindCVUpload, HandlerFunc(d.cvUpload))
	d.Register(KindReorder, HandlerFunc(d.reorder))
	for kind, g := range DefaultGenericKinds {
		d.RegisterCollection(kind, g)
	}
	return d
}

// Register installs a bespoke handler for kind.
func (d *Dispatcher) Register(kind string, h Handler) {
	d.special[kind] = h
}

// RegisterCollection binds kind to a collection with generic semantics.
func (d *Dispatcher) RegisterCollection(kind string, g GenericKind) {
	d.generic[kind] = g
}

// Collections returns the generic collections in name order.
func (d *Dispatcher) Collections() []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range d.generic {
		if !seen[g.Collection] {
			seen[g.Collection] = true
			out = append(out, g.Collection)
		}
	}
	sort.Strings(out)
	return out
}

// IsSpecial reports whether kind has bespoke semantics.
func (d *Dispatcher) IsSpecial(kind string) bool {
	_, ok := d.special[kind]
	return ok
}

// Execute applies the request. Failures are reported in the outcome and
// never returned as errors.
func (d *Dispatcher) Execute(ctx context.Context, req *pendingrequest.PendingRequest) Outcome {
	start := time.Now()
	outcome := d.execute(ctx, req)

	metrics.ExecutionDuration.WithLabelValues(req.ResourceType).Observe(time.Since(start).Seconds())
	metrics.ExecutionOutcomes.WithLabelValues(req.ResourceType, metrics.ResultLabel(outcome.Success)).Inc()
	return outcome
}

func (d *Dispatcher) execute(ctx context.Context, req *pendingrequest.PendingRequest) Outcome {
	handler, ok := d.special[req.ResourceType]
	if !ok {
		g, ok := d.generic[req.ResourceType]
		if !ok {
			slog.WarnContext(ctx, "Approved request has unknown resource type",
				"requestId", req.ID,
				"resourceType", req.ResourceType)
			return Outcome{
				Success: false,
				Message: fmt.Sprintf("Unknown resource type: %s", req.ResourceType),
				Code:    common.ErrCodeUnknownResourceType,
			}
		}
		handler = HandlerFunc(func(ctx context.Context, req *pendingrequest.PendingRequest) (string, error) {
			return d.applyGeneric(ctx, g, req)
		})
	}

	message, err := handler.Handle(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "Execution of approved request failed",
			"requestId", req.ID,
			"resourceType", req.ResourceType,
			"action", req.Action,
			"error", err)
		return Outcome{Success: false, Message: failureMessage(err), Code: common.ErrCodeExecutionFailed}
	}
	return Outcome{Success: true, Message: message}
}

func failureMessage(err error) string {
	var payloadErr *PayloadError
	if errors.As(err, &payloadErr) {
		return payloadErr.Error()
	}
	if errors.Is(err, store.ErrNotFound) {
		return "Target resource no longer exists"
	}
	return "Failed to apply the change"
}
