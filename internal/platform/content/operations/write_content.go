// Package operations holds the direct content writes of the core
// administrator and delegates with CREATE rights.
package operations

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/content"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
)

// CreateContentCommand adds a document to a collection
type CreateContentCommand struct {
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
}

// ToAuditJSON records the collection and the field names only.
func (c CreateContentCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]any{"collection": c.Collection, "fields": fieldNames(c.Fields)})
}

// UpdateContentCommand merges fields into a document
type UpdateContentCommand struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Fields     map[string]any `json:"fields"`
}

// ToAuditJSON records the collection, id and field names only.
func (c UpdateContentCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]any{"collection": c.Collection, "id": c.ID, "fields": fieldNames(c.Fields)})
}

// DeleteContentCommand removes a document
type DeleteContentCommand struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// ContentUseCases applies content writes through the unit of work so each
// one gets an event and an audit entry.
type ContentUseCases struct {
	docs       store.DocumentStore
	unitOfWork common.UnitOfWork
	now        func() time.Time
}

// NewContentUseCases creates the content write use cases
func NewContentUseCases(docs store.DocumentStore, uow common.UnitOfWork) *ContentUseCases {
	return &ContentUseCases{docs: docs, unitOfWork: uow, now: time.Now}
}

// Create stores a new document and returns it with its id.
func (uc *ContentUseCases) Create(
	ctx context.Context,
	res content.Resource,
	cmd CreateContentCommand,
	execCtx *common.ExecutionContext,
) common.Result[store.Document] {
	fields, ucErr := cleanFields(cmd.Fields)
	if ucErr != nil {
		return common.Failure[store.Document](ucErr)
	}

	id := uuid.NewString()
	now := uc.now()
	fields["createdAt"] = now
	fields["updatedAt"] = now

	doc := store.Document{"id": id}
	for k, v := range fields {
		doc[k] = v
	}

	cmd.Collection = res.Collection
	event := events.NewContentChanged(execCtx, events.EventTypeContentCreated, res.Collection, id)
	return common.CommitValue(ctx, uc.unitOfWork, doc, event, cmd, func(ctx context.Context) error {
		return uc.docs.Set(ctx, res.Collection, id, fields)
	})
}

// Update merges fields into an existing document and returns the result.
func (uc *ContentUseCases) Update(
	ctx context.Context,
	res content.Resource,
	cmd UpdateContentCommand,
	execCtx *common.ExecutionContext,
) common.Result[store.Document] {
	fields, ucErr := cleanFields(cmd.Fields)
	if ucErr != nil {
		return common.Failure[store.Document](ucErr)
	}
	existing, ucErr := uc.load(ctx, res, cmd.ID)
	if ucErr != nil {
		return common.Failure[store.Document](ucErr)
	}

	fields["updatedAt"] = uc.now()
	for k, v := range fields {
		existing[k] = v
	}

	cmd.Collection = res.Collection
	event := events.NewContentChanged(execCtx, events.EventTypeContentUpdated, res.Collection, cmd.ID)
	return common.CommitValue(ctx, uc.unitOfWork, existing, event, cmd, func(ctx context.Context) error {
		return uc.docs.Update(ctx, res.Collection, cmd.ID, fields)
	})
}

// Delete removes a document.
func (uc *ContentUseCases) Delete(
	ctx context.Context,
	res content.Resource,
	cmd DeleteContentCommand,
	execCtx *common.ExecutionContext,
) common.Result[common.DomainEvent] {
	if _, ucErr := uc.load(ctx, res, cmd.ID); ucErr != nil {
		return common.Failure[common.DomainEvent](ucErr)
	}

	cmd.Collection = res.Collection
	event := events.NewContentChanged(execCtx, events.EventTypeContentDeleted, res.Collection, cmd.ID)
	return uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
		return uc.docs.Delete(ctx, res.Collection, cmd.ID)
	})
}

// Load returns a document of res, or NotFound.
func (uc *ContentUseCases) Load(ctx context.Context, res content.Resource, id string) (store.Document, *common.UseCaseError) {
	return uc.load(ctx, res, id)
}

func (uc *ContentUseCases) load(ctx context.Context, res content.Resource, id string) (store.Document, *common.UseCaseError) {
	if id == "" {
		return nil, common.ValidationError(common.ErrCodeRequired, "Document ID is required", nil)
	}
	doc, err := uc.docs.Get(ctx, res.Collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, common.NotFoundError(common.ErrCodeEntityMissing, "Document not found",
			map[string]any{"collection": res.Collection, "id": id})
	}
	if err != nil {
		return nil, common.StoreError(ctx, "load "+res.Kind, err)
	}
	return doc, nil
}

func cleanFields(data map[string]any) (map[string]any, *common.UseCaseError) {
	if len(data) == 0 {
		return nil, common.ValidationError(common.ErrCodeRequired, "Document fields are required", nil)
	}
	fields, err := execution.CleanFields(data)
	if err != nil {
		return nil, common.ValidationError(common.ErrCodeInvalidValue, err.Error(), nil)
	}
	if len(fields) == 0 {
		return nil, common.ValidationError(common.ErrCodeRequired, "Document fields are required", nil)
	}
	return fields, nil
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
