// Package store is the generic document store the portfolio content lives in.
// The approval workflow replays approved mutations against it; the content
// endpoints read from it.
package store

import (
	"context"
	"errors"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

// Document is a stored document. The identifier is exposed under "id".
type Document map[string]any

// ID returns the document identifier.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// ErrNotFound is returned when a document addressed by id does not exist.
var ErrNotFound = repository.ErrNotFound

// ErrEmptyBatch is returned when committing a batch with no operations.
var ErrEmptyBatch = errors.New("batch has no operations")

// ErrAtomicBatchUnavailable is returned when a multi-document batch is
// committed on a server without transactions.
var ErrAtomicBatchUnavailable = errors.New("atomic batch requires MongoDB transactions")

// Query selects documents by field equality.
type Query struct {
	Filter  map[string]any
	OrderBy string
	Desc    bool
	Limit   int64
}

// DocumentStore is a key-document store over named collections.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Add inserts fields as a new document and returns its id.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Set merges fields into a document, creating it when absent.
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	Delete(ctx context.Context, collection, id string) error

	// Batch starts an atomic multi-document write.
	Batch() Batch
}

// Batch collects writes that commit together or not at all.
type Batch interface {
	// Update merges fields into an existing document. A missing document
	// fails the whole batch.
	Update(collection, id string, fields map[string]any)

	// Delete removes a document; deleting a missing document is a no-op.
	Delete(collection, id string)

	Commit(ctx context.Context) error
}

type batchOp struct {
	collection string
	id         string
	fields     map[string]any
	delete     bool
}
