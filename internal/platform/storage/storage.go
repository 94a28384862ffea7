// Package storage uploads and deletes files (profile images, CV documents)
// in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
)

// Kind classifies an uploaded file.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// ParseKind returns the kind named s, defaulting to image.
func ParseKind(s string) Kind {
	if Kind(s) == KindDocument {
		return KindDocument
	}
	return KindImage
}

// StoredFile identifies an uploaded file.
type StoredFile struct {
	URL       string `json:"url"`
	StorageID string `json:"storageId"`
}

// ErrUnavailable is returned when the storage backend cannot be reached.
var ErrUnavailable = errors.New("file storage unavailable")

// FileStorage is the object storage used by uploads and approved executions.
type FileStorage interface {
	Upload(ctx context.Context, body io.Reader, size int64, folder string, kind Kind, contentType string) (StoredFile, error)
	Delete(ctx context.Context, storageID string, kind Kind) error
}
