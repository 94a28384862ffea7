package platformtest

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/storage"
)

// Files is an in-memory storage.FileStorage.
type Files struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	// Err, when set, is returned by every call.
	Err error
}

// NewFiles creates an empty store.
func NewFiles() *Files {
	return &Files{objects: map[string][]byte{}}
}

func (f *Files) Upload(_ context.Context, body io.Reader, _ int64, folder string, kind storage.Kind, _ string) (storage.StoredFile, error) {
	if f.Err != nil {
		return storage.StoredFile{}, f.Err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.StoredFile{}, err
	}
	id := folder + "/" + string(kind) + "/" + uuid.NewString()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[id] = data
	return storage.StoredFile{URL: "https://files.test/" + id, StorageID: id}, nil
}

func (f *Files) Delete(_ context.Context, storageID string, _ storage.Kind) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, storageID)
	f.deleted = append(f.deleted, storageID)
	return nil
}

// Object returns an uploaded object.
func (f *Files) Object(storageID string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[storageID]
	return data, ok
}

// Deleted returns the storage ids passed to Delete.
func (f *Files) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
