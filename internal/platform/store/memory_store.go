package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore. Batches are applied under one
// lock after validating every operation, so they are atomic as well.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]map[string]Document{}}
}

func copyDoc(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) coll(name string) map[string]Document {
	c, ok := s.collections[name]
	if !ok {
		c = map[string]Document{}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *MemoryStore) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	var docs []Document
	for _, doc := range s.collections[collection] {
		if matches(doc, q.Filter) {
			docs = append(docs, copyDoc(doc))
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			less := lessValue(docs[i][q.OrderBy], docs[j][q.OrderBy])
			if q.Desc {
				return lessValue(docs[j][q.OrderBy], docs[i][q.OrderBy])
			}
			return less
		})
	} else {
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
	}
	if q.Limit > 0 && int64(len(docs)) > q.Limit {
		docs = docs[:q.Limit]
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

func (s *MemoryStore) Add(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	doc := Document{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["id"] = id
	s.coll(collection)[id] = doc
	return id, nil
}

// Put stores a document under id, replacing any existing one. Used to seed tests.
func (s *MemoryStore) Put(collection, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := Document{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["id"] = id
	s.coll(collection)[id] = doc
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	merge(doc, fields)
	return nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	doc, ok := c[id]
	if !ok {
		doc = Document{"id": id}
		c[id] = doc
	}
	merge(doc, fields)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

type memoryBatch struct {
	store *MemoryStore
	ops   []batchOp
}

func (b *memoryBatch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, fields: fields})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, delete: true})
}

func (b *memoryBatch) Commit(_ context.Context) error {
	if len(b.ops) == 0 {
		return ErrEmptyBatch
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range b.ops {
		if op.delete {
			continue
		}
		if _, ok := s.collections[op.collection][op.id]; !ok {
			return fmt.Errorf("%s/%s: %w", op.collection, op.id, ErrNotFound)
		}
	}
	for _, op := range b.ops {
		if op.delete {
			delete(s.collections[op.collection], op.id)
			continue
		}
		merge(s.collections[op.collection][op.id], op.fields)
	}
	return nil
}

func merge(doc Document, fields map[string]any) {
	for k, v := range fields {
		if k == "id" || k == "_id" {
			continue
		}
		doc[k] = v
	}
}

func matches(doc Document, filter map[string]any) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

// lessValue orders numbers, strings and times; other values compare equal.
func lessValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa < fb
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
