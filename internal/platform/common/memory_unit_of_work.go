package common

import (
	"context"
	"sync"
)

// MemoryUnitOfWork is an in-process UnitOfWork. It runs the persist step and
// keeps events and audit entries in memory. Used by tests and local tooling.
type MemoryUnitOfWork struct {
	mu      sync.Mutex
	events  []DomainEvent
	audit   []*AuditEntry
	failErr error
}

// NewMemoryUnitOfWork creates an empty MemoryUnitOfWork.
func NewMemoryUnitOfWork() *MemoryUnitOfWork {
	return &MemoryUnitOfWork{}
}

// FailWith makes every following commit fail with err before persisting.
func (uow *MemoryUnitOfWork) FailWith(err error) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	uow.failErr = err
}

// Commit implements UnitOfWork.
func (uow *MemoryUnitOfWork) Commit(ctx context.Context, event DomainEvent, command any, persist PersistFunc) Result[DomainEvent] {
	uow.mu.Lock()
	failErr := uow.failErr
	uow.mu.Unlock()

	if failErr != nil {
		return Failure[DomainEvent](commitFailure(event, failErr))
	}
	if persist != nil {
		if err := persist(ctx); err != nil {
			return Failure[DomainEvent](commitFailure(event, err))
		}
	}

	uow.mu.Lock()
	uow.events = append(uow.events, event)
	uow.audit = append(uow.audit, newAuditEntry(event, command))
	uow.mu.Unlock()

	return newSuccess(event)
}

// Events returns the committed events in order.
func (uow *MemoryUnitOfWork) Events() []DomainEvent {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	return append([]DomainEvent(nil), uow.events...)
}

// EventTypes returns the committed event types in order.
func (uow *MemoryUnitOfWork) EventTypes() []string {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	types := make([]string, len(uow.events))
	for i, e := range uow.events {
		types[i] = e.EventType()
	}
	return types
}

// AuditEntries returns the recorded audit entries in order.
func (uow *MemoryUnitOfWork) AuditEntries() []*AuditEntry {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	return append([]*AuditEntry(nil), uow.audit...)
}
