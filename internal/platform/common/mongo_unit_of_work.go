package common

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUnitOfWork implements UnitOfWork on MongoDB. With transactions enabled
// (replica set required) the persist step, the event and the audit entry
// commit or roll back together.
type MongoUnitOfWork struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

// NewMongoUnitOfWork creates a new MongoDB-backed UnitOfWork.
func NewMongoUnitOfWork(client *mongo.Client, db *mongo.Database, transactions bool) *MongoUnitOfWork {
	return &MongoUnitOfWork{
		client:       client,
		db:           db,
		transactions: transactions,
	}
}

// Commit implements UnitOfWork.
func (uow *MongoUnitOfWork) Commit(ctx context.Context, event DomainEvent, command any, persist PersistFunc) Result[DomainEvent] {
	write := func(ctx context.Context) error {
		if persist != nil {
			if err := persist(ctx); err != nil {
				return err
			}
		}
		if _, err := uow.db.Collection(EventCollection).InsertOne(ctx, ToPersistedEvent(event)); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if _, err := uow.db.Collection(AuditCollection).InsertOne(ctx, newAuditEntry(event, command)); err != nil {
			return fmt.Errorf("create audit log: %w", err)
		}
		return nil
	}

	if !uow.transactions {
		if err := write(ctx); err != nil {
			return Failure[DomainEvent](commitFailure(event, err))
		}
		return newSuccess(event)
	}

	session, err := uow.client.StartSession()
	if err != nil {
		return Failure[DomainEvent](commitFailure(event, fmt.Errorf("start session: %w", err)))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, write(sessCtx)
	})
	if err != nil {
		return Failure[DomainEvent](commitFailure(event, err))
	}

	return newSuccess(event)
}
