package audit

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

// Repository reads audit entries, newest first
type Repository interface {
	Find(ctx context.Context, filter Filter) ([]*common.AuditEntry, error)
	FindByID(ctx context.Context, id string) (*common.AuditEntry, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new audit log repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return &instrumentedRepository{inner: &mongoRepository{
		collection: db.Collection(common.AuditCollection),
	}}
}

func (r *mongoRepository) Find(ctx context.Context, filter Filter) ([]*common.AuditEntry, error) {
	query := bson.M{}
	if filter.EntityType != "" {
		query["entityType"] = filter.EntityType
	}
	if filter.EntityID != "" {
		query["entityId"] = filter.EntityID
	}
	if filter.PrincipalID != "" {
		query["principalId"] = filter.PrincipalID
	}
	if !filter.Before.IsZero() {
		query["performedAt"] = bson.M{"$lt": filter.Before}
	}

	opts := options.Find().SetSort(bson.D{{Key: "performedAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []*common.AuditEntry{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*common.AuditEntry, error) {
	var entry common.AuditEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type instrumentedRepository struct {
	inner Repository
}

func (r *instrumentedRepository) Find(ctx context.Context, filter Filter) ([]*common.AuditEntry, error) {
	return repository.Instrument(ctx, common.AuditCollection, "Find", func() ([]*common.AuditEntry, error) {
		return r.inner.Find(ctx, filter)
	})
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*common.AuditEntry, error) {
	return repository.Instrument(ctx, common.AuditCollection, "FindByID", func() (*common.AuditEntry, error) {
		return r.inner.FindByID(ctx, id)
	})
}
