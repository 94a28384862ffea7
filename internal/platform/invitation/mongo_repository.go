package invitation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// CollectionName is the MongoDB collection holding invitations.
const CollectionName = "invitations"

type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new invitation repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Invitation, error) {
	var inv Invitation
	err := r.collection.FindOne(ctx, filter).Decode(&inv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepository) FindPendingByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error) {
	return r.findOne(ctx, bson.M{"tokenHash": tokenHash, "status": StatusPending})
}

func (r *mongoRepository) FindPendingByEmail(ctx context.Context, email string) (*Invitation, error) {
	return r.findOne(ctx, bson.M{"email": subadmin.NormalizeEmail(email), "status": StatusPending})
}

func (r *mongoRepository) FindAll(ctx context.Context, status Status) ([]*Invitation, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invitations := []*Invitation{}
	if err := cursor.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *mongoRepository) Insert(ctx context.Context, inv *Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, inv)
	return repository.TranslateWriteError(err)
}

func (r *mongoRepository) Transition(ctx context.Context, id string, status Status, at time.Time) error {
	set := bson.M{"status": status}
	if status == StatusAccepted {
		set["acceptedAt"] = at
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrConditionFailed
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
