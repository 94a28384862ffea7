package subadmin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

// CollectionName is the MongoDB collection holding sub-admin profiles.
const CollectionName = "sub_admins"

// mongoRepository provides MongoDB access to sub-admin data
type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new sub-admin repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*SubAdmin, error) {
	var s SubAdmin
	err := r.collection.FindOne(ctx, filter).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindByID finds a sub-admin by ID
func (r *mongoRepository) FindByID(ctx context.Context, id string) (*SubAdmin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail finds a sub-admin by email regardless of status
func (r *mongoRepository) FindByEmail(ctx context.Context, email string) (*SubAdmin, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

// FindActiveByEmail finds an enabled sub-admin by email
func (r *mongoRepository) FindActiveByEmail(ctx context.Context, email string) (*SubAdmin, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email), "isActive": true})
}

// FindAll returns all sub-admins, newest first
func (r *mongoRepository) FindAll(ctx context.Context) ([]*SubAdmin, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subAdmins := []*SubAdmin{}
	if err := cursor.All(ctx, &subAdmins); err != nil {
		return nil, err
	}
	return subAdmins, nil
}

// Insert inserts a new sub-admin
func (r *mongoRepository) Insert(ctx context.Context, s *SubAdmin) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Email = NormalizeEmail(s.Email)
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, s)
	return repository.TranslateWriteError(err)
}

// Update replaces a sub-admin document
func (r *mongoRepository) Update(ctx context.Context, s *SubAdmin) error {
	s.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return repository.TranslateWriteError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete hard-deletes a sub-admin
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

// TouchLogin updates lastLoginAt and the bound subject id
func (r *mongoRepository) TouchLogin(ctx context.Context, id, subjectID string, at time.Time) error {
	set := bson.M{"lastLoginAt": at}
	if subjectID != "" {
		set["subjectId"] = subjectID
	}
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}
