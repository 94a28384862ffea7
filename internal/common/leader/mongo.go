package leader

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Lock is a lease document in the leader_locks collection
type Lock struct {
	ID         string    `bson:"_id"`
	InstanceID string    `bson:"instanceId"`
	AcquiredAt time.Time `bson:"acquiredAt"`
	ExpiresAt  time.Time `bson:"expiresAt"`
}

// NewMongoElector elects a leader with a lease document in MongoDB.
func NewMongoElector(db *mongo.Database, cfg Config) *Elector {
	cfg = cfg.withDefaults()
	return newElector("mongodb", cfg, &mongoLock{
		collection: db.Collection("leader_locks"),
		cfg:        cfg,
		now:        time.Now,
	})
}

type mongoLock struct {
	collection *mongo.Collection
	cfg        Config
	now        func() time.Time
}

// setup creates a TTL index so abandoned leases are removed by the server.
func (l *mongoLock) setup(ctx context.Context) error {
	_, err := l.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().
			SetExpireAfterSeconds(0).
			SetName("ttl_expiresAt"),
	})
	return err
}

// acquire takes the lease when it is missing, expired or already ours. A
// duplicate key error means another instance holds a live lease.
func (l *mongoLock) acquire(ctx context.Context) (bool, error) {
	now := l.now()
	filter := bson.M{
		"_id": l.cfg.LockName,
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": now}},
			{"instanceId": l.cfg.InstanceID},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"instanceId": l.cfg.InstanceID,
			"acquiredAt": now,
			"expiresAt":  now.Add(l.cfg.TTL),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Lock
	err := l.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result.InstanceID == l.cfg.InstanceID, nil
}

func (l *mongoLock) refresh(ctx context.Context) (bool, error) {
	result, err := l.collection.UpdateOne(ctx,
		bson.M{"_id": l.cfg.LockName, "instanceId": l.cfg.InstanceID},
		bson.M{"$set": bson.M{"expiresAt": l.now().Add(l.cfg.TTL)}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (l *mongoLock) release(ctx context.Context) (bool, error) {
	result, err := l.collection.DeleteOne(ctx, bson.M{"_id": l.cfg.LockName, "instanceId": l.cfg.InstanceID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (l *mongoLock) owner(ctx context.Context) (string, error) {
	var lock Lock
	err := l.collection.FindOne(ctx, bson.M{
		"_id":       l.cfg.LockName,
		"expiresAt": bson.M{"$gt": l.now()},
	}).Decode(&lock)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return lock.InstanceID, nil
}
