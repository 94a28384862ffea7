package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

const storeMetricName = "documents"

// MongoStore implements DocumentStore on a MongoDB database. Each collection
// name maps to the MongoDB collection of the same name.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

// NewMongoStore creates a store. Batches run in a transaction when
// transactions is set. Without transactions only single-operation batches
// commit; larger ones fail with ErrAtomicBatchUnavailable and write nothing.
func NewMongoStore(client *mongo.Client, db *mongo.Database, transactions bool) *MongoStore {
	return &MongoStore{client: client, db: db, transactions: transactions}
}

func toDocument(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			doc["id"] = v
			continue
		}
		doc[k] = v
	}
	return doc
}

func withoutID(fields map[string]any) bson.M {
	out := make(bson.M, len(fields))
	for k, v := range fields {
		if k == "id" || k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	return repository.Instrument(ctx, storeMetricName, "Get", func() (Document, error) {
		var raw bson.M
		err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return toDocument(raw), nil
	})
}

func (s *MongoStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	return repository.Instrument(ctx, storeMetricName, "Query", func() ([]Document, error) {
		filter := bson.M{}
		for k, v := range q.Filter {
			if k == "id" {
				k = "_id"
			}
			filter[k] = v
		}
		opts := options.Find()
		if q.OrderBy != "" {
			dir := 1
			if q.Desc {
				dir = -1
			}
			opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
		}
		if q.Limit > 0 {
			opts.SetLimit(q.Limit)
		}

		cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var raws []bson.M
		if err := cursor.All(ctx, &raws); err != nil {
			return nil, err
		}
		docs := make([]Document, len(raws))
		for i, raw := range raws {
			docs[i] = toDocument(raw)
		}
		return docs, nil
	})
}

func (s *MongoStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	return repository.Instrument(ctx, storeMetricName, "Add", func() (string, error) {
		doc := withoutID(fields)
		id := uuid.NewString()
		doc["_id"] = id
		if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
			return "", repository.TranslateWriteError(err)
		}
		return id, nil
	})
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return repository.InstrumentVoid(ctx, storeMetricName, "Update", func() error {
		result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": withoutID(fields)})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	return repository.InstrumentVoid(ctx, storeMetricName, "Set", func() error {
		_, err := s.db.Collection(collection).UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$set": withoutID(fields)},
			options.Update().SetUpsert(true))
		return err
	})
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	return repository.InstrumentVoid(ctx, storeMetricName, "Delete", func() error {
		result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MongoStore) Batch() Batch {
	return &mongoBatch{store: s}
}

type mongoBatch struct {
	store *MongoStore
	ops   []batchOp
}

func (b *mongoBatch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, fields: fields})
}

func (b *mongoBatch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, delete: true})
}

func (b *mongoBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return ErrEmptyBatch
	}
	return repository.InstrumentVoid(ctx, storeMetricName, "BatchCommit", func() error {
		if !b.store.transactions {
			if len(b.ops) > 1 {
				return fmt.Errorf("%d operations: %w", len(b.ops), ErrAtomicBatchUnavailable)
			}
			return b.apply(ctx)
		}

		session, err := b.store.client.StartSession()
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
			return nil, b.apply(sessCtx)
		})
		return err
	})
}

// apply runs the operations one by one; inside a transaction a missing
// document aborts everything.
func (b *mongoBatch) apply(ctx context.Context) error {
	for _, op := range b.ops {
		coll := b.store.db.Collection(op.collection)
		if op.delete {
			if _, err := coll.DeleteOne(ctx, bson.M{"_id": op.id}); err != nil {
				return err
			}
			continue
		}
		result, err := coll.UpdateOne(ctx, bson.M{"_id": op.id}, bson.M{"$set": withoutID(op.fields)})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("%s/%s: %w", op.collection, op.id, ErrNotFound)
		}
	}
	return nil
}
