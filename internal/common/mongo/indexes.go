package mongo

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexDefinition defines a MongoDB index
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptions
}

// IndexInitializer creates indexes on startup
type IndexInitializer struct {
	db *mongo.Database
}

// NewIndexInitializer creates a new index initializer
func NewIndexInitializer(db *mongo.Database) *IndexInitializer {
	return &IndexInitializer{db: db}
}

// Initialize creates all required indexes. Failures are logged; a missing
// unique index weakens but does not break the pre-checks done in code.
func (i *IndexInitializer) Initialize(ctx context.Context) error {
	indexes := IndexDefinitions()

	created := 0
	for _, idx := range indexes {
		if err := i.createIndex(ctx, idx); err != nil {
			slog.Warn("Failed to create index (may already exist)",
				"error", err,
				"collection", idx.Collection)
			continue
		}
		created++
	}

	slog.Info("Index initialization complete", "count", len(indexes), "created", created)
	return nil
}

func (i *IndexInitializer) createIndex(ctx context.Context, idx IndexDefinition) error {
	_, err := i.db.Collection(idx.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    idx.Keys,
		Options: idx.Options,
	})
	return err
}

// IndexDefinitions returns every index the service relies on.
func IndexDefinitions() []IndexDefinition {
	pendingOnly := bson.M{"status": "pending"}

	return []IndexDefinition{
		// sub_admins
		{
			Collection: "sub_admins",
			Keys:       bson.D{{Key: "email", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: "sub_admins",
			Keys:       bson.D{{Key: "createdAt", Value: -1}},
		},

		// invitations: one pending invitation per email
		{
			Collection: "invitations",
			Keys:       bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(pendingOnly).
				SetName("email_pending_unique"),
		},
		{
			Collection: "invitations",
			Keys:       bson.D{{Key: "tokenHash", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: "invitations",
			Keys:       bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},

		// pending_requests: one pending request per dedupe key
		{
			Collection: "pending_requests",
			Keys:       bson.D{{Key: "dedupeKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(pendingOnly).
				SetName("dedupe_pending_unique"),
		},
		{
			Collection: "pending_requests",
			Keys:       bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Collection: "pending_requests",
			Keys:       bson.D{{Key: "subAdminId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Collection: "pending_requests",
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "executionStatus", Value: 1},
				{Key: "processedAt", Value: 1},
			},
		},

		// events
		{
			Collection: "events",
			Keys:       bson.D{{Key: "subject", Value: 1}, {Key: "time", Value: -1}},
		},
		{
			Collection: "events",
			Keys:       bson.D{{Key: "type", Value: 1}},
		},

		// audit_logs
		{
			Collection: "audit_logs",
			Keys:       bson.D{{Key: "performedAt", Value: -1}},
		},
		{
			Collection: "audit_logs",
			Keys:       bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}},
		},
		{
			Collection: "audit_logs",
			Keys:       bson.D{{Key: "principalId", Value: 1}, {Key: "performedAt", Value: -1}},
		},

		// content
		{
			Collection: "messages",
			Keys:       bson.D{{Key: "createdAt", Value: -1}},
		},
	}
}
