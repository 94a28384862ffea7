package pendingrequest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
)

// CollectionName is the MongoDB collection holding pending requests.
const CollectionName = "pending_requests"

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new pending request repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*PendingRequest, error) {
	var req PendingRequest
	err := r.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *mongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*PendingRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []*PendingRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*PendingRequest, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepository) FindPendingByDedupeKey(ctx context.Context, key string) (*PendingRequest, error) {
	return r.findOne(ctx, bson.M{"dedupeKey": key, "status": StatusPending})
}

func (r *mongoRepository) FindAll(ctx context.Context, status Status) ([]*PendingRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (r *mongoRepository) FindBySubAdmin(ctx context.Context, subAdminID string) ([]*PendingRequest, error) {
	return r.find(ctx, bson.M{"subAdminId": subAdminID}, options.Find().SetSort(newestFirst))
}

func (r *mongoRepository) Insert(ctx context.Context, req *PendingRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	if req.ExecutionStatus == "" {
		req.ExecutionStatus = ExecutionNone
	}
	_, err := r.collection.InsertOne(ctx, req)
	return repository.TranslateWriteError(err)
}

func (r *mongoRepository) Decide(ctx context.Context, id string, d Decision) error {
	set := bson.M{
		"status":      d.Status,
		"processedAt": d.ProcessedAt,
		"processedBy": d.ProcessedBy,
	}
	if d.RejectionReason != "" {
		set["rejectionReason"] = d.RejectionReason
	}
	if d.Status == StatusApproved {
		set["executionStatus"] = ExecutionPending
		set["executionClaimedAt"] = d.ProcessedAt
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

func (r *mongoRepository) ClaimExecution(ctx context.Context, id string, at, staleBefore time.Time) error {
	filter := bson.M{
		"_id":             id,
		"status":          StatusApproved,
		"executionStatus": bson.M{"$in": []ExecutionStatus{ExecutionPending, ExecutionFailed}},
		"$or": bson.A{
			bson.M{"executionClaimedAt": bson.M{"$exists": false}},
			bson.M{"executionClaimedAt": bson.M{"$lt": staleBefore}},
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"executionClaimedAt": at}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrConditionFailed
	}
	return nil
}

func (r *mongoRepository) RecordExecution(ctx context.Context, id string, res ExecutionResult) error {
	status := ExecutionFailed
	if res.Succeeded {
		status = ExecutionSucceeded
	}
	set := bson.M{
		"executionStatus":  status,
		"executionMessage": res.Message,
		"executedAt":       res.At,
	}
	unset := bson.M{"executionClaimedAt": ""}
	if res.Error != "" {
		set["executionError"] = res.Error
	} else {
		unset["executionError"] = ""
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   set,
		"$unset": unset,
		"$inc":   bson.M{"executionAttempts": 1},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRepository) FindExecutionBacklog(ctx context.Context, q BacklogQuery) ([]*PendingRequest, error) {
	filter := bson.M{
		"status": StatusApproved,
		"$or": bson.A{
			bson.M{
				"executionStatus":    ExecutionPending,
				"executionClaimedAt": bson.M{"$lt": q.PendingBefore},
			},
			bson.M{
				"executionStatus":   ExecutionFailed,
				"executionAttempts": bson.M{"$lt": q.MaxAttempts},
			},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "processedAt", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return r.find(ctx, filter, opts)
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

func (r *mongoRepository) DeleteIfPendingOwned(ctx context.Context, id, subAdminID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        id,
		"subAdminId": subAdminID,
		"status":     StatusPending,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrConditionFailed
	}
	return nil
}

type statsBucket struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type statsFacets struct {
	ByStatus        []statsBucket `bson:"byStatus"`
	ByPage          []statsBucket `bson:"byPage"`
	ByAction        []statsBucket `bson:"byAction"`
	ExecutionFailed []statsBucket `bson:"executionFailed"`
}

// Stats runs a single $facet aggregation over the collection.
func (r *mongoRepository) Stats(ctx context.Context) (*Stats, error) {
	groupBy := func(field string) bson.A {
		return bson.A{bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"byStatus": groupBy("status"),
			"byPage":   groupBy("page"),
			"byAction": groupBy("action"),
			"executionFailed": bson.A{
				bson.M{"$match": bson.M{"executionStatus": ExecutionFailed}},
				bson.M{"$group": bson.M{"_id": "failed", "count": bson.M{"$sum": 1}}},
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facets []statsFacets
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, err
	}

	stats := &Stats{ByPage: map[string]int64{}, ByAction: map[string]int64{}}
	if len(facets) == 0 {
		return stats, nil
	}
	f := facets[0]
	for _, b := range f.ByStatus {
		stats.Total += b.Count
		switch Status(b.Key) {
		case StatusPending:
			stats.Pending = b.Count
		case StatusApproved:
			stats.Approved = b.Count
		case StatusRejected:
			stats.Rejected = b.Count
		}
	}
	for _, b := range f.ByPage {
		stats.ByPage[b.Key] = b.Count
	}
	for _, b := range f.ByAction {
		stats.ByAction[b.Key] = b.Count
	}
	for _, b := range f.ExecutionFailed {
		stats.ExecutionFailed += b.Count
	}
	return stats, nil
}
