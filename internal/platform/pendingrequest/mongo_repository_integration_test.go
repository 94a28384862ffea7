//go:build integration

package pendingrequest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodb "github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/mongo"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MongoDB container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
	if err != nil {
		t.Fatalf("Failed to get MongoDB endpoint: %v", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("portfolio_test")
	if err := mongodb.NewIndexInitializer(db).Initialize(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}
	return db
}

func newRequest(subAdminID string) *PendingRequest {
	return &PendingRequest{
		SubAdminID:   subAdminID,
		Action:       "UPDATE",
		ResourceType: "project",
		ResourceID:   "p1",
		Page:         permission.PageProjects,
		Data:         map[string]any{"title": "Changed"},
		Status:       StatusPending,
		DedupeKey:    DedupeKey(subAdminID, "UPDATE", "project", permission.PageProjects, "p1"),
	}
}

func TestMongoRepository_Integration(t *testing.T) {
	repo := NewRepository(startMongo(t))
	ctx := context.Background()

	req := newRequest("alice")
	if err := repo.Insert(ctx, req); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, newRequest("alice")); !errors.Is(err, repository.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for a second pending request, got %v", err)
	}
	if err := repo.Insert(ctx, newRequest("bob")); err != nil {
		t.Errorf("Another delegate may request the same change: %v", err)
	}

	found, err := repo.FindPendingByDedupeKey(ctx, req.DedupeKey)
	if err != nil || found == nil || found.ID != req.ID {
		t.Fatalf("Expected to find the pending request, got %v %v", found, err)
	}

	mine, _ := repo.FindBySubAdmin(ctx, "alice")
	if len(mine) != 1 {
		t.Errorf("Expected one request for alice, got %d", len(mine))
	}

	decidedAt := time.Now().UTC().Truncate(time.Millisecond)
	approve := Decision{Status: StatusApproved, ProcessedBy: "core", ProcessedAt: decidedAt}
	if err := repo.Decide(ctx, req.ID, approve); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if err := repo.Decide(ctx, req.ID, approve); !errors.Is(err, repository.ErrConditionFailed) {
		t.Errorf("Expected ErrConditionFailed for a second decision, got %v", err)
	}

	// The decision holds the execution claim until it goes stale.
	if err := repo.ClaimExecution(ctx, req.ID, decidedAt, decidedAt.Add(-time.Minute)); !errors.Is(err, repository.ErrConditionFailed) {
		t.Errorf("Expected a fresh claim to block, got %v", err)
	}

	if err := repo.RecordExecution(ctx, req.ID, ExecutionResult{Error: "store down", At: decidedAt}); err != nil {
		t.Fatalf("record: %v", err)
	}
	backlog, err := repo.FindExecutionBacklog(ctx, BacklogQuery{PendingBefore: decidedAt, MaxAttempts: 3})
	if err != nil {
		t.Fatalf("backlog: %v", err)
	}
	if len(backlog) != 1 || backlog[0].ExecutionAttempts != 1 {
		t.Errorf("Expected the failed execution in the backlog, got %v", backlog)
	}

	retryAt := decidedAt.Add(time.Second)
	if err := repo.ClaimExecution(ctx, req.ID, retryAt, retryAt); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := repo.ClaimExecution(ctx, req.ID, retryAt, retryAt.Add(-time.Minute)); !errors.Is(err, repository.ErrConditionFailed) {
		t.Errorf("Expected a concurrent claim to fail, got %v", err)
	}
	if err := repo.RecordExecution(ctx, req.ID, ExecutionResult{Succeeded: true, Message: "Updated", At: retryAt}); err != nil {
		t.Fatalf("record: %v", err)
	}

	stored, _ := repo.FindByID(ctx, req.ID)
	if stored.ExecutionStatus != ExecutionSucceeded || stored.ExecutionAttempts != 2 || stored.ExecutionError != "" {
		t.Errorf("Unexpected execution state: %+v", stored)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.Approved != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	if err := repo.Insert(ctx, newRequest("alice")); err != nil {
		t.Errorf("A decided request must not block a new one: %v", err)
	}
}
