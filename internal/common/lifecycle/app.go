package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	mongodb "github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/mongo"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/config"
)

// App holds initialized infrastructure that is guaranteed to be connected.
// If you have an *App, the database is connected and its indexes exist.
//
// Application wiring does not belong here; only connections that need
// retry, ping and cleanup handling.
type App struct {
	Config *config.Config

	// Database
	Mongo *mongodb.Client
	DB    *mongo.Database

	// Redis is nil when no address is configured
	Redis *redis.Client

	// Internal cleanup - call AddCleanup to register cleanup functions
	cleanupFuncs []func() error
}

// AppOptions configures which infrastructure to initialize.
type AppOptions struct {
	// EnsureIndexes creates the collection indexes after connecting
	EnsureIndexes bool

	// ConnectAttempts is how many times to try MongoDB before giving up (default 5)
	ConnectAttempts int
}

// Initialize creates an App with connected infrastructure.
// Returns an error if any required connection fails.
//
// Usage:
//
//	app, cleanup, err := lifecycle.Initialize(ctx, cfg, lifecycle.AppOptions{EnsureIndexes: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func Initialize(ctx context.Context, cfg *config.Config, opts AppOptions) (*App, func(), error) {
	app := &App{Config: cfg}

	if err := app.initMongoDB(ctx, opts); err != nil {
		app.Cleanup()
		return nil, nil, err
	}

	if cfg.Redis.Addr != "" {
		if err := app.initRedis(ctx); err != nil {
			app.Cleanup()
			return nil, nil, err
		}
	}

	return app, app.Cleanup, nil
}

// AddCleanup registers a cleanup function to be called on shutdown.
// Functions are called in reverse order of registration.
func (app *App) AddCleanup(fn func() error) {
	app.cleanupFuncs = append(app.cleanupFuncs, fn)
}

// initMongoDB connects to MongoDB with retries.
func (app *App) initMongoDB(ctx context.Context, opts AppOptions) error {
	cfg := app.Config.MongoDB
	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}

	slog.Info("Connecting to MongoDB", "database", cfg.Database)

	var (
		client *mongodb.Client
		err    error
	)
	backoff := time.Second
	for i := 1; i <= attempts; i++ {
		client, err = mongodb.Connect(ctx, cfg)
		if err == nil {
			break
		}
		slog.Warn("MongoDB connection failed", "attempt", i, "error", err)
		if i == attempts {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	app.Mongo = client
	app.DB = client.Database()

	app.AddCleanup(func() error {
		slog.Info("Disconnecting from MongoDB")
		return client.Disconnect(context.Background())
	})

	if opts.EnsureIndexes {
		if err := mongodb.NewIndexInitializer(app.DB).Initialize(ctx); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	return nil
}

func (app *App) initRedis(ctx context.Context) error {
	cfg := app.Config.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	app.Redis = client
	app.AddCleanup(func() error {
		slog.Info("Closing Redis connection")
		return client.Close()
	})

	slog.Info("Connected to Redis", "addr", cfg.Addr)
	return nil
}

// Cleanup runs all cleanup functions in reverse order.
func (app *App) Cleanup() {
	for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
		if err := app.cleanupFuncs[i](); err != nil {
			slog.Error("Cleanup error", "error", err)
		}
	}
	app.cleanupFuncs = nil
}
