// Portfolio Admin API
//
// Serves the public portfolio content and the administrator API: identity
// verification, delegated administrators, invitations and the approval
// workflow for changes made by delegates.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/health"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/leader"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/lifecycle"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/secrets"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/config"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/api"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/audit"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/authz"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/execution"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/identity"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	invitationops "github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	requestops "github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest/operations"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/ratelimit"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/storage"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.LoadWithFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.DevMode)

	slog.Info("Starting Portfolio Admin API",
		"version", version,
		"build_time", buildTime)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// ========================================
	// 1. INFRASTRUCTURE INITIALIZATION
	// ========================================
	app, cleanup, err := lifecycle.Initialize(ctx, cfg, lifecycle.AppOptions{
		EnsureIndexes: true,
	})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// ========================================
	// 2. COMPONENT WIRING
	// ========================================
	verifier, err := setupVerifier(ctx, app)
	if err != nil {
		slog.Error("Failed to initialize identity verification", "error", err)
		os.Exit(1)
	}

	notifier, err := setupNotifier(ctx, app)
	if err != nil {
		slog.Error("Failed to initialize notifications", "error", err)
		os.Exit(1)
	}

	files, err := storage.NewS3Storage(ctx, storage.S3Config{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		UsePathStyle:  cfg.Storage.UsePathStyle,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
	})
	if err != nil {
		slog.Error("Failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	mongoClient := app.Mongo.Raw()
	uow := common.NewMongoUnitOfWork(mongoClient, app.DB, cfg.MongoDB.Transactions)
	docs := store.NewMongoStore(mongoClient, app.DB, cfg.MongoDB.Transactions)
	if !cfg.MongoDB.Transactions {
		slog.Warn("MongoDB transactions disabled; multi-document batches (reorder, bulk delete) will be refused")
	}
	dispatcher := execution.NewDispatcher(docs, files)

	subAdmins := subadmin.NewRepository(app.DB)
	pendingRequests := pendingrequest.NewRepository(app.DB)

	elector := setupLeader(app)
	reconciler := requestops.NewReconciler(pendingRequests, dispatcher, uow, notifier, elector, requestops.ReconcilerConfig{
		Interval:    cfg.Approval.ReconcileInterval,
		GracePeriod: cfg.Approval.ReconcileGracePeriod,
		MaxAttempts: cfg.Approval.MaxExecutionAttempts,
	})

	apiHandlers := api.NewHandlers(api.Dependencies{
		UnitOfWork:      uow,
		SubAdmins:       subAdmins,
		Invitations:     invitation.NewRepository(app.DB),
		PendingRequests: pendingRequests,
		AuditLogs:       audit.NewRepository(app.DB),
		Documents:       docs,
		Files:           files,
		Dispatcher:      dispatcher,
		Notifier:        notifier,
		Resolver:        authz.NewResolver(verifier, subAdmins, cfg.Auth.CoreAdminEmail),
		PublicLimiter:   setupLimiter(app),
		Invitation: invitationops.Settings{
			CoreAdminEmail: cfg.Auth.CoreAdminEmail,
			TTL:            cfg.Invitations.TTL,
			AcceptURLBase:  cfg.Invitations.AcceptURLBase,
		},
		AutoEnqueue:  cfg.Approval.AutoEnqueue,
		ClaimTimeout: cfg.Approval.ReconcileGracePeriod,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})

	healthChecker := health.NewChecker()
	healthChecker.AddReadinessCheck(health.MongoDBCheck(app.Mongo.Ping))
	if app.Redis != nil {
		healthChecker.AddReadinessCheck(health.RedisCheck(func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}))
	}
	if n, ok := notifier.(*notify.NATSNotifier); ok {
		healthChecker.AddReadinessCheck(health.NATSCheck(n.IsConnected))
	}
	healthChecker.AddLivenessCheck(health.ReconcilerCheck(reconciler.Health, elector.IsPrimary))

	httpRouter := setupHTTPRouter(cfg, healthChecker, apiHandlers)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      httpRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ========================================
	// 3. SERVICE STARTUP
	// ========================================
	services := []lifecycle.Service{}
	if e, ok := elector.(*leader.Elector); ok {
		services = append(services, lifecycle.NewServiceFunc("leader-election",
			e.Start,
			func(context.Context) error {
				e.Stop()
				return nil
			}))
	}
	services = append(services, reconciler, lifecycle.NewHTTPService("portfolio-api", httpServer))

	slog.Info("Portfolio Admin API ready", "port", cfg.HTTP.Port)

	// ========================================
	// 4. RUN UNTIL SHUTDOWN
	// ========================================
	if err := lifecycle.Run(ctx, services...); err != nil {
		slog.Error("Service error", "error", err)
		os.Exit(1)
	}

	slog.Info("Portfolio Admin API stopped")
}

// setupLogging configures the slog default logger.
func setupLogging(dev bool) {
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// setupVerifier builds the identity verifier. Remote verification goes
// through a circuit breaker so an identity provider outage fails fast.
func setupVerifier(ctx context.Context, app *lifecycle.App) (identity.Verifier, error) {
	cfg := app.Config.Auth

	var inner identity.Verifier
	switch cfg.Verifier {
	case "oidc":
		v, err := identity.NewOIDCVerifier(ctx, cfg.Issuer, cfg.OIDCClientID)
		if err != nil {
			return nil, err
		}
		inner = v
	default:
		jwtCfg := identity.JWTConfig{Issuer: cfg.Issuer, Audience: cfg.Audience}
		if cfg.JWTPublicKeyPath != "" {
			key, err := identity.LoadRSAPublicKey(cfg.JWTPublicKeyPath)
			if err != nil {
				return nil, err
			}
			jwtCfg.PublicKey = key
		} else {
			secret, err := loadSecret(ctx, app, cfg.JWTSecretKey)
			if err != nil {
				return nil, err
			}
			jwtCfg.Secret = []byte(secret)
		}
		v, err := identity.NewJWTVerifier(jwtCfg)
		if err != nil {
			return nil, err
		}
		inner = v
	}

	slog.Info("Identity verification initialized", "verifier", cfg.Verifier)
	return identity.NewBreakerVerifier(inner, identity.DefaultBreakerConfig()), nil
}

func loadSecret(ctx context.Context, app *lifecycle.App, key string) (string, error) {
	provider, err := secrets.NewProvider(ctx, app.Config.Secrets)
	if err != nil {
		return "", fmt.Errorf("failed to create secrets provider: %w", err)
	}
	if c, ok := provider.(io.Closer); ok {
		defer c.Close()
	}

	value, err := provider.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s from %s: %w", key, provider.Name(), err)
	}
	return value, nil
}

func setupNotifier(ctx context.Context, app *lifecycle.App) (notify.Notifier, error) {
	cfg := app.Config.Notify
	switch cfg.Type {
	case "nats":
		n, err := notify.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		app.AddCleanup(n.Close)
		slog.Info("Notifications via NATS", "subject", cfg.NATSSubject)
		return n, nil
	case "sqs":
		n, err := notify.NewSQSNotifier(ctx, cfg.SQSQueueURL, cfg.SQSRegion, cfg.SQSEndpoint)
		if err != nil {
			return nil, err
		}
		slog.Info("Notifications via SQS", "queue", cfg.SQSQueueURL)
		return n, nil
	default:
		slog.Info("Notifications are logged only")
		return notify.LogNotifier{}, nil
	}
}

// setupLeader picks the lock backend for the reconciler. Redis is preferred
// when configured; a single instance needs no election at all.
func setupLeader(app *lifecycle.App) requestops.Leadership {
	cfg := app.Config.Leader
	if !cfg.Enabled {
		return leader.Always{}
	}

	electorCfg := leader.DefaultConfig("approval-reconciler")
	if cfg.InstanceID != "" {
		electorCfg.InstanceID = cfg.InstanceID
	}
	if cfg.TTL > 0 {
		electorCfg.TTL = cfg.TTL
	}
	if cfg.RefreshInterval > 0 {
		electorCfg.RefreshInterval = cfg.RefreshInterval
	}

	if app.Redis != nil {
		return leader.NewRedisElector(app.Redis, electorCfg)
	}
	return leader.NewMongoElector(app.DB, electorCfg)
}

// setupLimiter throttles the public endpoints. With Redis the limit is shared
// across instances and falls back to a local limiter when Redis is down.
func setupLimiter(app *lifecycle.App) ratelimit.Limiter {
	cfg := app.Config.RateLimit
	if cfg.PublicLimit <= 0 {
		return nil
	}
	local := ratelimit.NewLocalLimiter(cfg.PublicLimit, cfg.Window)
	if app.Redis == nil {
		return local
	}
	return ratelimit.NewRedisLimiter(app.Redis, "portfolio:ratelimit", cfg.PublicLimit, cfg.Window, local)
}

// setupHTTPRouter creates the HTTP router with all routes and middleware.
func setupHTTPRouter(cfg *config.Config, healthChecker *health.Checker, apiHandlers *api.Handlers) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(common.TracingMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/q/health", healthChecker.HandleHealth)
	r.Get("/q/health/live", healthChecker.HandleLive)
	r.Get("/q/health/ready", healthChecker.HandleReady)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/q/metrics", promhttp.Handler())

	apiHandlers.Mount(r)

	return r
}
