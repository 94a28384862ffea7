package operations

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
)

// ReconcilerPrincipal is recorded as the actor of reconciler executions.
const ReconcilerPrincipal = "system:reconciler"

// Leadership reports whether this instance should run singleton work.
type Leadership interface {
	IsPrimary() bool
}

// ReconcilerConfig holds configuration for the execution reconciler
type ReconcilerConfig struct {
	// Interval is how often the backlog is scanned
	Interval time.Duration

	// GracePeriod is how long a claimed execution may stay pending before
	// it is considered abandoned
	GracePeriod time.Duration

	// MaxAttempts stops retrying failed executions after this many attempts
	MaxAttempts int

	// BatchSize is the maximum requests handled per scan
	BatchSize int64
}

// DefaultReconcilerConfig returns sensible defaults
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		Interval:    time.Minute,
		GracePeriod: DefaultClaimTimeout,
		MaxAttempts: 5,
		BatchSize:   50,
	}
}

// Reconciler retries approved requests whose execution failed or was
// abandoned. It implements lifecycle.Service.
type Reconciler struct {
	runner
	config ReconcilerConfig
	leader Leadership

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	lastErr error
}

// NewReconciler creates a reconciler. leader may be nil, in which case this
// instance always runs the scan.
func NewReconciler(
	repo pendingrequest.Repository,
	executor Executor,
	uow common.UnitOfWork,
	notifier notify.Notifier,
	leader Leadership,
	config ReconcilerConfig,
) *Reconciler {
	defaults := DefaultReconcilerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = defaults.GracePeriod
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	return &Reconciler{
		runner: runner{
			repo:       repo,
			executor:   executor,
			unitOfWork: uow,
			notifier:   notifier,
			now:        time.Now,
		},
		config: config,
		leader: leader,
	}
}

func (r *Reconciler) Name() string { return "execution-reconciler" }

// Start runs the scan loop until ctx is cancelled or Stop is called.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("reconciler already running")
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.running = true
	r.wg.Add(1)
	r.mu.Unlock()

	slog.Info("Execution reconciler started",
		"interval", r.config.Interval,
		"gracePeriod", r.config.GracePeriod,
		"maxAttempts", r.config.MaxAttempts)

	defer r.wg.Done()
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// Stop cancels the loop and waits for the current scan to finish.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("Execution reconciler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports the error of the last failed scan, if the latest scan failed.
func (r *Reconciler) Health() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// RunOnce scans the backlog and executes each request it can claim. It
// returns the number of executions attempted.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	if r.leader != nil && !r.leader.IsPrimary() {
		slog.Debug("Skipping reconcile - not the leader")
		metrics.ReconcilerRuns.WithLabelValues("skipped").Inc()
		return 0
	}

	now := r.now()
	staleBefore := now.Add(-r.config.GracePeriod)
	backlog, err := r.repo.FindExecutionBacklog(ctx, pendingrequest.BacklogQuery{
		PendingBefore: staleBefore,
		MaxAttempts:   r.config.MaxAttempts,
		Limit:         r.config.BatchSize,
	})
	r.setLastErr(err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load execution backlog", "error", err)
		metrics.ReconcilerRuns.WithLabelValues("error").Inc()
		return 0
	}
	metrics.ReconcilerRuns.WithLabelValues("ok").Inc()

	attempted := 0
	for _, req := range backlog {
		if ctx.Err() != nil {
			break
		}
		err := r.repo.ClaimExecution(ctx, req.ID, now, staleBefore)
		if errors.Is(err, repository.ErrConditionFailed) {
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to claim execution", "requestId", req.ID, "error", err)
			continue
		}
		req.ClaimedAt = &now

		execCtx := common.NewExecutionContext(ReconcilerPrincipal)
		action, _ := r.run(ctx, req, execCtx)
		attempted++
		if action.Success {
			r.notifyDecision(ctx, req, &action)
		}
	}

	if attempted > 0 {
		slog.Info("Reconciled approved requests", "attempted", attempted, "backlog", len(backlog))
	}
	return attempted
}

func (r *Reconciler) setLastErr(err error) {
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
}
