// Package leader elects a single instance to run singleton background work
// such as the approval reconciler. Redis is preferred; MongoDB is used when
// no Redis is configured.
package leader

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
)

// Config holds configuration for leader election
type Config struct {
	// InstanceID uniquely identifies this instance (defaults to hostname)
	InstanceID string

	// LockName is the name of the lock to acquire
	LockName string

	// TTL is how long the lock is valid before expiring (default: 30s)
	TTL time.Duration

	// RefreshInterval is how often to refresh the lock while primary (default: 10s)
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(lockName string) Config {
	instanceID, _ := os.Hostname()
	if instanceID == "" {
		instanceID = "instance-" + time.Now().Format("20060102150405")
	}

	return Config{
		InstanceID:      instanceID,
		LockName:        lockName,
		TTL:             30 * time.Second,
		RefreshInterval: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig(c.LockName)
	if c.InstanceID == "" {
		c.InstanceID = d.InstanceID
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	return c
}

// lock is a backend holding one named lease.
type lock interface {
	setup(ctx context.Context) error
	acquire(ctx context.Context) (bool, error)
	refresh(ctx context.Context) (bool, error)
	release(ctx context.Context) (bool, error)
	owner(ctx context.Context) (string, error)
}

// Elector runs the acquire/refresh loop against a lock backend.
type Elector struct {
	cfg       Config
	lock      lock
	backend   string
	isPrimary atomic.Bool

	mu               sync.Mutex
	cancel           context.CancelFunc
	done             chan struct{}
	onBecomeLeader   func()
	onLoseLeadership func()
}

func newElector(backend string, cfg Config, l lock) *Elector {
	return &Elector{cfg: cfg, lock: l, backend: backend}
}

// OnBecomeLeader sets a callback for when this instance becomes leader
func (e *Elector) OnBecomeLeader(fn func()) {
	e.onBecomeLeader = fn
}

// OnLoseLeadership sets a callback for when this instance loses leadership
func (e *Elector) OnLoseLeadership(fn func()) {
	e.onLoseLeadership = fn
}

// Start begins the election loop. It returns once the first acquisition
// attempt has been made.
func (e *Elector) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done != nil {
		return nil
	}

	if err := e.lock.setup(ctx); err != nil {
		slog.Debug("Leader lock setup failed (may already exist)", "error", err, "backend", e.backend)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	e.tryAcquireOrRefresh(loopCtx)
	go e.electionLoop(loopCtx, e.done)

	slog.Info("Leader election started",
		"backend", e.backend,
		"instanceId", e.cfg.InstanceID,
		"lockName", e.cfg.LockName,
		"ttl", e.cfg.TTL,
		"refreshInterval", e.cfg.RefreshInterval)
	return nil
}

// Stop stops the election loop and releases the lock if held
func (e *Elector) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done

	if e.isPrimary.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		e.Release(ctx)
	}

	slog.Info("Leader election stopped", "backend", e.backend, "instanceId", e.cfg.InstanceID)
}

// IsPrimary returns true if this instance is currently the leader
func (e *Elector) IsPrimary() bool {
	return e.isPrimary.Load()
}

// InstanceID returns the instance ID of this elector
func (e *Elector) InstanceID() string {
	return e.cfg.InstanceID
}

// CurrentLeader returns the instance ID of the current leader, or "" if none.
func (e *Elector) CurrentLeader(ctx context.Context) (string, error) {
	return e.lock.owner(ctx)
}

// Release explicitly releases the lock
func (e *Elector) Release(ctx context.Context) {
	released, err := e.lock.release(ctx)
	if err != nil {
		slog.Error("Failed to release leader lock",
			"error", err,
			"backend", e.backend,
			"lockName", e.cfg.LockName)
		return
	}
	if released {
		slog.Info("Released leader lock",
			"instanceId", e.cfg.InstanceID,
			"lockName", e.cfg.LockName)
	}
	e.setPrimary(false)
}

func (e *Elector) electionLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tryAcquireOrRefresh(ctx)
		}
	}
}

func (e *Elector) tryAcquireOrRefresh(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	wasPrimary := e.isPrimary.Load()

	if wasPrimary {
		ok, err := e.lock.refresh(ctx)
		if err != nil {
			slog.Error("Failed to refresh leader lock", "error", err, "backend", e.backend)
		}
		if ok {
			return
		}
		e.setPrimary(false)
		slog.Warn("Lost leadership - refresh failed",
			"instanceId", e.cfg.InstanceID,
			"lockName", e.cfg.LockName)
		if e.onLoseLeadership != nil {
			e.onLoseLeadership()
		}
	}

	ok, err := e.lock.acquire(ctx)
	if err != nil {
		slog.Error("Failed to acquire leader lock",
			"error", err,
			"backend", e.backend,
			"lockName", e.cfg.LockName)
		return
	}
	if !ok {
		return
	}

	e.setPrimary(true)
	slog.Info("Acquired leadership",
		"instanceId", e.cfg.InstanceID,
		"lockName", e.cfg.LockName)
	if e.onBecomeLeader != nil {
		e.onBecomeLeader()
	}
}

func (e *Elector) setPrimary(primary bool) {
	e.isPrimary.Store(primary)
	if primary {
		metrics.LeaderStatus.Set(1)
	} else {
		metrics.LeaderStatus.Set(0)
	}
}

// Always is the leadership of a single-instance deployment.
type Always struct{}

func (Always) IsPrimary() bool { return true }
