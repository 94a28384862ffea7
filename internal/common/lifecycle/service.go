// Package lifecycle connects shared infrastructure and supervises the
// long-running parts of the API process: the HTTP server, the approval
// reconciler and leader election.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// StartupWindow is how long a service may take to report an immediate
	// startup failure before it is considered running.
	StartupWindow = 100 * time.Millisecond

	// ShutdownTimeout is the budget shared by all Stop calls.
	ShutdownTimeout = 30 * time.Second
)

// Service is a component the supervisor starts and stops.
//
// Start either blocks until ctx is cancelled (the HTTP server) or launches
// its own goroutine and returns nil (the reconciler, the leader elector).
// A non-nil error from Start at any point stops the process.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Health returns nil while the service is doing its job. The reconciler
	// reports its last scan error here.
	Health() error
}

// Supervisor starts services in order and stops them in reverse order when
// the context is cancelled or any of them fails.
type Supervisor struct {
	services []Service
	mu       sync.RWMutex
	running  bool
}

// NewSupervisor creates a supervisor for the given services.
func NewSupervisor(services ...Service) *Supervisor {
	return &Supervisor{services: services}
}

type serviceExit struct {
	name string
	err  error
}

// Run starts all services and blocks until ctx is cancelled or a started
// service fails. The failure is returned after every started service has
// been stopped.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("supervisor already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan serviceExit, len(s.services))
	var started []Service
	for _, svc := range s.services {
		slog.Info("Starting service", "service", svc.Name())

		errCh := make(chan error, 1)
		go func() { errCh <- svc.Start(ctx) }()

		select {
		case err := <-errCh:
			if err != nil {
				cancel()
				s.stopServices(started)
				return fmt.Errorf("service %s failed to start: %w", svc.Name(), err)
			}
		case <-time.After(StartupWindow):
			go func() {
				if err := <-errCh; err != nil {
					exits <- serviceExit{name: svc.Name(), err: err}
				}
			}()
		}

		started = append(started, svc)
		slog.Info("Service started", "service", svc.Name())
	}

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown requested, stopping services")
	case exit := <-exits:
		slog.Error("Service failed, stopping the others", "service", exit.name, "error", exit.err)
		runErr = fmt.Errorf("service %s failed: %w", exit.name, exit.err)
	}

	cancel()
	s.stopServices(started)
	return runErr
}

// stopServices stops services in reverse order within ShutdownTimeout.
func (s *Supervisor) stopServices(services []Service) {
	stopCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]
		slog.Info("Stopping service", "service", svc.Name())
		if err := svc.Stop(stopCtx); err != nil {
			slog.Error("Service stop error", "service", svc.Name(), "error", err)
			continue
		}
		slog.Info("Service stopped", "service", svc.Name())
	}
}

// Health returns the first unhealthy service's error.
func (s *Supervisor) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, svc := range s.services {
		if err := svc.Health(); err != nil {
			return fmt.Errorf("service %s unhealthy: %w", svc.Name(), err)
		}
	}
	return nil
}

// ServiceFunc adapts start and stop functions to Service. main uses it for
// the leader elector.
type ServiceFunc struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func(ctx context.Context) error
	healthFn  func() error
}

// NewServiceFunc creates a Service from functions.
func NewServiceFunc(name string, start func(ctx context.Context) error, stop func(ctx context.Context) error) *ServiceFunc {
	return &ServiceFunc{
		name:      name,
		startFunc: start,
		stopFunc:  stop,
		healthFn:  func() error { return nil },
	}
}

func (s *ServiceFunc) Name() string                    { return s.name }
func (s *ServiceFunc) Start(ctx context.Context) error { return s.startFunc(ctx) }
func (s *ServiceFunc) Stop(ctx context.Context) error  { return s.stopFunc(ctx) }
func (s *ServiceFunc) Health() error                   { return s.healthFn() }

// WithHealth replaces the default always-healthy check.
func (s *ServiceFunc) WithHealth(fn func() error) *ServiceFunc {
	s.healthFn = fn
	return s
}
