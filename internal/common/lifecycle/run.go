package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

// Run supervises services until SIGINT or SIGTERM, or until one of them
// fails, and returns once they are stopped.
//
//	lifecycle.Run(ctx, electorService, reconciler, httpService)
func Run(ctx context.Context, services ...Service) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor := NewSupervisor(services...)
	errCh := make(chan error, 1)
	go func() {
		errCh <- supervisor.Run(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	select {
	case err := <-errCh:
		return err
	case <-time.After(ShutdownTimeout + 5*time.Second):
		return errors.New("shutdown timed out")
	}
}

// HTTPService runs an http.Server under the supervisor.
type HTTPService struct {
	server  *http.Server
	name    string
	serving atomic.Bool
}

// NewHTTPService creates a Service from an http.Server.
func NewHTTPService(name string, server *http.Server) *HTTPService {
	return &HTTPService{server: server, name: name}
}

func (s *HTTPService) Name() string { return s.name }

// Start binds the listener before serving so that an address in use fails
// startup. It returns when ctx is cancelled or the server stops with an error.
func (s *HTTPService) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	slog.Info("HTTP server listening", "service", s.name, "addr", ln.Addr().String())

	s.serving.Store(true)
	defer s.serving.Store(false)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return nil
	}
}

func (s *HTTPService) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server", "service", s.name)
	return s.server.Shutdown(ctx)
}

// Health fails while the server is not accepting connections.
func (s *HTTPService) Health() error {
	if !s.serving.Load() {
		return errors.New("http server not serving")
	}
	return nil
}
