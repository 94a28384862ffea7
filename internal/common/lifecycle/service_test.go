package lifecycle

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func blockingService(name string, rec *recorder) *ServiceFunc {
	return NewServiceFunc(name,
		func(ctx context.Context) error {
			rec.add("start " + name)
			<-ctx.Done()
			return nil
		},
		func(context.Context) error {
			rec.add("stop " + name)
			return nil
		})
}

func TestSupervisor_StartsInOrderStopsInReverse(t *testing.T) {
	rec := &recorder{}
	sup := NewSupervisor(blockingService("reconciler", rec), blockingService("http", rec))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}

	want := []string{"start reconciler", "start http", "stop http", "stop reconciler"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSupervisor_StartupFailureStopsStarted(t *testing.T) {
	rec := &recorder{}
	failing := NewServiceFunc("http",
		func(context.Context) error { return errors.New("address in use") },
		func(context.Context) error { return nil })
	sup := NewSupervisor(blockingService("reconciler", rec), failing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sup.Run(ctx); err == nil {
		t.Fatal("expected startup error")
	}
	got := rec.snapshot()
	if len(got) != 2 || got[1] != "stop reconciler" {
		t.Errorf("events = %v", got)
	}
}

func TestSupervisor_Health(t *testing.T) {
	healthy := NewServiceFunc("a", nil, nil)
	sick := NewServiceFunc("reconciler", nil, nil).WithHealth(func() error { return errors.New("backlog") })

	if err := NewSupervisor(healthy).Health(); err != nil {
		t.Errorf("Health = %v", err)
	}
	if err := NewSupervisor(healthy, sick).Health(); err == nil {
		t.Error("expected unhealthy supervisor")
	}
}

func TestSupervisor_FailureAfterStartupStopsEverything(t *testing.T) {
	rec := &recorder{}
	elector := NewServiceFunc("leader-election",
		func(ctx context.Context) error {
			select {
			case <-time.After(3 * StartupWindow):
				return errors.New("lock backend gone")
			case <-ctx.Done():
				return nil
			}
		},
		func(context.Context) error {
			rec.add("stop leader-election")
			return nil
		})
	sup := NewSupervisor(blockingService("reconciler", rec), elector)

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected the late failure to be returned")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor kept running after a service failed")
	}

	want := []string{"start reconciler", "stop leader-election", "stop reconciler"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSupervisor_BackgroundServiceReturningNil(t *testing.T) {
	rec := &recorder{}
	background := NewServiceFunc("reconciler",
		func(context.Context) error {
			rec.add("start reconciler")
			return nil
		},
		func(context.Context) error {
			rec.add("stop reconciler")
			return nil
		})
	sup := NewSupervisor(background)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	time.Sleep(3 * StartupWindow)
	select {
	case err := <-done:
		t.Fatalf("supervisor returned early: %v", err)
	default:
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := rec.snapshot(); len(got) != 2 || got[1] != "stop reconciler" {
		t.Errorf("events = %v", got)
	}
}

func TestHTTPService_Lifecycle(t *testing.T) {
	svc := NewHTTPService("api", &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
	})
	if err := svc.Health(); err == nil {
		t.Error("expected unhealthy before start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for svc.Health() != nil {
		if time.Now().After(deadline) {
			t.Fatal("server never reported healthy")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Start returned %v", err)
	}
	if err := svc.Health(); err == nil {
		t.Error("expected unhealthy after stop")
	}
}

func TestHTTPService_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	svc := NewHTTPService("api", &http.Server{Addr: ln.Addr().String()})
	if err := svc.Start(context.Background()); err == nil {
		t.Error("expected bind failure")
	}
}
