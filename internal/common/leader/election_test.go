package leader

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testConfig(instance string) Config {
	return Config{
		InstanceID:      instance,
		LockName:        "approval-reconciler-leader",
		TTL:             5 * time.Second,
		RefreshInterval: time.Hour,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("test-leader")

	if cfg.LockName != "test-leader" {
		t.Errorf("Expected LockName 'test-leader', got '%s'", cfg.LockName)
	}
	if cfg.InstanceID == "" {
		t.Error("Expected InstanceID to be set")
	}
	if cfg.TTL != 30*time.Second {
		t.Errorf("Expected TTL 30s, got %v", cfg.TTL)
	}
	if cfg.RefreshInterval != 10*time.Second {
		t.Errorf("Expected RefreshInterval 10s, got %v", cfg.RefreshInterval)
	}
}

func TestConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{InstanceID: "a", LockName: "l", TTL: time.Minute}.withDefaults()
	if cfg.InstanceID != "a" || cfg.TTL != time.Minute {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
	if cfg.RefreshInterval != 10*time.Second {
		t.Errorf("RefreshInterval = %v, want default", cfg.RefreshInterval)
	}
}

func TestRedisElector_SingleLeader(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)

	first := NewRedisElector(client, testConfig("instance-1"))
	second := NewRedisElector(client, testConfig("instance-2"))

	var became atomic.Int32
	first.OnBecomeLeader(func() { became.Add(1) })

	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer second.Stop()

	if !first.IsPrimary() {
		t.Error("first instance should lead")
	}
	if second.IsPrimary() {
		t.Error("second instance should follow")
	}
	if became.Load() != 1 {
		t.Errorf("OnBecomeLeader called %d times, want 1", became.Load())
	}

	owner, err := second.CurrentLeader(ctx)
	if err != nil {
		t.Fatalf("CurrentLeader: %v", err)
	}
	if owner != "instance-1" {
		t.Errorf("CurrentLeader = %q, want instance-1", owner)
	}
}

func TestRedisElector_StopHandsOver(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)

	first := NewRedisElector(client, testConfig("instance-1"))
	second := NewRedisElector(client, testConfig("instance-2"))
	_ = first.Start(ctx)
	_ = second.Start(ctx)
	defer second.Stop()

	first.Stop()
	if first.IsPrimary() {
		t.Error("stopped elector still reports leadership")
	}

	second.tryAcquireOrRefresh(ctx)
	if !second.IsPrimary() {
		t.Error("second instance should take over after release")
	}
}

func TestRedisElector_ExpiredLeaseIsLost(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	first := NewRedisElector(client, testConfig("instance-1"))
	var lost atomic.Int32
	first.OnLoseLeadership(func() { lost.Add(1) })
	_ = first.Start(ctx)
	defer first.Stop()

	mr.FastForward(10 * time.Second)
	if err := client.Set(ctx, "approval-reconciler-leader", "instance-2", time.Minute).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first.tryAcquireOrRefresh(ctx)
	if first.IsPrimary() {
		t.Error("leadership should be lost once another instance holds the lease")
	}
	if lost.Load() != 1 {
		t.Errorf("OnLoseLeadership called %d times, want 1", lost.Load())
	}
}

func TestRedisElector_ReacquiresOwnLease(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	mr.Set("approval-reconciler-leader", "instance-1")

	e := NewRedisElector(client, testConfig("instance-1"))
	_ = e.Start(ctx)
	defer e.Stop()

	if !e.IsPrimary() {
		t.Error("an instance restarting with the same id should keep its lease")
	}
	if ttl := mr.TTL("approval-reconciler-leader"); ttl <= 0 {
		t.Errorf("lease TTL not restored: %v", ttl)
	}
}

func TestRedisElector_RedisDown(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	mr.Close()

	e := NewRedisElector(client, testConfig("instance-1"))
	_ = e.Start(ctx)
	defer e.Stop()

	if e.IsPrimary() {
		t.Error("no leadership without a reachable lock store")
	}
}

func TestStopWithoutStart(t *testing.T) {
	_, client := newRedis(t)
	NewRedisElector(client, testConfig("instance-1")).Stop()
}

func TestAlways(t *testing.T) {
	if !(Always{}).IsPrimary() {
		t.Error("Always must lead")
	}
}
