package leader

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// refreshScript extends the lease only while we still own it.
var refreshScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// releaseScript deletes the lease only while we still own it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// NewRedisElector elects a leader with a SET NX PX lease in Redis.
func NewRedisElector(client redis.UniversalClient, cfg Config) *Elector {
	cfg = cfg.withDefaults()
	return newElector("redis", cfg, &redisLock{client: client, cfg: cfg})
}

type redisLock struct {
	client redis.UniversalClient
	cfg    Config
}

func (l *redisLock) setup(context.Context) error { return nil }

func (l *redisLock) acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.cfg.LockName, l.cfg.InstanceID, l.cfg.TTL).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	// Still ours after a restart with the same instance id
	owner, err := l.owner(ctx)
	if err != nil || owner != l.cfg.InstanceID {
		return false, err
	}
	return l.refresh(ctx)
}

func (l *redisLock) refresh(ctx context.Context) (bool, error) {
	n, err := refreshScript.Run(ctx, l.client, []string{l.cfg.LockName}, l.cfg.InstanceID, l.cfg.TTL.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *redisLock) release(ctx context.Context) (bool, error) {
	n, err := releaseScript.Run(ctx, l.client, []string{l.cfg.LockName}, l.cfg.InstanceID).Int()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *redisLock) owner(ctx context.Context) (string, error) {
	owner, err := l.client.Get(ctx, l.cfg.LockName).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return owner, err
}
