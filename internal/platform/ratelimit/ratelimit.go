// Package ratelimit throttles the public endpoints per client address.
// Counters live in Redis so every instance shares them; when Redis is not
// configured or fails, an in-process token bucket takes over.
package ratelimit

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

// Decision is the result of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits at most Limit requests per key per Window.
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
}

// windowScript increments the counter and starts the window on first use.
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter is a fixed-window counter shared through Redis.
type RedisLimiter struct {
	client   redis.UniversalClient
	limit    int
	window   time.Duration
	prefix   string
	fallback *LocalLimiter
}

// NewRedisLimiter creates a shared limiter. fallback may be nil, in which
// case Redis failures admit the request.
func NewRedisLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration, fallback *LocalLimiter) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		limit:    max(limit, 1),
		window:   window,
		prefix:   "ratelimit:" + prefix + ":",
		fallback: fallback,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	vals, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) < 2 {
		slog.Warn("Rate limiter store unavailable, using local limiter", "error", err)
		if l.fallback != nil {
			return l.fallback.Allow(ctx, key)
		}
		return Decision{Allowed: true, Remaining: l.limit}
	}

	count, ttl := vals[0], time.Duration(vals[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}
	d := Decision{Allowed: count <= int64(l.limit), Remaining: max(l.limit-int(count), 0)}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d
}

// LocalLimiter keeps one token bucket per key in memory. A bucket refills
// Limit tokens per Window and allows a burst of Limit.
type LocalLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter creates an in-process limiter.
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limit:   max(limit, 1),
		window:  window,
		buckets: map[string]*bucket{},
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.window / time.Duration(l.limit))
		b = &bucket{limiter: rate.NewLimiter(every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.sweep(now)

	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}
	}
	return Decision{Allowed: true, Remaining: int(b.limiter.TokensAt(now))}
}

// sweep drops buckets idle for a full window; they would be full again anyway.
func (l *LocalLimiter) sweep(now time.Time) {
	if len(l.buckets) < 1024 {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.window {
			delete(l.buckets, k)
		}
	}
}

// Middleware rejects requests over the limit with 429. scope labels the
// rejection metric and namespaces nothing else.
func Middleware(limiter Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(r.Context(), scope+":"+clientIP(r))
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RateLimitRejections.WithLabelValues(scope).Inc()
			secs := int(d.RetryAfter.Round(time.Second) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			common.WriteJSON(w, http.StatusTooManyRequests, common.Envelope{
				Error:   common.ErrCodeRateLimited,
				Message: "Too many requests, please try again later",
			})
		})
	}
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
