package identity

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
)

// BreakerVerifier guards a remote verifier with a circuit breaker. Rejected
// tokens are a normal outcome and do not trip it.
type BreakerVerifier struct {
	inner   Verifier
	breaker *gobreaker.CircuitBreaker
}

// BreakerConfig holds the breaker thresholds
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before probing
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns sensible defaults
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second}
}

// NewBreakerVerifier wraps inner
func NewBreakerVerifier(inner Verifier, cfg BreakerConfig) *BreakerVerifier {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	return &BreakerVerifier{
		inner: inner,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "identity-provider",
			MaxRequests: 1,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrInvalidToken)
			},
			OnStateChange: metrics.OnBreakerStateChange,
		}),
	}
}

func (b *BreakerVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	result, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Verify(ctx, token)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Identity{}, ErrUnavailable
	}
	if err != nil {
		return Identity{}, err
	}
	return result.(Identity), nil
}
