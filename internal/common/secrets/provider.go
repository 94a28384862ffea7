// Package secrets reads signing keys and credentials from a configured
// backend: environment variables, AWS Secrets Manager, HashiCorp Vault or
// GCP Secret Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/config"
)

// Common errors
var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrProviderError  = errors.New("provider error")
)

// Provider defines the interface for secret storage backends
type Provider interface {
	// Get retrieves a secret by key
	Get(ctx context.Context, key string) (string, error)

	// Name returns the provider name for logging
	Name() string
}

// ProviderType represents the type of secret provider
type ProviderType string

const (
	ProviderTypeAWSSM ProviderType = "aws-sm"
	ProviderTypeVault ProviderType = "vault"
	ProviderTypeGCPSM ProviderType = "gcp-sm"
	ProviderTypeEnv   ProviderType = "env"
)

// NewProvider creates a secret provider from configuration
func NewProvider(ctx context.Context, cfg config.SecretsConfig) (Provider, error) {
	switch ProviderType(strings.ToLower(cfg.Provider)) {
	case ProviderTypeAWSSM:
		return NewAWSSecretsManagerProvider(ctx, cfg)
	case ProviderTypeVault:
		return NewVaultProvider(cfg)
	case ProviderTypeGCPSM:
		return NewGCPSecretManagerProvider(ctx, cfg)
	case ProviderTypeEnv, "":
		return NewEnvProvider(""), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}
}

// EnvProvider reads secrets from environment variables
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates a new environment variable provider
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// Get reads prefix+KEY, with dashes turned into underscores
func (p *EnvProvider) Get(_ context.Context, key string) (string, error) {
	envKey := p.prefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	value := os.Getenv(envKey)
	if value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// Name returns the provider name
func (p *EnvProvider) Name() string {
	return "env"
}

// Cached memoizes successful lookups for ttl. Misses and errors are not cached.
type Cached struct {
	inner Provider
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cachedValue
}

type cachedValue struct {
	value   string
	expires time.Time
}

// NewCached wraps inner with a read-through cache
func NewCached(inner Provider, ttl time.Duration) *Cached {
	return &Cached{inner: inner, ttl: ttl, now: time.Now, entries: map[string]cachedValue{}}
}

func (c *Cached) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		return entry.value, nil
	}

	value, err := c.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = cachedValue{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

func (c *Cached) Name() string {
	return c.inner.Name()
}
