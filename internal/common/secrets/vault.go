package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/config"
)

// VaultProvider reads the "value" field of KV v2 secrets
type VaultProvider struct {
	client *vault.Client
	path   string
}

// NewVaultProvider creates a new HashiCorp Vault provider
func NewVaultProvider(cfg config.SecretsConfig) (*VaultProvider, error) {
	if cfg.VaultAddr == "" {
		return nil, fmt.Errorf("%w: vault address is required", ErrProviderError)
	}

	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.VaultAddr

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.VaultToken != "" {
		client.SetToken(cfg.VaultToken)
	}
	if cfg.VaultNamespace != "" {
		client.SetNamespace(cfg.VaultNamespace)
	}

	path := cfg.VaultPath
	if path == "" {
		path = "secret/data/portfolio"
	}

	// KVv2 adds the mount's data/ segment itself
	path = strings.TrimSuffix(path, "/")
	path = strings.TrimPrefix(path, "secret/data/")
	path = strings.TrimPrefix(path, "secret/")

	return &VaultProvider{client: client, path: path}, nil
}

// Get retrieves a secret from Vault
func (p *VaultProvider) Get(ctx context.Context, key string) (string, error) {
	secret, err := p.client.KVv2("secret").Get(ctx, p.path+"/"+key)
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}
	if value, ok := secret.Data["value"].(string); ok {
		return value, nil
	}
	return "", ErrSecretNotFound
}

// Name returns the provider name
func (p *VaultProvider) Name() string {
	return "vault"
}
