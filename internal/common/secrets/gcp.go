package secrets

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/config"
)

// GCPSecretManagerProvider uses GCP Secret Manager as the backend
type GCPSecretManagerProvider struct {
	client  *secretmanager.Client
	project string
	prefix  string
}

// NewGCPSecretManagerProvider creates a new GCP Secret Manager provider
func NewGCPSecretManagerProvider(ctx context.Context, cfg config.SecretsConfig) (*GCPSecretManagerProvider, error) {
	if cfg.GCPProject == "" {
		return nil, fmt.Errorf("%w: GCP project is required", ErrProviderError)
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
	}

	prefix := cfg.GCPPrefix
	if prefix == "" {
		prefix = "portfolio-"
	}

	return &GCPSecretManagerProvider{
		client:  client,
		project: cfg.GCPProject,
		prefix:  prefix,
	}, nil
}

// Get reads the latest version of the secret
func (p *GCPSecretManagerProvider) Get(ctx context.Context, key string) (string, error) {
	result, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretVersionName(p.project, p.prefix, key),
	})
	if err != nil {
		return "", classifyGCPError(err)
	}
	return string(result.Payload.Data), nil
}

// Name returns the provider name
func (p *GCPSecretManagerProvider) Name() string {
	return "gcp-sm"
}

// Close closes the GCP client
func (p *GCPSecretManagerProvider) Close() error {
	return p.client.Close()
}

func secretVersionName(project, prefix, key string) string {
	return fmt.Sprintf("projects/%s/secrets/%s%s/versions/latest", project, prefix, key)
}

func classifyGCPError(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
		return ErrSecretNotFound
	}
	return fmt.Errorf("%w: %v", ErrProviderError, err)
}
