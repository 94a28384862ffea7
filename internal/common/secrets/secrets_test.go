package secrets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/config"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("PORTFOLIO_JWT_SECRET", "s3cret")
	p := NewEnvProvider("PORTFOLIO_")

	got, err := p.Get(context.Background(), "jwt-secret")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Get = %q", got)
	}

	if _, err := p.Get(context.Background(), "missing"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("err = %v, want ErrSecretNotFound", err)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), config.SecretsConfig{Provider: "env"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "env" {
		t.Errorf("Name = %q", p.Name())
	}

	if _, err := NewProvider(context.Background(), config.SecretsConfig{Provider: "etcd"}); err == nil {
		t.Error("expected an error for an unknown provider")
	}
	if _, err := NewProvider(context.Background(), config.SecretsConfig{Provider: "vault"}); !errors.Is(err, ErrProviderError) {
		t.Errorf("vault without address: err = %v", err)
	}
	if _, err := NewProvider(context.Background(), config.SecretsConfig{Provider: "gcp-sm"}); !errors.Is(err, ErrProviderError) {
		t.Errorf("gcp without project: err = %v", err)
	}
}

type fakeSecretsManager struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[aws.ToString(in.SecretId)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func TestAWSSecretsManagerProvider(t *testing.T) {
	fake := &fakeSecretsManager{values: map[string]string{"/portfolio/JWT_SECRET": "from-aws"}}
	p := NewAWSSecretsManagerProviderWithClient(fake, "/portfolio")

	got, err := p.Get(context.Background(), "JWT_SECRET")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "from-aws" {
		t.Errorf("Get = %q", got)
	}

	if _, err := p.Get(context.Background(), "OTHER"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("err = %v, want ErrSecretNotFound", err)
	}

	fake.err = errors.New("throttled")
	if _, err := p.Get(context.Background(), "JWT_SECRET"); !errors.Is(err, ErrProviderError) {
		t.Errorf("err = %v, want ErrProviderError", err)
	}
}

func TestVaultProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/portfolio/JWT_SECRET" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"value":"from-vault"},"metadata":{"created_time":"2026-01-01T00:00:00Z","deletion_time":"","destroyed":false,"version":1}}}`))
	}))
	defer srv.Close()

	p, err := NewVaultProvider(config.SecretsConfig{VaultAddr: srv.URL, VaultToken: "t", VaultPath: "secret/data/portfolio"})
	if err != nil {
		t.Fatalf("NewVaultProvider: %v", err)
	}

	got, err := p.Get(context.Background(), "JWT_SECRET")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "from-vault" {
		t.Errorf("Get = %q", got)
	}

	if _, err := p.Get(context.Background(), "OTHER"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("err = %v, want ErrSecretNotFound", err)
	}
}

func TestGCPHelpers(t *testing.T) {
	if got := secretVersionName("proj", "portfolio-", "jwt"); got != "projects/proj/secrets/portfolio-jwt/versions/latest" {
		t.Errorf("secretVersionName = %q", got)
	}
	if err := classifyGCPError(status.Error(codes.NotFound, "gone")); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("NotFound: err = %v", err)
	}
	if err := classifyGCPError(status.Error(codes.PermissionDenied, "no")); !errors.Is(err, ErrProviderError) {
		t.Errorf("PermissionDenied: err = %v", err)
	}
}

func TestCached(t *testing.T) {
	fake := &fakeSecretsManager{values: map[string]string{"/portfolio/k": "v"}}
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	c := NewCached(NewAWSSecretsManagerProviderWithClient(fake, ""), time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if v, err := c.Get(context.Background(), "k"); err != nil || v != "v" {
			t.Fatalf("Get = %q, %v", v, err)
		}
	}
	if fake.calls != 1 {
		t.Errorf("backend calls = %d, want 1", fake.calls)
	}

	now = now.Add(2 * time.Minute)
	_, _ = c.Get(context.Background(), "k")
	if fake.calls != 2 {
		t.Errorf("backend calls after expiry = %d, want 2", fake.calls)
	}

	_, _ = c.Get(context.Background(), "missing")
	_, _ = c.Get(context.Background(), "missing")
	if fake.calls != 4 {
		t.Errorf("misses must not be cached: calls = %d", fake.calls)
	}
}
