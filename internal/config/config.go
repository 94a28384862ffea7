package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the portfolio API
type Config struct {
	// HTTP server configuration
	HTTP HTTPConfig

	// MongoDB configuration
	MongoDB MongoDBConfig

	// Authentication and administrator configuration
	Auth AuthConfig

	// Invitation lifecycle configuration
	Invitations InvitationConfig

	// Approval workflow configuration
	Approval ApprovalConfig

	// File storage configuration
	Storage StorageConfig

	// Outbound notification configuration
	Notify NotifyConfig

	// Redis (rate limiting, leader election)
	Redis RedisConfig

	RateLimit RateLimitConfig

	Leader LeaderConfig

	Secrets SecretsConfig

	// Development mode
	DevMode bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port         int
	CORSOrigins  []string
	MaxBodyBytes int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string

	// Transactions requires a replica set; disable for standalone servers
	Transactions bool
}

// AuthConfig holds identity verification configuration
type AuthConfig struct {
	// CoreAdminEmail identifies the single core administrator
	CoreAdminEmail string

	// Verifier is "jwt" or "oidc"
	Verifier string

	Issuer   string
	Audience string

	// JWTSecretKey names the secret holding the HMAC key
	JWTSecretKey string

	// JWTPublicKeyPath is a PEM RSA public key; takes precedence over the secret
	JWTPublicKeyPath string

	// OIDCClientID is the expected audience of OIDC ID tokens
	OIDCClientID string
}

// InvitationConfig holds invitation configuration
type InvitationConfig struct {
	TTL           time.Duration
	AcceptURLBase string
}

// ApprovalConfig holds approval workflow configuration
type ApprovalConfig struct {
	// AutoEnqueue turns approval-required content writes into pending requests
	AutoEnqueue bool

	ReconcileInterval    time.Duration
	ReconcileGracePeriod time.Duration
	MaxExecutionAttempts int
}

// StorageConfig holds S3-compatible object storage configuration
type StorageConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	UsePathStyle  bool
	AccessKey     string
	SecretKey     string
}

// NotifyConfig holds outbound notification configuration
type NotifyConfig struct {
	Type string // "log", "nats", "sqs"

	NATSURL     string
	NATSSubject string

	SQSQueueURL string
	SQSRegion   string
	SQSEndpoint string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig holds public endpoint rate limits
type RateLimitConfig struct {
	Window      time.Duration
	PublicLimit int
}

// LeaderConfig holds leader election configuration
type LeaderConfig struct {
	Enabled         bool
	InstanceID      string
	TTL             time.Duration
	RefreshInterval time.Duration
}

// SecretsConfig holds secrets provider configuration
type SecretsConfig struct {
	Provider string // "env", "aws-sm", "vault", "gcp-sm"

	AWSRegion   string
	AWSPrefix   string
	AWSEndpoint string

	VaultAddr      string
	VaultToken     string
	VaultPath      string
	VaultNamespace string

	GCPProject string
	GCPPrefix  string
}

var ErrMissingCoreAdmin = errors.New("core administrator email is not configured")

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Port:         getEnvInt("PORT", 5000),
			CORSOrigins:  getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
			MaxBodyBytes: int64(getEnvInt("HTTP_MAX_BODY_BYTES", 10<<20)),
		},

		MongoDB: MongoDBConfig{
			URI:          getEnv("MONGODB_URI", "mongodb://localhost:27017/?replicaSet=rs0&directConnection=true"),
			Database:     getEnv("MONGODB_DATABASE", "portfolio"),
			Transactions: getEnvBool("MONGODB_TRANSACTIONS", true),
		},

		Auth: AuthConfig{
			CoreAdminEmail:   getEnv("ADMIN_EMAIL", ""),
			Verifier:         getEnv("AUTH_VERIFIER", "jwt"),
			Issuer:           getEnv("AUTH_ISSUER", ""),
			Audience:         getEnv("AUTH_AUDIENCE", ""),
			JWTSecretKey:     getEnv("AUTH_JWT_SECRET_KEY", "JWT_SECRET"),
			JWTPublicKeyPath: getEnv("AUTH_JWT_PUBLIC_KEY_PATH", ""),
			OIDCClientID:     getEnv("AUTH_OIDC_CLIENT_ID", ""),
		},

		Invitations: InvitationConfig{
			TTL:           getEnvDuration("INVITATION_TTL", 7*24*time.Hour),
			AcceptURLBase: getEnv("INVITATION_ACCEPT_URL", "http://localhost:3000/admin/accept-invitation"),
		},

		Approval: ApprovalConfig{
			AutoEnqueue:          getEnvBool("APPROVAL_AUTO_ENQUEUE", false),
			ReconcileInterval:    getEnvDuration("APPROVAL_RECONCILE_INTERVAL", time.Minute),
			ReconcileGracePeriod: getEnvDuration("APPROVAL_RECONCILE_GRACE", 5*time.Minute),
			MaxExecutionAttempts: getEnvInt("APPROVAL_MAX_EXECUTION_ATTEMPTS", 5),
		},

		Storage: StorageConfig{
			Bucket:        getEnv("STORAGE_BUCKET", ""),
			Region:        getEnv("STORAGE_REGION", getEnv("AWS_REGION", "us-east-1")),
			Endpoint:      getEnv("STORAGE_ENDPOINT", ""),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			UsePathStyle:  getEnvBool("STORAGE_PATH_STYLE", false),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
		},

		Notify: NotifyConfig{
			Type:        getEnv("NOTIFY_TYPE", "log"),
			NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			NATSSubject: getEnv("NATS_SUBJECT", "portfolio.notifications"),
			SQSQueueURL: getEnv("SQS_QUEUE_URL", ""),
			SQSRegion:   getEnv("AWS_REGION", "us-east-1"),
			SQSEndpoint: getEnv("SQS_ENDPOINT", ""),
		},

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		RateLimit: RateLimitConfig{
			Window:      getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			PublicLimit: getEnvInt("RATE_LIMIT_PUBLIC", 100),
		},

		Leader: LeaderConfig{
			Enabled:         getEnvBool("LEADER_ELECTION_ENABLED", false),
			InstanceID:      getEnv("HOSTNAME", ""),
			TTL:             getEnvDuration("LEADER_TTL", 30*time.Second),
			RefreshInterval: getEnvDuration("LEADER_REFRESH_INTERVAL", 10*time.Second),
		},

		Secrets: SecretsConfig{
			Provider:       getEnv("SECRETS_PROVIDER", "env"),
			AWSRegion:      getEnv("SECRETS_AWS_REGION", ""),
			AWSPrefix:      getEnv("SECRETS_AWS_PREFIX", "/portfolio/"),
			AWSEndpoint:    getEnv("SECRETS_AWS_ENDPOINT", ""),
			VaultAddr:      getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultPath:      getEnv("SECRETS_VAULT_PATH", "secret/data/portfolio"),
			VaultNamespace: getEnv("VAULT_NAMESPACE", ""),
			GCPProject:     getEnv("SECRETS_GCP_PROJECT", ""),
			GCPPrefix:      getEnv("SECRETS_GCP_PREFIX", "portfolio-"),
		},

		DevMode: getEnvBool("PORTFOLIO_DEV", false),
	}

	return cfg, nil
}

// Validate checks settings the service cannot start without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.CoreAdminEmail) == "" {
		return ErrMissingCoreAdmin
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
