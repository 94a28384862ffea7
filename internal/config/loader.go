package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// TOMLConfig represents the TOML configuration file structure
type TOMLConfig struct {
	HTTP        TOMLHTTPConfig       `toml:"http"`
	MongoDB     TOMLMongoDBConfig    `toml:"mongodb"`
	Auth        TOMLAuthConfig       `toml:"auth"`
	Invitations TOMLInvitationConfig `toml:"invitations"`
	Approval    TOMLApprovalConfig   `toml:"approval"`
	Storage     TOMLStorageConfig    `toml:"storage"`
	Notify      TOMLNotifyConfig     `toml:"notify"`
	Redis       TOMLRedisConfig      `toml:"redis"`
	RateLimit   TOMLRateLimitConfig  `toml:"rate_limit"`
	Leader      TOMLLeaderConfig     `toml:"leader"`
	Secrets     TOMLSecretsConfig    `toml:"secrets"`
	DevMode     bool                 `toml:"dev_mode"`
}

type TOMLHTTPConfig struct {
	Port         int      `toml:"port"`
	CORSOrigins  []string `toml:"cors_origins"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

type TOMLMongoDBConfig struct {
	URI          string `toml:"uri"`
	Database     string `toml:"database"`
	Transactions *bool  `toml:"transactions"`
}

type TOMLAuthConfig struct {
	CoreAdminEmail   string `toml:"core_admin_email"`
	Verifier         string `toml:"verifier"`
	Issuer           string `toml:"issuer"`
	Audience         string `toml:"audience"`
	JWTSecretKey     string `toml:"jwt_secret_key"`
	JWTPublicKeyPath string `toml:"jwt_public_key_path"`
	OIDCClientID     string `toml:"oidc_client_id"`
}

type TOMLInvitationConfig struct {
	TTL           string `toml:"ttl"`
	AcceptURLBase string `toml:"accept_url_base"`
}

type TOMLApprovalConfig struct {
	AutoEnqueue          bool   `toml:"auto_enqueue"`
	ReconcileInterval    string `toml:"reconcile_interval"`
	ReconcileGracePeriod string `toml:"reconcile_grace_period"`
	MaxExecutionAttempts int    `toml:"max_execution_attempts"`
}

type TOMLStorageConfig struct {
	Bucket        string `toml:"bucket"`
	Region        string `toml:"region"`
	Endpoint      string `toml:"endpoint"`
	PublicBaseURL string `toml:"public_base_url"`
	UsePathStyle  bool   `toml:"use_path_style"`
}

type TOMLNotifyConfig struct {
	Type        string `toml:"type"`
	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`
	SQSQueueURL string `toml:"sqs_queue_url"`
	SQSRegion   string `toml:"sqs_region"`
	SQSEndpoint string `toml:"sqs_endpoint"`
}

type TOMLRedisConfig struct {
	Addr string `toml:"addr"`
	DB   int    `toml:"db"`
}

type TOMLRateLimitConfig struct {
	Window      string `toml:"window"`
	PublicLimit int    `toml:"public_limit"`
}

type TOMLLeaderConfig struct {
	Enabled         bool   `toml:"enabled"`
	InstanceID      string `toml:"instance_id"`
	TTL             string `toml:"ttl"`
	RefreshInterval string `toml:"refresh_interval"`
}

type TOMLSecretsConfig struct {
	Provider       string `toml:"provider"`
	AWSRegion      string `toml:"aws_region"`
	AWSPrefix      string `toml:"aws_prefix"`
	AWSEndpoint    string `toml:"aws_endpoint"`
	VaultAddr      string `toml:"vault_addr"`
	VaultPath      string `toml:"vault_path"`
	VaultNamespace string `toml:"vault_namespace"`
	GCPProject     string `toml:"gcp_project"`
	GCPPrefix      string `toml:"gcp_prefix"`
}

// ConfigPaths lists the paths to search for config files
var ConfigPaths = []string{
	"config.toml",
	"portfolio.toml",
	"./config/config.toml",
	"/etc/portfolio/config.toml",
}

// LoadWithFile loads env configuration and overlays a TOML file.
// Environment variables that are explicitly set always win over the file.
func LoadWithFile() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	configPath := os.Getenv("PORTFOLIO_CONFIG")
	if configPath == "" {
		for _, path := range ConfigPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
	}

	if configPath == "" {
		return cfg, nil
	}

	var tc TOMLConfig
	if _, err := toml.DecodeFile(configPath, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	applyFile(cfg, &tc)
	return cfg, nil
}

// applyFile copies non-zero file values into cfg unless the matching env var is set
func applyFile(cfg *Config, tc *TOMLConfig) {
	setInt(&cfg.HTTP.Port, tc.HTTP.Port, "PORT")
	if len(tc.HTTP.CORSOrigins) > 0 && !envSet("CORS_ORIGINS") {
		cfg.HTTP.CORSOrigins = tc.HTTP.CORSOrigins
	}
	if tc.HTTP.MaxBodyBytes > 0 && !envSet("HTTP_MAX_BODY_BYTES") {
		cfg.HTTP.MaxBodyBytes = tc.HTTP.MaxBodyBytes
	}

	setString(&cfg.MongoDB.URI, tc.MongoDB.URI, "MONGODB_URI")
	setString(&cfg.MongoDB.Database, tc.MongoDB.Database, "MONGODB_DATABASE")
	if tc.MongoDB.Transactions != nil && !envSet("MONGODB_TRANSACTIONS") {
		cfg.MongoDB.Transactions = *tc.MongoDB.Transactions
	}

	setString(&cfg.Auth.CoreAdminEmail, tc.Auth.CoreAdminEmail, "ADMIN_EMAIL")
	setString(&cfg.Auth.Verifier, tc.Auth.Verifier, "AUTH_VERIFIER")
	setString(&cfg.Auth.Issuer, tc.Auth.Issuer, "AUTH_ISSUER")
	setString(&cfg.Auth.Audience, tc.Auth.Audience, "AUTH_AUDIENCE")
	setString(&cfg.Auth.JWTSecretKey, tc.Auth.JWTSecretKey, "AUTH_JWT_SECRET_KEY")
	setString(&cfg.Auth.JWTPublicKeyPath, tc.Auth.JWTPublicKeyPath, "AUTH_JWT_PUBLIC_KEY_PATH")
	setString(&cfg.Auth.OIDCClientID, tc.Auth.OIDCClientID, "AUTH_OIDC_CLIENT_ID")

	setDuration(&cfg.Invitations.TTL, tc.Invitations.TTL, "INVITATION_TTL")
	setString(&cfg.Invitations.AcceptURLBase, tc.Invitations.AcceptURLBase, "INVITATION_ACCEPT_URL")

	setBool(&cfg.Approval.AutoEnqueue, tc.Approval.AutoEnqueue, "APPROVAL_AUTO_ENQUEUE")
	setDuration(&cfg.Approval.ReconcileInterval, tc.Approval.ReconcileInterval, "APPROVAL_RECONCILE_INTERVAL")
	setDuration(&cfg.Approval.ReconcileGracePeriod, tc.Approval.ReconcileGracePeriod, "APPROVAL_RECONCILE_GRACE")
	setInt(&cfg.Approval.MaxExecutionAttempts, tc.Approval.MaxExecutionAttempts, "APPROVAL_MAX_EXECUTION_ATTEMPTS")

	setString(&cfg.Storage.Bucket, tc.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Region, tc.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.Endpoint, tc.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.PublicBaseURL, tc.Storage.PublicBaseURL, "STORAGE_PUBLIC_BASE_URL")
	setBool(&cfg.Storage.UsePathStyle, tc.Storage.UsePathStyle, "STORAGE_PATH_STYLE")

	setString(&cfg.Notify.Type, tc.Notify.Type, "NOTIFY_TYPE")
	setString(&cfg.Notify.NATSURL, tc.Notify.NATSURL, "NATS_URL")
	setString(&cfg.Notify.NATSSubject, tc.Notify.NATSSubject, "NATS_SUBJECT")
	setString(&cfg.Notify.SQSQueueURL, tc.Notify.SQSQueueURL, "SQS_QUEUE_URL")
	setString(&cfg.Notify.SQSRegion, tc.Notify.SQSRegion, "AWS_REGION")
	setString(&cfg.Notify.SQSEndpoint, tc.Notify.SQSEndpoint, "SQS_ENDPOINT")

	setString(&cfg.Redis.Addr, tc.Redis.Addr, "REDIS_ADDR")
	setInt(&cfg.Redis.DB, tc.Redis.DB, "REDIS_DB")

	setDuration(&cfg.RateLimit.Window, tc.RateLimit.Window, "RATE_LIMIT_WINDOW")
	setInt(&cfg.RateLimit.PublicLimit, tc.RateLimit.PublicLimit, "RATE_LIMIT_PUBLIC")

	setBool(&cfg.Leader.Enabled, tc.Leader.Enabled, "LEADER_ELECTION_ENABLED")
	setString(&cfg.Leader.InstanceID, tc.Leader.InstanceID, "HOSTNAME")
	setDuration(&cfg.Leader.TTL, tc.Leader.TTL, "LEADER_TTL")
	setDuration(&cfg.Leader.RefreshInterval, tc.Leader.RefreshInterval, "LEADER_REFRESH_INTERVAL")

	setString(&cfg.Secrets.Provider, tc.Secrets.Provider, "SECRETS_PROVIDER")
	setString(&cfg.Secrets.AWSRegion, tc.Secrets.AWSRegion, "SECRETS_AWS_REGION")
	setString(&cfg.Secrets.AWSPrefix, tc.Secrets.AWSPrefix, "SECRETS_AWS_PREFIX")
	setString(&cfg.Secrets.AWSEndpoint, tc.Secrets.AWSEndpoint, "SECRETS_AWS_ENDPOINT")
	setString(&cfg.Secrets.VaultAddr, tc.Secrets.VaultAddr, "VAULT_ADDR")
	setString(&cfg.Secrets.VaultPath, tc.Secrets.VaultPath, "SECRETS_VAULT_PATH")
	setString(&cfg.Secrets.VaultNamespace, tc.Secrets.VaultNamespace, "VAULT_NAMESPACE")
	setString(&cfg.Secrets.GCPProject, tc.Secrets.GCPProject, "SECRETS_GCP_PROJECT")
	setString(&cfg.Secrets.GCPPrefix, tc.Secrets.GCPPrefix, "SECRETS_GCP_PREFIX")

	setBool(&cfg.DevMode, tc.DevMode, "PORTFOLIO_DEV")
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setString(dst *string, fileValue, envKey string) {
	if fileValue != "" && !envSet(envKey) {
		*dst = fileValue
	}
}

func setInt(dst *int, fileValue int, envKey string) {
	if fileValue != 0 && !envSet(envKey) {
		*dst = fileValue
	}
}

func setBool(dst *bool, fileValue bool, envKey string) {
	if fileValue && !envSet(envKey) {
		*dst = true
	}
}

func setDuration(dst *time.Duration, fileValue, envKey string) {
	if fileValue == "" || envSet(envKey) {
		return
	}
	if d, err := time.ParseDuration(fileValue); err == nil {
		*dst = d
	}
}
