package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures a JWTVerifier. Exactly one of Secret or PublicKey is used;
// PublicKey wins when both are set.
type JWTConfig struct {
	// Secret is the HS256 shared key
	Secret []byte

	// PublicKey verifies RS256 tokens
	PublicKey *rsa.PublicKey

	// Issuer and Audience are checked when non-empty
	Issuer   string
	Audience string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTVerifier validates self-contained JWTs signed with a static key.
type JWTVerifier struct {
	key    any
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier from cfg
func NewJWTVerifier(cfg JWTConfig) (*JWTVerifier, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	v := &JWTVerifier{}
	switch {
	case cfg.PublicKey != nil:
		v.key = cfg.PublicKey
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	case len(cfg.Secret) > 0:
		v.key = cfg.Secret
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	default:
		return nil, errors.New("jwt verifier needs a secret or a public key")
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// LoadRSAPublicKey reads a PEM encoded RSA public key
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return key, nil
}

// Verify validates the signature and registered claims of token.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	var claims tokenClaims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		slog.DebugContext(ctx, "Rejected bearer token", "error", err)
		return Identity{}, ErrInvalidToken
	}
	return newIdentity(claims.Subject, claims.Email)
}
