package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier validates ID tokens from an OpenID Connect provider such as
// Google or Firebase Authentication.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers issuerURL and verifies tokens issued for clientID.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return newOIDCVerifier(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func newOIDCVerifier(v *oidc.IDTokenVerifier) *OIDCVerifier {
	return &OIDCVerifier{verifier: v}
}

// Verify validates the ID token and reads its email claim.
func (v *OIDCVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		if unreachable(err) {
			return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		slog.DebugContext(ctx, "Rejected ID token", "error", err)
		return Identity{}, ErrInvalidToken
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, ErrInvalidToken
	}
	return newIdentity(idToken.Subject, claims.Email)
}

// unreachable reports whether err came from fetching the provider's keys.
func unreachable(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}
