// Package identity verifies bearer credentials issued by the external
// identity provider and extracts the caller's subject and email.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidToken is returned for any credential the provider rejects.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnavailable is returned when the provider cannot be reached.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Identity is a verified caller.
type Identity struct {
	SubjectID string `json:"subjectId"`
	Email     string `json:"email"`
}

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// BearerToken extracts the token from an Authorization header value.
// It returns "" when the header is absent or not a bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func newIdentity(subject, email string) (Identity, error) {
	email = strings.TrimSpace(email)
	if subject == "" || email == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{SubjectID: subject, Email: email}, nil
}
