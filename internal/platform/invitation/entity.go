// Package invitation implements the offers that turn an email address into a
// delegated administrator.
package invitation

import (
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

// Status is the lifecycle state of an invitation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// ParseStatus returns the status named s, or false.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusExpired:
		return Status(s), true
	}
	return "", false
}

// DefaultTTL is how long an invitation stays acceptable when not configured.
const DefaultTTL = 7 * 24 * time.Hour

// Invitation is an offer to become a delegated administrator. Only the hash
// of the token is stored; the raw token is handed out once at creation.
type Invitation struct {
	ID              string                     `bson:"_id" json:"id"`
	Email           string                     `bson:"email" json:"email"`
	InvitedBy       string                     `bson:"invitedBy" json:"invitedBy"`
	InvitedByEmail  string                     `bson:"invitedByEmail" json:"invitedByEmail"`
	TokenHash       string                     `bson:"tokenHash" json:"-"`
	Status          Status                     `bson:"status" json:"status"`
	PagePermissions permission.PagePermissions `bson:"pagePermissions" json:"pagePermissions"`
	ExpiresAt       time.Time                  `bson:"expiresAt" json:"expiresAt"`
	CreatedAt       time.Time                  `bson:"createdAt" json:"createdAt"`
	AcceptedAt      *time.Time                 `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
}

// IsExpiredAt reports whether the invitation can no longer be accepted at now.
func (i *Invitation) IsExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Summary is what an unauthenticated caller may learn from a valid token.
type Summary struct {
	Email           string                     `json:"email"`
	InvitedByEmail  string                     `json:"invitedByEmail"`
	ExpiresAt       time.Time                  `json:"expiresAt"`
	PagePermissions permission.PagePermissions `json:"pagePermissions"`
}

// Summary returns the public view of the invitation.
func (i *Invitation) Summary() Summary {
	return Summary{
		Email:           i.Email,
		InvitedByEmail:  i.InvitedByEmail,
		ExpiresAt:       i.ExpiresAt,
		PagePermissions: i.PagePermissions,
	}
}
