// Package subadmin holds delegated administrator profiles. A profile is
// created only by accepting an invitation and carries the page permissions
// the delegate was granted.
package subadmin

import (
	"strings"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
)

// SubAdmin is a delegated administrator profile.
type SubAdmin struct {
	ID              string                     `bson:"_id" json:"id"`
	SubjectID       string                     `bson:"subjectId,omitempty" json:"subjectId,omitempty"`
	Email           string                     `bson:"email" json:"email"`
	DisplayName     string                     `bson:"displayName,omitempty" json:"displayName,omitempty"`
	PhotoURL        string                     `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	InvitedBy       string                     `bson:"invitedBy" json:"invitedBy"`
	InvitedByEmail  string                     `bson:"invitedByEmail" json:"invitedByEmail"`
	IsActive        bool                       `bson:"isActive" json:"isActive"`
	PagePermissions permission.PagePermissions `bson:"pagePermissions" json:"pagePermissions"`
	CreatedAt       time.Time                  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time                  `bson:"updatedAt" json:"updatedAt"`
	LastLoginAt     time.Time                  `bson:"lastLoginAt" json:"lastLoginAt"`
	DisabledAt      *time.Time                 `bson:"disabledAt,omitempty" json:"disabledAt,omitempty"`
	DisabledReason  string                     `bson:"disabledReason,omitempty" json:"disabledReason,omitempty"`
}

// Name returns the display name, falling back to the email.
func (s *SubAdmin) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

// Disable marks the profile inactive. The resolver no longer sees it.
func (s *SubAdmin) Disable(reason string, at time.Time) {
	s.IsActive = false
	s.DisabledAt = &at
	s.DisabledReason = reason
}

// Enable reactivates a disabled profile.
func (s *SubAdmin) Enable() {
	s.IsActive = true
	s.DisabledAt = nil
	s.DisabledReason = ""
}

// NormalizeEmail lowercases and trims an email for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
