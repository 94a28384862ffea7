package permission

import (
	"fmt"
	"strings"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

// RoleKind classifies a caller of the admin API.
type RoleKind int

const (
	RoleUnauthorized RoleKind = iota
	RoleCore
	RoleDelegated
)

func (k RoleKind) String() string {
	switch k {
	case RoleCore:
		return "core"
	case RoleDelegated:
		return "delegated"
	default:
		return "unauthorized"
	}
}

// Grant is what Decide needs to know about a caller.
type Grant struct {
	Kind        RoleKind
	Permissions PagePermissions
}

// Outcome is the result of a permission decision.
type Outcome int

const (
	Deny Outcome = iota
	Allow
	RequiresApproval
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RequiresApproval:
		return "requires_approval"
	default:
		return "deny"
	}
}

// Decision is the outcome plus the message and client hints for non-allow outcomes.
type Decision struct {
	Outcome Outcome
	Message string
	Data    map[string]any
}

// Allowed reports whether the action may proceed directly.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Err converts a non-allow decision into a 403 use case error carrying the hints.
func (d Decision) Err() *common.UseCaseError {
	switch d.Outcome {
	case Allow:
		return nil
	case RequiresApproval:
		return common.ForbiddenError(common.ErrCodeRequiresApproval, d.Message, d.Data)
	default:
		return common.ForbiddenError(common.ErrCodeAccessDenied, d.Message, d.Data)
	}
}

// Decide maps a caller's grant, a page and an action to an outcome.
//
// The core administrator is always allowed. A delegate needs the action bit
// for the page; with it VIEW and CREATE are allowed directly while UPDATE and
// DELETE always require core administrator approval.
func Decide(grant Grant, page Page, action Action) Decision {
	switch grant.Kind {
	case RoleCore:
		return Decision{Outcome: Allow}
	case RoleDelegated:
	default:
		return Decision{Outcome: Deny, Message: "Access denied. No permissions found."}
	}

	if !grant.Permissions.Allows(page, action) {
		if action == ActionView {
			return Decision{
				Outcome: Deny,
				Message: fmt.Sprintf("Access denied. You cannot view %s.", page),
			}
		}
		return Decision{
			Outcome: Deny,
			Message: fmt.Sprintf("You lack permission to %s %s.", strings.ToLower(action.String()), page),
			Data: map[string]any{
				"requiresApproval": true,
				"page":             string(page),
				"action":           action.String(),
			},
		}
	}

	if action == ActionView || action == ActionCreate {
		return Decision{Outcome: Allow}
	}

	return Decision{
		Outcome: RequiresApproval,
		Message: fmt.Sprintf("Changes to existing %s require approval from the main administrator.", page),
		Data: map[string]any{
			"requiresApproval": true,
			"page":             string(page),
			"action":           action.String(),
			"hasPermission":    true,
		},
	}
}
