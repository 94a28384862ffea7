package operations

import (
	"context"
	"strings"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
)

// ListInvitationsUseCase returns invitations for the core administrator.
type ListInvitationsUseCase struct {
	invitations invitation.Repository
}

// NewListInvitationsUseCase creates a new ListInvitationsUseCase
func NewListInvitationsUseCase(invitations invitation.Repository) *ListInvitationsUseCase {
	return &ListInvitationsUseCase{invitations: invitations}
}

// Execute lists invitations newest first. An empty status lists all of them.
func (uc *ListInvitationsUseCase) Execute(ctx context.Context, status string) ([]*invitation.Invitation, *common.UseCaseError) {
	var filter invitation.Status
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		parsed, ok := invitation.ParseStatus(status)
		if !ok {
			return nil, common.ValidationError(common.ErrCodeInvalidValue, "Unknown status filter", map[string]any{"status": status})
		}
		filter = parsed
	}

	invitations, err := uc.invitations.FindAll(ctx, filter)
	if err != nil {
		return nil, common.StoreError(ctx, "list invitations", err)
	}
	if invitations == nil {
		invitations = []*invitation.Invitation{}
	}
	return invitations, nil
}
