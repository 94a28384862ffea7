package operations

import (
	"context"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
)

// RevokeInvitationCommand contains the data needed to revoke an invitation
type RevokeInvitationCommand struct {
	ID string `json:"id"`
}

// RevokeInvitationUseCase deletes an invitation. Deleting an accepted or
// expired invitation only removes the record; the delegate is untouched.
type RevokeInvitationUseCase struct {
	invitations invitation.Repository
	unitOfWork  common.UnitOfWork
}

// NewRevokeInvitationUseCase creates a new RevokeInvitationUseCase
func NewRevokeInvitationUseCase(invitations invitation.Repository, uow common.UnitOfWork) *RevokeInvitationUseCase {
	return &RevokeInvitationUseCase{invitations: invitations, unitOfWork: uow}
}

// Execute deletes the invitation
func (uc *RevokeInvitationUseCase) Execute(
	ctx context.Context,
	cmd RevokeInvitationCommand,
	execCtx *common.ExecutionContext,
) common.Result[common.DomainEvent] {
	if cmd.ID == "" {
		return common.Failure[common.DomainEvent](
			common.ValidationError(common.ErrCodeRequired, "Invitation ID is required", nil),
		)
	}

	inv, err := uc.invitations.FindByID(ctx, cmd.ID)
	if err != nil {
		return common.Failure[common.DomainEvent](common.StoreError(ctx, "load invitation", err))
	}
	if inv == nil {
		return common.Failure[common.DomainEvent](
			common.NotFoundError(common.ErrCodeInvitationNotFound, "Invitation not found", map[string]any{"id": cmd.ID}),
		)
	}

	event := events.NewInvitationRevoked(execCtx, inv)
	result := uc.unitOfWork.Commit(ctx, event, cmd, func(ctx context.Context) error {
		return uc.invitations.Delete(ctx, inv.ID)
	})
	if result.IsSuccess() {
		metrics.InvitationEvents.WithLabelValues("revoked").Inc()
	}
	return result
}
