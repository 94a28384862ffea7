package operations

import (
	"context"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
)

// VerifyInvitationUseCase looks up a pending invitation by token for the
// public accept screen. It grants nothing; a lazily detected expiry is the
// only state it changes.
type VerifyInvitationUseCase struct {
	invitations invitation.Repository
	unitOfWork  common.UnitOfWork
	now         func() time.Time
}

// NewVerifyInvitationUseCase creates a new VerifyInvitationUseCase
func NewVerifyInvitationUseCase(invitations invitation.Repository, uow common.UnitOfWork) *VerifyInvitationUseCase {
	return &VerifyInvitationUseCase{invitations: invitations, unitOfWork: uow, now: time.Now}
}

// Execute returns the invitation summary or NotFound/Gone.
func (uc *VerifyInvitationUseCase) Execute(
	ctx context.Context,
	token string,
	execCtx *common.ExecutionContext,
) (invitation.Summary, *common.UseCaseError) {
	inv, ucErr := findPending(ctx, uc.invitations, uc.unitOfWork, token, uc.now(), execCtx)
	if ucErr != nil {
		return invitation.Summary{}, ucErr
	}
	return inv.Summary(), nil
}
