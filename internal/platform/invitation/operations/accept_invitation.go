package operations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// AcceptInvitationCommand contains the data needed to accept an invitation.
// SubjectID and Email come from the verified identity, never the request body.
type AcceptInvitationCommand struct {
	Token       string `json:"token"`
	SubjectID   string `json:"subjectId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// ToAuditJSON omits the token.
func (c AcceptInvitationCommand) ToAuditJSON() string {
	return common.MarshalDataJSON(map[string]string{
		"subjectId":   c.SubjectID,
		"email":       c.Email,
		"displayName": c.DisplayName,
	})
}

// AcceptInvitationUseCase turns a pending invitation into a delegate profile.
// It is the only way a SubAdmin comes into existence.
type AcceptInvitationUseCase struct {
	invitations invitation.Repository
	subAdmins   subadmin.Repository
	unitOfWork  common.UnitOfWork
	now         func() time.Time
}

// NewAcceptInvitationUseCase creates a new AcceptInvitationUseCase
func NewAcceptInvitationUseCase(
	invitations invitation.Repository,
	subAdmins subadmin.Repository,
	uow common.UnitOfWork,
) *AcceptInvitationUseCase {
	return &AcceptInvitationUseCase{
		invitations: invitations,
		subAdmins:   subAdmins,
		unitOfWork:  uow,
		now:         time.Now,
	}
}

// Execute accepts the invitation for the caller's identity.
func (uc *AcceptInvitationUseCase) Execute(
	ctx context.Context,
	cmd AcceptInvitationCommand,
	execCtx *common.ExecutionContext,
) common.Result[*subadmin.SubAdmin] {
	now := uc.now()

	inv, ucErr := findPending(ctx, uc.invitations, uc.unitOfWork, cmd.Token, now, execCtx)
	if ucErr != nil {
		return common.Failure[*subadmin.SubAdmin](ucErr)
	}

	email := subadmin.NormalizeEmail(cmd.Email)
	if email != inv.Email {
		return common.Failure[*subadmin.SubAdmin](
			common.ForbiddenError(common.ErrCodeEmailMismatch, "This invitation was sent to a different email address", nil),
		)
	}

	existing, err := uc.subAdmins.FindByEmail(ctx, email)
	if err != nil {
		return common.Failure[*subadmin.SubAdmin](common.StoreError(ctx, "check existing sub-admin", err))
	}
	if existing != nil && existing.IsActive {
		return common.Failure[*subadmin.SubAdmin](
			common.BusinessRuleError(common.ErrCodeAlreadyAdministrator, "This email is already a sub-admin", map[string]any{"email": email}),
		)
	}

	profile := &subadmin.SubAdmin{
		ID:              uuid.NewString(),
		SubjectID:       cmd.SubjectID,
		Email:           email,
		DisplayName:     cmd.DisplayName,
		PhotoURL:        cmd.PhotoURL,
		InvitedBy:       inv.InvitedBy,
		InvitedByEmail:  inv.InvitedByEmail,
		IsActive:        true,
		PagePermissions: inv.PagePermissions,
		CreatedAt:       now,
		LastLoginAt:     now,
	}

	event := events.NewInvitationAccepted(execCtx, inv, profile.ID)
	result := common.CommitValue(ctx, uc.unitOfWork, profile, event, cmd, func(ctx context.Context) error {
		err := uc.invitations.Transition(ctx, inv.ID, invitation.StatusAccepted, now)
		if errors.Is(err, repository.ErrConditionFailed) {
			return common.NotFoundError(common.ErrCodeInvitationNotFound, "Invitation not found or no longer valid", nil)
		}
		if err != nil {
			return err
		}
		// A disabled profile for the same email gives way to the new one.
		if existing != nil {
			if err := uc.subAdmins.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		err = uc.subAdmins.Insert(ctx, profile)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return common.BusinessRuleError(common.ErrCodeAlreadyAdministrator, "This email is already a sub-admin", map[string]any{"email": email})
		}
		return err
	})
	if result.IsSuccess() {
		metrics.InvitationEvents.WithLabelValues("accepted").Inc()
	}
	return result
}
