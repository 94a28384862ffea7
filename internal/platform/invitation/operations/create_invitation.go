package operations

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/permission"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// CreateInvitationCommand contains the data needed to invite an email
type CreateInvitationCommand struct {
	Email           string                     `json:"email"`
	PagePermissions permission.PagePermissions `json:"pagePermissions,omitempty"`
}

// CreatedInvitation is returned once; Token is never readable again.
type CreatedInvitation struct {
	Invitation *invitation.Invitation `json:"invitation"`
	Token      string                 `json:"token"`
	AcceptURL  string                 `json:"acceptUrl"`
}

// CreateInvitationUseCase handles inviting a new delegated administrator
type CreateInvitationUseCase struct {
	invitations invitation.Repository
	subAdmins   subadmin.Repository
	unitOfWork  common.UnitOfWork
	notifier    notify.Notifier
	settings    Settings
	now         func() time.Time
}

// NewCreateInvitationUseCase creates a new CreateInvitationUseCase
func NewCreateInvitationUseCase(
	invitations invitation.Repository,
	subAdmins subadmin.Repository,
	uow common.UnitOfWork,
	notifier notify.Notifier,
	settings Settings,
) *CreateInvitationUseCase {
	return &CreateInvitationUseCase{
		invitations: invitations,
		subAdmins:   subAdmins,
		unitOfWork:  uow,
		notifier:    notifier,
		settings:    settings,
		now:         time.Now,
	}
}

// Execute creates a pending invitation and sends the invite notification.
func (uc *CreateInvitationUseCase) Execute(
	ctx context.Context,
	cmd CreateInvitationCommand,
	execCtx *common.ExecutionContext,
) common.Result[*CreatedInvitation] {
	email := subadmin.NormalizeEmail(cmd.Email)
	if email == "" {
		return common.Failure[*CreatedInvitation](
			common.ValidationError(common.ErrCodeRequired, "Email is required", nil),
		)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return common.Failure[*CreatedInvitation](
			common.ValidationError(common.ErrCodeInvalidEmail, "Email address is not valid", map[string]any{"email": cmd.Email}),
		)
	}

	if uc.settings.isCore(email) {
		return common.Failure[*CreatedInvitation](
			common.BusinessRuleError(common.ErrCodeInvalidTarget, "Cannot invite the main administrator", nil),
		)
	}

	existing, err := uc.subAdmins.FindActiveByEmail(ctx, email)
	if err != nil {
		return common.Failure[*CreatedInvitation](common.StoreError(ctx, "check existing sub-admin", err))
	}
	if existing != nil {
		return common.Failure[*CreatedInvitation](
			common.BusinessRuleError(common.ErrCodeAlreadyAdministrator, "This email is already a sub-admin", map[string]any{"email": email}),
		)
	}

	pending, err := uc.invitations.FindPendingByEmail(ctx, email)
	if err != nil {
		return common.Failure[*CreatedInvitation](common.StoreError(ctx, "check pending invitations", err))
	}
	if pending != nil {
		return common.Failure[*CreatedInvitation](alreadyPending(email))
	}

	token, tokenHash, err := invitation.GenerateToken()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to generate invitation token", "error", err)
		return common.Failure[*CreatedInvitation](
			common.InternalError(common.ErrCodeCommitFailed, "Failed to create invitation"),
		)
	}

	perms := cmd.PagePermissions
	if len(perms) == 0 {
		perms = permission.DefaultPermissions()
	}

	now := uc.now()
	inv := &invitation.Invitation{
		ID:              uuid.NewString(),
		Email:           email,
		InvitedBy:       execCtx.PrincipalID,
		InvitedByEmail:  execCtx.PrincipalEmail,
		TokenHash:       tokenHash,
		Status:          invitation.StatusPending,
		PagePermissions: perms,
		ExpiresAt:       now.Add(uc.settings.ttl()),
		CreatedAt:       now,
	}
	created := &CreatedInvitation{
		Invitation: inv,
		Token:      token,
		AcceptURL:  uc.settings.acceptURL(token),
	}

	event := events.NewInvitationCreated(execCtx, inv)
	result := common.CommitValue(ctx, uc.unitOfWork, created, event, cmd, func(ctx context.Context) error {
		err := uc.invitations.Insert(ctx, inv)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return alreadyPending(email)
		}
		return err
	})
	if result.IsFailure() {
		return result
	}
	metrics.InvitationEvents.WithLabelValues("created").Inc()

	uc.sendInvite(ctx, created)
	return result
}

func (uc *CreateInvitationUseCase) sendInvite(ctx context.Context, created *CreatedInvitation) {
	if uc.notifier == nil {
		return
	}
	err := uc.notifier.SendInvite(ctx, notify.InviteNotification{
		To:           created.Invitation.Email,
		Link:         created.AcceptURL,
		InviterEmail: created.Invitation.InvitedByEmail,
		ExpiresAt:    created.Invitation.ExpiresAt,
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to send invitation notification",
			"invitationId", created.Invitation.ID,
			"error", err)
	}
}

func alreadyPending(email string) *common.UseCaseError {
	return common.BusinessRuleError(common.ErrCodeInvitationAlreadyPending,
		"A pending invitation already exists for this email", map[string]any{"email": email})
}
