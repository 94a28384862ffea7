package operations

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/repository"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/events"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/invitation"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/subadmin"
)

// Settings configures the invitation use cases.
type Settings struct {
	// CoreAdminEmail can never be invited.
	CoreAdminEmail string

	// TTL is how long a new invitation stays acceptable.
	TTL time.Duration

	// AcceptURLBase is the front-end page that accepts ?token=.
	AcceptURLBase string
}

func (s Settings) ttl() time.Duration {
	if s.TTL <= 0 {
		return invitation.DefaultTTL
	}
	return s.TTL
}

func (s Settings) acceptURL(token string) string {
	u, err := url.Parse(s.AcceptURLBase)
	if err != nil || s.AcceptURLBase == "" {
		return "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s Settings) isCore(email string) bool {
	core := subadmin.NormalizeEmail(s.CoreAdminEmail)
	return core != "" && subadmin.NormalizeEmail(email) == core
}

// ExpireInvitationCommand is recorded when a pending invitation is found past its expiry.
type ExpireInvitationCommand struct {
	InvitationID string `json:"invitationId"`
}

// findPending looks up a pending invitation by raw token and applies lazy
// expiry. An expired invitation is flipped to expired (committed) and
// reported as Gone.
func findPending(
	ctx context.Context,
	repo invitation.Repository,
	uow common.UnitOfWork,
	token string,
	now time.Time,
	execCtx *common.ExecutionContext,
) (*invitation.Invitation, *common.UseCaseError) {
	if token == "" {
		return nil, common.ValidationError(common.ErrCodeRequired, "Invitation token is required", nil)
	}

	inv, err := repo.FindPendingByTokenHash(ctx, invitation.HashToken(token))
	if err != nil {
		return nil, common.StoreError(ctx, "load invitation", err)
	}
	if inv == nil {
		return nil, common.NotFoundError(common.ErrCodeInvitationNotFound, "Invitation not found or no longer valid", nil)
	}

	if inv.IsExpiredAt(now) {
		event := events.NewInvitationExpired(execCtx, inv)
		result := uow.Commit(ctx, event, ExpireInvitationCommand{InvitationID: inv.ID}, func(ctx context.Context) error {
			err := repo.Transition(ctx, inv.ID, invitation.StatusExpired, now)
			if errors.Is(err, repository.ErrConditionFailed) {
				return common.NotFoundError(common.ErrCodeInvitationNotFound, "Invitation not found or no longer valid", nil)
			}
			return err
		})
		if result.IsFailure() && result.Error().Kind == common.ErrorKindNotFound {
			return nil, result.Error()
		}
		if result.IsSuccess() {
			metrics.InvitationEvents.WithLabelValues("expired").Inc()
		}
		return nil, common.GoneError(common.ErrCodeInvitationExpired, "Invitation has expired",
			map[string]any{"expiresAt": inv.ExpiresAt})
	}

	return inv, nil
}
