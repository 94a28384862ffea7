package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the log. It is the development
// default when no transport is configured.
type LogNotifier struct{}

func (LogNotifier) SendInvite(ctx context.Context, msg InviteNotification) error {
	return deliver(ctx, "log", KindInvite, msg, func([]byte) error {
		slog.InfoContext(ctx, "Invitation notification", "to", msg.To, "expiresAt", msg.ExpiresAt)
		// The link carries the invitation token.
		slog.DebugContext(ctx, "Invitation link", "to", msg.To, "link", msg.Link)
		return nil
	})
}

func (LogNotifier) SendDecision(ctx context.Context, msg DecisionNotification) error {
	return deliver(ctx, "log", KindDecision, msg, func([]byte) error {
		slog.InfoContext(ctx, "Decision notification",
			"to", msg.To,
			"requestId", msg.RequestID,
			"status", msg.Status,
			"executed", msg.Executed)
		return nil
	})
}
