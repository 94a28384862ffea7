// Package notify delivers outbound notifications (invitation links, request
// decisions) to an external mailer through a message transport. Delivery is
// best-effort: callers log failures and carry on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
)

// Message kinds carried in the "kind" field of every payload.
const (
	KindInvite   = "invite"
	KindDecision = "decision"
)

// InviteNotification asks the mailer to send an invitation link.
type InviteNotification struct {
	To           string    `json:"to"`
	Link         string    `json:"link"`
	InviterEmail string    `json:"inviterEmail"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// DecisionNotification tells a delegate how their request was decided.
type DecisionNotification struct {
	To              string `json:"to"`
	RequestID       string `json:"requestId"`
	Status          string `json:"status"`
	Action          string `json:"action"`
	ResourceType    string `json:"resourceType"`
	ResourceName    string `json:"resourceName,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	Executed        bool   `json:"executed"`
	Message         string `json:"message,omitempty"`
}

// Notifier sends notifications.
type Notifier interface {
	SendInvite(ctx context.Context, n InviteNotification) error
	SendDecision(ctx context.Context, n DecisionNotification) error
}

// envelope is the wire form published to the transport.
type envelope struct {
	Kind    string    `json:"kind"`
	SentAt  time.Time `json:"sentAt"`
	Payload any       `json:"payload"`
}

func newEnvelope(kind string, payload any) envelope {
	return envelope{Kind: kind, SentAt: time.Now().UTC(), Payload: payload}
}

// deliver encodes the envelope, hands it to send and records the attempt.
func deliver(ctx context.Context, transport, kind string, payload any, send func([]byte) error) error {
	body, err := json.Marshal(newEnvelope(kind, payload))
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(transport, kind, "error").Inc()
		return fmt.Errorf("failed to encode %s notification: %w", kind, err)
	}
	if err := send(body); err != nil {
		metrics.NotificationsSent.WithLabelValues(transport, kind, "error").Inc()
		return fmt.Errorf("failed to publish %s notification via %s: %w", kind, transport, err)
	}
	metrics.NotificationsSent.WithLabelValues(transport, kind, "ok").Inc()
	slog.DebugContext(ctx, "Notification published", "transport", transport, "kind", kind)
	return nil
}
