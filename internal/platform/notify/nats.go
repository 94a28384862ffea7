package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// flushTimeout bounds the server round trip when the caller's context has
// no deadline, as on the reconciler's lifecycle context.
const flushTimeout = 5 * time.Second

// NATSNotifier publishes notifications on {subject}.{kind}.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	owned   bool
}

// ConnectNATS dials url and returns a notifier that owns the connection.
func ConnectNATS(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("portfolio-api"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	n := NewNATSNotifier(conn, subject)
	n.owned = true
	return n, nil
}

// NewNATSNotifier publishes over an existing connection.
func NewNATSNotifier(conn *nats.Conn, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject}
}

func (n *NATSNotifier) SendInvite(ctx context.Context, msg InviteNotification) error {
	return n.publish(ctx, KindInvite, msg)
}

func (n *NATSNotifier) SendDecision(ctx context.Context, msg DecisionNotification) error {
	return n.publish(ctx, KindDecision, msg)
}

func (n *NATSNotifier) publish(ctx context.Context, kind string, payload any) error {
	return deliver(ctx, "nats", kind, payload, func(body []byte) error {
		msg := &nats.Msg{
			Subject: n.subject + "." + kind,
			Data:    body,
			Header:  make(nats.Header),
		}
		msg.Header.Set("Content-Type", "application/json")
		if err := n.conn.PublishMsg(msg); err != nil {
			return err
		}
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, flushTimeout)
			defer cancel()
		}
		return n.conn.FlushWithContext(ctx)
	})
}

// Close drains the connection when the notifier dialed it.
func (n *NATSNotifier) Close() error {
	if !n.owned {
		return nil
	}
	return n.conn.Drain()
}

// IsConnected reports the connection state for health checks.
func (n *NATSNotifier) IsConnected() bool {
	return n.conn.IsConnected()
}
