package platformtest

import (
	"context"
	"sync"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/notify"
)

// Notifier records notifications instead of sending them.
type Notifier struct {
	mu        sync.Mutex
	invites   []notify.InviteNotification
	decisions []notify.DecisionNotification

	// Err, when set, is returned after recording.
	Err error
}

func (n *Notifier) SendInvite(_ context.Context, msg notify.InviteNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invites = append(n.invites, msg)
	return n.Err
}

func (n *Notifier) SendDecision(_ context.Context, msg notify.DecisionNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, msg)
	return n.Err
}

// Invites returns the recorded invite notifications.
func (n *Notifier) Invites() []notify.InviteNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.InviteNotification(nil), n.invites...)
}

// Decisions returns the recorded decision notifications.
func (n *Notifier) Decisions() []notify.DecisionNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.DecisionNotification(nil), n.decisions...)
}
