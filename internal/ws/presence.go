package ws

import (
	"context"

	"go.uber.org/zap"

	"gossip/internal/domain"
)

// Notifier propagates presence transitions. Every register and unregister
// flips the persisted online flag and broadcasts a "users" signal to all
// connected sessions, telling clients to re-fetch the user list. This is
// push invalidation, not a delta push: O(connected clients) traffic per
// transition, fine at single-instance scale.
type Notifier struct {
	registry *Registry
	users    domain.UserRepository
	log      *zap.SugaredLogger
}

func NewNotifier(registry *Registry, users domain.UserRepository, log *zap.SugaredLogger) *Notifier {
	return &Notifier{
		registry: registry,
		users:    users,
		log:      log,
	}
}

func (n *Notifier) UserOnline(ctx context.Context, userID int64) {
	if err := n.users.SetOnlineStatus(ctx, userID, true); err != nil {
		n.log.Errorw("set online status", "user_id", userID, "err", err)
	}
	n.broadcast()
}

func (n *Notifier) UserOffline(ctx context.Context, userID int64) {
	if err := n.users.SetOnlineStatus(ctx, userID, false); err != nil {
		n.log.Errorw("set offline status", "user_id", userID, "err", err)
	}
	n.broadcast()
}

func (n *Notifier) broadcast() {
	for _, s := range n.registry.Sessions() {
		if err := writeEvent(s, EventUsers, nil); err != nil {
			// session died mid-broadcast; its own handler will unregister it
			n.log.Debugw("presence push failed", "session_id", s.ID(), "err", err)
		}
	}
}
