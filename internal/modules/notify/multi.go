package notify

import (
	"context"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
)

var _ queue.Notifier = Multi(nil)

// Multi fans every notification out to each notifier in order.
type Multi []queue.Notifier

func (m Multi) NotifyMatched(ctx context.Context, session queue.GameSession) {
	for _, n := range m {
		n.NotifyMatched(ctx, session)
	}
}

func (m Multi) NotifySignupExpired(ctx context.Context, signup queue.Signup) {
	for _, n := range m {
		n.NotifySignupExpired(ctx, signup)
	}
}

func (m Multi) NotifySessionExpired(ctx context.Context, session queue.GameSession) {
	for _, n := range m {
		n.NotifySessionExpired(ctx, session)
	}
}
