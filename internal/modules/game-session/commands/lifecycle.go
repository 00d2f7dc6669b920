package commands

import (
	"context"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
)

// SessionLifecycle moves matched game sessions into a terminal state.
type SessionLifecycle interface {
	Confirm(ctx context.Context, gameID string) (queue.GameSession, error)
	Cancel(ctx context.Context, gameID string) (queue.GameSession, error)
}
