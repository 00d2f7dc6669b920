package commands

import (
	"context"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
)

// Queue is the part of the queue service the signup commands drive.
type Queue interface {
	ResolveScope(ctx context.Context, communityID, channelID string) (queue.ScopeKey, error)
	Enqueue(ctx context.Context, scope queue.ScopeKey, req queue.SignupRequest) (queue.EnqueueResult, error)
	Leave(ctx context.Context, scope queue.ScopeKey, player string) (bool, error)
	Tick(ctx context.Context, scope queue.ScopeKey) ([]queue.GameSession, error)
}
