package commands

import (
	"context"
	"errors"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/event/domain"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
)

// EventQueue is the part of the queue service an event import drives.
type EventQueue interface {
	ResolveScope(ctx context.Context, communityID, channelID string) (queue.ScopeKey, error)
	Enqueue(ctx context.Context, scope queue.ScopeKey, req queue.SignupRequest) (queue.EnqueueResult, error)
	Leave(ctx context.Context, scope queue.ScopeKey, player string) (bool, error)
	Session(ctx context.Context, gameID string) (queue.GameSession, error)
	SessionForSignup(ctx context.Context, signupID string) (queue.GameSession, error)
	Confirm(ctx context.Context, gameID string) (queue.GameSession, error)
	Cancel(ctx context.Context, gameID string) (queue.GameSession, error)
}

func commandError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidRoster):
		return core.BadRequest(err)
	case errors.Is(err, domain.ErrEventNotFound):
		return core.NotFound(err)
	case errors.Is(err, domain.ErrEventStarted):
		return core.Conflict(err)
	default:
		return queue.CommandError(err)
	}
}
