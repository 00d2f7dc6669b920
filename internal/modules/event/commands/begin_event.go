package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/event/domain"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

type BeginEventCommand struct {
	EventID string `json:"event_id"`
}

func (c BeginEventCommand) Validate() error {
	if c.EventID == "" {
		return fmt.Errorf("invalid EventID - '%s'", c.EventID)
	}

	return nil
}

type BeginEventResponse struct {
	Event   domain.Event        `json:"event"`
	Started []queue.GameSession `json:"started"`
}

func HandleBeginEvent(w http.ResponseWriter, r *http.Request) {
	command := BeginEventCommand{EventID: chi.URLParam(r, "id")}

	response, err := mediator.Send[BeginEventCommand, BeginEventResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type BeginEventCommandHandler struct {
	queue  EventQueue
	events domain.EventStore
}

func NewBeginEventCommandHandler(q EventQueue, events domain.EventStore) *BeginEventCommandHandler {
	return &BeginEventCommandHandler{queue: q, events: events}
}

func (h *BeginEventCommandHandler) Handle(ctx context.Context, request BeginEventCommand) (BeginEventResponse, error) {
	event, err := h.events.Begin(ctx, request.EventID, time.Now().UTC())
	if err != nil {
		return BeginEventResponse{}, commandError(err)
	}

	pending := core.Filter(h.sessions(ctx, event), func(session queue.GameSession) bool {
		return !session.State.Terminal()
	})

	started := make([]queue.GameSession, 0, len(pending))
	for _, candidate := range pending {
		session, err := h.queue.Confirm(ctx, candidate.ID)
		switch {
		case errors.Is(err, queue.ErrInvalidState), errors.Is(err, queue.ErrNotFound):
			// settled between the lookup and the confirm
			continue
		case err != nil:
			return BeginEventResponse{}, commandError(err)
		}

		started = append(started, session)
	}

	core.Logger(ctx).Info(
		"event started",
		zap.String("event_id", event.ID),
		zap.Int("games_started", len(started)),
	)

	return BeginEventResponse{Event: event, Started: started}, nil
}

// sessions collects the live games holding any of the event's signups, including
// games formed after the import when a partial row matched later arrivals.
func (h *BeginEventCommandHandler) sessions(ctx context.Context, event domain.Event) []queue.GameSession {
	seen := make(map[string]struct{})
	var sessions []queue.GameSession

	add := func(session queue.GameSession, err error) {
		if err != nil {
			return
		}
		if _, ok := seen[session.ID]; ok {
			return
		}
		seen[session.ID] = struct{}{}
		sessions = append(sessions, session)
	}

	for _, gameID := range event.GameIDs {
		add(h.queue.Session(ctx, gameID))
	}

	for _, signupID := range event.SignupIDs {
		add(h.queue.SessionForSignup(ctx, signupID))
	}

	return sessions
}
