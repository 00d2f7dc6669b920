package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/event/domain"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRosterBytes = 1 << 20

type ImportEventCommand struct {
	CommunityID string        `json:"community_id"`
	ChannelID   string        `json:"channel_id"`
	Tags        []string      `json:"tags"`
	Roster      domain.Roster `json:"roster"`
}

func (c ImportEventCommand) Validate() error {
	var communityErr error
	if c.CommunityID == "" {
		communityErr = fmt.Errorf("invalid CommunityID - '%s'", c.CommunityID)
	}

	return core.Validate(communityErr, c.Roster.Validate())
}

func HandleImportEvent(w http.ResponseWriter, r *http.Request) {
	roster, err := domain.ParseRoster(http.MaxBytesReader(w, r.Body, maxRosterBytes))
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	command := ImportEventCommand{
		CommunityID: chi.URLParam(r, "communityID"),
		ChannelID:   r.URL.Query().Get("channel"),
		Tags:        splitTags(r.URL.Query().Get("tags")),
		Roster:      roster,
	}

	event, err := mediator.Send[ImportEventCommand, domain.Event](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteCreated(w, r, path.Join("/events", url.PathEscape(event.ID)), event)
}

func splitTags(raw string) []string {
	return core.Filter(
		core.Map(strings.Split(raw, ","), strings.TrimSpace),
		func(tag string) bool { return tag != "" },
	)
}

type ImportEventCommandHandler struct {
	queue  EventQueue
	events domain.EventStore
}

func NewImportEventCommandHandler(q EventQueue, events domain.EventStore) *ImportEventCommandHandler {
	return &ImportEventCommandHandler{queue: q, events: events}
}

func (h *ImportEventCommandHandler) Handle(ctx context.Context, request ImportEventCommand) (domain.Event, error) {
	scope, err := h.queue.ResolveScope(ctx, request.CommunityID, request.ChannelID)
	if err != nil {
		return domain.Event{}, commandError(err)
	}

	event := domain.Event{
		ID:        uuid.NewString(),
		Scope:     scope,
		Size:      request.Roster.Size,
		Tags:      request.Tags,
		SignupIDs: make([]string, 0, len(request.Roster.Rows)),
		GameIDs:   []string{},
		CreatedAt: time.Now().UTC(),
	}

	var enqueued []queue.Signup

	for i, row := range request.Roster.Rows {
		result, err := h.queue.Enqueue(ctx, scope, queue.SignupRequest{
			Players: row,
			Size:    request.Roster.Size,
			Tags:    request.Tags,
		})
		if err != nil {
			h.rollback(ctx, scope, enqueued, event.GameIDs)
			return domain.Event{}, commandError(fmt.Errorf("row %d: %w", i+1, err))
		}

		enqueued = append(enqueued, result.Signup)
		event.SignupIDs = append(event.SignupIDs, result.Signup.ID)
		for _, game := range result.Matched {
			event.GameIDs = append(event.GameIDs, game.ID)
		}
	}

	if err := h.events.SaveEvent(ctx, event); err != nil {
		h.rollback(ctx, scope, enqueued, event.GameIDs)
		return domain.Event{}, core.InternalError(err)
	}

	core.Logger(ctx).Info(
		"event imported",
		zap.String("event_id", event.ID),
		zap.String("scope", scope.String()),
		zap.Int("signups", len(event.SignupIDs)),
		zap.Int("games", len(event.GameIDs)),
	)

	return event, nil
}

// rollback withdraws a partially imported event: pending signups leave the pool and
// games formed during the import are cancelled.
func (h *ImportEventCommandHandler) rollback(
	ctx context.Context,
	scope queue.ScopeKey,
	signups []queue.Signup,
	gameIDs []string,
) {
	logger := core.Logger(ctx)

	for _, signup := range signups {
		if _, err := h.queue.Leave(ctx, scope, signup.Players[0]); err != nil {
			logger.Error("failed to withdraw imported signup", zap.String("signup_id", signup.ID), zap.Error(err))
		}
	}

	for _, gameID := range gameIDs {
		if _, err := h.queue.Cancel(ctx, gameID); err != nil {
			logger.Error("failed to cancel imported game", zap.String("game_id", gameID), zap.Error(err))
		}
	}
}
