package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type TickCommand struct {
	CommunityID string `json:"community_id"`
	ChannelID   string `json:"channel_id"`
}

func (c TickCommand) Validate() error {
	if c.CommunityID == "" {
		return fmt.Errorf("invalid CommunityID - '%s'", c.CommunityID)
	}

	return nil
}

type TickResponse struct {
	Matched []queue.GameSession `json:"matched"`
}

func HandleTick(w http.ResponseWriter, r *http.Request) {
	command := TickCommand{
		CommunityID: chi.URLParam(r, "communityID"),
		ChannelID:   r.URL.Query().Get("channel"),
	}

	response, err := mediator.Send[TickCommand, TickResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type TickCommandHandler struct {
	queue Queue
}

func NewTickCommandHandler(q Queue) *TickCommandHandler {
	return &TickCommandHandler{q}
}

func (h *TickCommandHandler) Handle(ctx context.Context, request TickCommand) (TickResponse, error) {
	scope, err := h.queue.ResolveScope(ctx, request.CommunityID, request.ChannelID)
	if err != nil {
		return TickResponse{}, queue.CommandError(err)
	}

	matched, err := h.queue.Tick(ctx, scope)
	if err != nil {
		return TickResponse{}, queue.CommandError(err)
	}

	if matched == nil {
		matched = []queue.GameSession{}
	}

	return TickResponse{Matched: matched}, nil
}
