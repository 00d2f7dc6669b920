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

type LeaveCommand struct {
	CommunityID string `json:"community_id"`
	ChannelID   string `json:"channel_id"`
	PlayerID    string `json:"player_id"`
}

func (c LeaveCommand) Validate() error {
	var communityErr, playerErr error

	if c.CommunityID == "" {
		communityErr = fmt.Errorf("invalid CommunityID - '%s'", c.CommunityID)
	}

	if c.PlayerID == "" {
		playerErr = fmt.Errorf("invalid PlayerID - '%s'", c.PlayerID)
	}

	return core.Validate(communityErr, playerErr)
}

type LeaveResponse struct {
	Removed bool `json:"removed"`
}

func HandleLeave(w http.ResponseWriter, r *http.Request) {
	command := LeaveCommand{
		CommunityID: chi.URLParam(r, "communityID"),
		ChannelID:   r.URL.Query().Get("channel"),
		PlayerID:    chi.URLParam(r, "playerID"),
	}

	response, err := mediator.Send[LeaveCommand, LeaveResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type LeaveCommandHandler struct {
	queue Queue
}

func NewLeaveCommandHandler(q Queue) *LeaveCommandHandler {
	return &LeaveCommandHandler{q}
}

func (h *LeaveCommandHandler) Handle(ctx context.Context, request LeaveCommand) (LeaveResponse, error) {
	scope, err := h.queue.ResolveScope(ctx, request.CommunityID, request.ChannelID)
	if err != nil {
		return LeaveResponse{}, queue.CommandError(err)
	}

	removed, err := h.queue.Leave(ctx, scope, request.PlayerID)
	if err != nil {
		return LeaveResponse{}, queue.CommandError(err)
	}

	return LeaveResponse{Removed: removed}, nil
}
