package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type EnqueueCommand struct {
	CommunityID string   `json:"community_id"`
	ChannelID   string   `json:"channel_id"`
	Players     []string `json:"players"`
	Size        int      `json:"size"`
	Tags        []string `json:"tags"`
	PowerLevel  *float64 `json:"power_level,omitempty"`
}

func (c EnqueueCommand) Validate() error {
	var communityErr, playersErr error

	if c.CommunityID == "" {
		communityErr = fmt.Errorf("invalid CommunityID - '%s'", c.CommunityID)
	}

	if len(c.Players) == 0 {
		playersErr = fmt.Errorf("invalid Players - at least one player is required")
	}

	return core.Validate(communityErr, playersErr)
}

func HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[EnqueueCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	command.CommunityID = chi.URLParam(r, "communityID")

	response, err := mediator.Send[EnqueueCommand, queue.EnqueueResult](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := path.Join(
		"/communities",
		url.PathEscape(command.CommunityID),
		"signups",
		url.PathEscape(response.Signup.Players[0]),
	)
	core.WriteCreated(w, r, location, response)
}

type EnqueueCommandHandler struct {
	queue Queue
}

func NewEnqueueCommandHandler(q Queue) *EnqueueCommandHandler {
	return &EnqueueCommandHandler{q}
}

func (h *EnqueueCommandHandler) Handle(
	ctx context.Context,
	request EnqueueCommand,
) (queue.EnqueueResult, error) {
	scope, err := h.queue.ResolveScope(ctx, request.CommunityID, request.ChannelID)
	if err != nil {
		return queue.EnqueueResult{}, queue.CommandError(err)
	}

	result, err := h.queue.Enqueue(ctx, scope, queue.SignupRequest{
		Players:    request.Players,
		Size:       request.Size,
		Tags:       request.Tags,
		PowerLevel: request.PowerLevel,
	})
	if err != nil {
		return queue.EnqueueResult{}, queue.CommandError(err)
	}

	return result, nil
}
