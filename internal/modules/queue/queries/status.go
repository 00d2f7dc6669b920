package queries

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type GetStatusQuery struct {
	CommunityID string
	ChannelID   string
}

func (q GetStatusQuery) Validate() error {
	if q.CommunityID == "" {
		return fmt.Errorf("invalid CommunityID - '%s'", q.CommunityID)
	}

	return nil
}

func HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetStatusQuery, queue.Status](
		r.Context(),
		GetStatusQuery{
			CommunityID: chi.URLParam(r, "communityID"),
			ChannelID:   r.URL.Query().Get("channel"),
		},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type StatusReader interface {
	ResolveScope(ctx context.Context, communityID, channelID string) (queue.ScopeKey, error)
	Status(ctx context.Context, scope queue.ScopeKey) queue.Status
}

type GetStatusQueryHandler struct {
	queue StatusReader
}

func NewGetStatusQueryHandler(q StatusReader) *GetStatusQueryHandler {
	return &GetStatusQueryHandler{q}
}

func (h *GetStatusQueryHandler) Handle(ctx context.Context, request GetStatusQuery) (queue.Status, error) {
	scope, err := h.queue.ResolveScope(ctx, request.CommunityID, request.ChannelID)
	if err != nil {
		return queue.Status{}, queue.CommandError(err)
	}

	return h.queue.Status(ctx, scope), nil
}
