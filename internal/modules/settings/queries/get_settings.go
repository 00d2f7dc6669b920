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

type GetSettingsQuery struct {
	CommunityID string
}

func (q GetSettingsQuery) Validate() error {
	if q.CommunityID == "" {
		return fmt.Errorf("invalid CommunityID - '%s'", q.CommunityID)
	}

	return nil
}

func HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetSettingsQuery, queue.ScopeSettings](
		r.Context(),
		GetSettingsQuery{CommunityID: chi.URLParam(r, "communityID")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetSettingsQueryHandler struct {
	settings queue.SettingsProvider
}

func NewGetSettingsQueryHandler(settings queue.SettingsProvider) *GetSettingsQueryHandler {
	return &GetSettingsQueryHandler{settings}
}

func (h *GetSettingsQueryHandler) Handle(ctx context.Context, request GetSettingsQuery) (queue.ScopeSettings, error) {
	settings, err := h.settings.Settings(ctx, request.CommunityID)
	if err != nil {
		return queue.ScopeSettings{}, core.InternalError(err)
	}

	return settings, nil
}
