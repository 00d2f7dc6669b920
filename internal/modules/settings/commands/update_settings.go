package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
	"github.com/eskrenkovic/spellqueue/internal/modules/settings/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type UpdateSettingsCommand struct {
	CommunityID          string  `json:"community_id"`
	ExpiryMinutes        int     `json:"expiry_minutes"`
	Granularity          string  `json:"granularity"`
	PowerTolerance       float64 `json:"power_tolerance"`
	FriendlyQueueEnabled bool    `json:"friendly_queue_enabled"`
}

func (c UpdateSettingsCommand) settings() queue.ScopeSettings {
	return queue.ScopeSettings{
		ExpiryMinutes:        c.ExpiryMinutes,
		Granularity:          queue.Granularity(c.Granularity),
		PowerTolerance:       c.PowerTolerance,
		FriendlyQueueEnabled: c.FriendlyQueueEnabled,
	}
}

func (c UpdateSettingsCommand) Validate() error {
	var communityErr error
	if c.CommunityID == "" {
		communityErr = fmt.Errorf("invalid CommunityID - '%s'", c.CommunityID)
	}

	return core.Validate(communityErr, c.settings().Validate())
}

func HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[UpdateSettingsCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	command.CommunityID = chi.URLParam(r, "communityID")

	response, err := mediator.Send[UpdateSettingsCommand, queue.ScopeSettings](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type UpdateSettingsCommandHandler struct {
	store domain.SettingsStore
}

func NewUpdateSettingsCommandHandler(store domain.SettingsStore) *UpdateSettingsCommandHandler {
	return &UpdateSettingsCommandHandler{store}
}

func (h *UpdateSettingsCommandHandler) Handle(
	ctx context.Context,
	request UpdateSettingsCommand,
) (queue.ScopeSettings, error) {
	settings := request.settings()

	if err := h.store.SaveSettings(ctx, request.CommunityID, settings); err != nil {
		return queue.ScopeSettings{}, core.InternalError(err)
	}

	return settings, nil
}
