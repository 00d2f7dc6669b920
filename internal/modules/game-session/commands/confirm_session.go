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

type ConfirmSessionCommand struct {
	SessionID string `json:"session_id"`
}

func (c ConfirmSessionCommand) Validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("invalid SessionID - '%s'", c.SessionID)
	}

	return nil
}

func HandleConfirmSession(w http.ResponseWriter, r *http.Request) {
	command := ConfirmSessionCommand{SessionID: chi.URLParam(r, "id")}

	session, err := mediator.Send[ConfirmSessionCommand, queue.GameSession](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, session)
}

type ConfirmSessionCommandHandler struct {
	sessions SessionLifecycle
}

func NewConfirmSessionCommandHandler(sessions SessionLifecycle) *ConfirmSessionCommandHandler {
	return &ConfirmSessionCommandHandler{sessions}
}

func (h *ConfirmSessionCommandHandler) Handle(
	ctx context.Context,
	request ConfirmSessionCommand,
) (queue.GameSession, error) {
	session, err := h.sessions.Confirm(ctx, request.SessionID)
	if err != nil {
		return queue.GameSession{}, queue.CommandError(err)
	}

	return session, nil
}
