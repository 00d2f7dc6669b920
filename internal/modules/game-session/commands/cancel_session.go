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

type CancelSessionCommand struct {
	SessionID string `json:"session_id"`
}

func (c CancelSessionCommand) Validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("invalid SessionID - '%s'", c.SessionID)
	}

	return nil
}

func HandleCancelSession(w http.ResponseWriter, r *http.Request) {
	command := CancelSessionCommand{SessionID: chi.URLParam(r, "id")}

	session, err := mediator.Send[CancelSessionCommand, queue.GameSession](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, session)
}

type CancelSessionCommandHandler struct {
	sessions SessionLifecycle
}

func NewCancelSessionCommandHandler(sessions SessionLifecycle) *CancelSessionCommandHandler {
	return &CancelSessionCommandHandler{sessions}
}

// Handle cancels a matched game; its players may queue again right away.
func (h *CancelSessionCommandHandler) Handle(
	ctx context.Context,
	request CancelSessionCommand,
) (queue.GameSession, error) {
	session, err := h.sessions.Cancel(ctx, request.SessionID)
	if err != nil {
		return queue.GameSession{}, queue.CommandError(err)
	}

	return session, nil
}
