package queries

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type GetSessionQuery struct {
	SessionID string
}

func (q GetSessionQuery) Validate() error {
	if q.SessionID == "" {
		return fmt.Errorf("invalid SessionID - '%s'", q.SessionID)
	}

	return nil
}

func HandleGetSession(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetSessionQuery, queue.GameSession](
		r.Context(),
		GetSessionQuery{SessionID: chi.URLParam(r, "id")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type SessionReader interface {
	Session(ctx context.Context, id string) (queue.GameSession, error)
}

// GetSessionQueryHandler answers from the live queue first and falls back to the
// archive for sessions the sweeper has already reclaimed.
type GetSessionQueryHandler struct {
	live    SessionReader
	archive SessionReader
}

func NewGetSessionQueryHandler(live SessionReader, archive SessionReader) *GetSessionQueryHandler {
	return &GetSessionQueryHandler{live: live, archive: archive}
}

func (h *GetSessionQueryHandler) Handle(
	ctx context.Context,
	request GetSessionQuery,
) (queue.GameSession, error) {
	session, err := h.live.Session(ctx, request.SessionID)
	if err == nil {
		return session, nil
	}

	if !errors.Is(err, queue.ErrNotFound) || h.archive == nil {
		return queue.GameSession{}, queue.CommandError(err)
	}

	session, err = h.archive.Session(ctx, request.SessionID)
	if err != nil {
		return queue.GameSession{}, queue.CommandError(err)
	}

	return session, nil
}
