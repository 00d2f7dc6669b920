package queries

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/event/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type GetEventQuery struct {
	EventID string
}

func (q GetEventQuery) Validate() error {
	if q.EventID == "" {
		return fmt.Errorf("invalid EventID - '%s'", q.EventID)
	}

	return nil
}

func HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetEventQuery, domain.Event](
		r.Context(),
		GetEventQuery{EventID: chi.URLParam(r, "id")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type EventReader interface {
	Event(ctx context.Context, id string) (domain.Event, error)
}

type GetEventQueryHandler struct {
	events EventReader
}

func NewGetEventQueryHandler(events EventReader) *GetEventQueryHandler {
	return &GetEventQueryHandler{events}
}

func (h *GetEventQueryHandler) Handle(ctx context.Context, request GetEventQuery) (domain.Event, error) {
	event, err := h.events.Event(ctx, request.EventID)
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return domain.Event{}, core.NotFound(err)
	case err != nil:
		return domain.Event{}, core.InternalError(err)
	}

	return event, nil
}
