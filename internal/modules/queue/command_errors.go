package queue

import (
	"errors"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
)

// CommandError maps queue errors onto the status codes the HTTP edge reports.
func CommandError(err error) error {
	var commandErr core.CommandError

	switch {
	case err == nil:
		return nil
	case errors.As(err, &commandErr):
		return commandErr
	case IsValidationError(err):
		return core.BadRequest(err)
	case errors.Is(err, ErrNotFound):
		return core.NotFound(err)
	case errors.Is(err, ErrAlreadyQueued), errors.Is(err, ErrInvalidState):
		return core.Conflict(err)
	default:
		return core.InternalError(err)
	}
}
