package queue

import "errors"

var (
	ErrAlreadyQueued         = errors.New("player already queued in scope")
	ErrInvalidTagCount       = errors.New("too many tags")
	ErrInvalidTag            = errors.New("invalid tag")
	ErrInvalidSize           = errors.New("invalid game size")
	ErrInvalidPlayers        = errors.New("invalid players")
	ErrInvalidPowerLevel     = errors.New("invalid power level")
	ErrFriendlyQueueDisabled = errors.New("friendly queueing is disabled for this community")
	ErrChannelRequired       = errors.New("channel is required")
	ErrNotFound              = errors.New("game session not found")
	ErrInvalidState          = errors.New("invalid game session state")
)

// IsValidationError reports whether err was produced by request validation,
// as opposed to a conflict with the current queue state.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidTagCount,
		ErrInvalidTag,
		ErrInvalidSize,
		ErrInvalidPlayers,
		ErrInvalidPowerLevel,
		ErrFriendlyQueueDisabled,
		ErrChannelRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
