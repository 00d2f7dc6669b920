package notify

import (
	"context"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"go.uber.org/zap"
)

var _ queue.Notifier = (*LogNotifier)(nil)

// LogNotifier writes every notification to the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) NotifyMatched(_ context.Context, session queue.GameSession) {
	n.logger.Info(
		"your game is ready",
		zap.String("scope", session.Scope.String()),
		zap.String("game_id", session.ID),
		zap.Strings("players", session.Players),
		zap.Strings("tags", session.Tags),
	)
}

func (n *LogNotifier) NotifySignupExpired(_ context.Context, signup queue.Signup) {
	n.logger.Info(
		"signup expired before a game was found",
		zap.String("scope", signup.Scope.String()),
		zap.String("signup_id", signup.ID),
		zap.Strings("players", signup.Players),
	)
}

func (n *LogNotifier) NotifySessionExpired(_ context.Context, session queue.GameSession) {
	n.logger.Info(
		"game was never confirmed",
		zap.String("scope", session.Scope.String()),
		zap.String("game_id", session.ID),
		zap.Strings("players", session.Players),
	)
}
