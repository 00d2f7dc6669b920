package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

var _ queue.Notifier = (*RedisNotifier)(nil)

// RedisNotifier publishes notifications as JSON events on a pub/sub channel so that
// chat front-ends can relay them. Publish failures are logged and dropped.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
	now     func() time.Time
}

func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		logger:  logger.Named("notify.redis"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (n *RedisNotifier) NotifyMatched(ctx context.Context, session queue.GameSession) {
	n.publish(ctx, matchedEvent(session, n.now()))
}

func (n *RedisNotifier) NotifySignupExpired(ctx context.Context, signup queue.Signup) {
	n.publish(ctx, signupExpiredEvent(signup, n.now()))
}

func (n *RedisNotifier) NotifySessionExpired(ctx context.Context, session queue.GameSession) {
	n.publish(ctx, sessionExpiredEvent(session, n.now()))
}

func (n *RedisNotifier) publish(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to serialize event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	// Delivery must not hang on a cancelled request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		n.logger.Error(
			"failed to publish event",
			zap.String("type", string(event.Type)),
			zap.String("channel", n.channel),
			zap.Error(err),
		)
	}
}
