package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
	"github.com/eskrenkovic/spellqueue/internal/modules/tests"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type countingNotifier struct {
	calls *[]string
	name  string
}

func (c countingNotifier) NotifyMatched(context.Context, queue.GameSession) {
	*c.calls = append(*c.calls, c.name+":matched")
}

func (c countingNotifier) NotifySignupExpired(context.Context, queue.Signup) {
	*c.calls = append(*c.calls, c.name+":signup")
}

func (c countingNotifier) NotifySessionExpired(context.Context, queue.GameSession) {
	*c.calls = append(*c.calls, c.name+":session")
}

func testSession() queue.GameSession {
	return queue.GameSession{
		ID:      "game-1",
		Scope:   queue.ScopeKey{CommunityID: "guild", ChannelID: "lfg"},
		Size:    2,
		Players: []string{"alice", "bob"},
		State:   queue.StateMatched,
	}
}

func Test_Multi_Fans_Out_In_Order(t *testing.T) {
	// Arrange
	var calls []string
	m := Multi{
		countingNotifier{calls: &calls, name: "first"},
		countingNotifier{calls: &calls, name: "second"},
	}

	// Act
	m.NotifyMatched(context.Background(), testSession())
	m.NotifySignupExpired(context.Background(), queue.Signup{})

	// Assert
	require.Equal(t, []string{"first:matched", "second:matched", "first:signup", "second:signup"}, calls)
}

func Test_LogNotifier_Logs_Match(t *testing.T) {
	// Arrange
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	// Act
	n.NotifyMatched(context.Background(), testSession())

	// Assert
	entries := logs.FilterField(zap.String("game_id", "game-1")).All()
	require.Len(t, entries, 1)
	require.Equal(t, "your game is ready", entries[0].Message)
}

func Test_RedisNotifier_Publishes_Match_Event(t *testing.T) {
	// Arrange
	opts, err := redis.ParseURL(tests.StartRedis(t))
	require.NoError(t, err)

	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()

	sub := client.Subscribe(ctx, "spellqueue.test")
	defer sub.Close()

	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	n := NewRedisNotifier(client, "spellqueue.test", zaptest.NewLogger(t))

	// Act
	n.NotifyMatched(ctx, testSession())

	// Assert
	select {
	case msg := <-sub.Channel():
		var event Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		require.Equal(t, EventGameMatched, event.Type)
		require.Equal(t, "guild", event.Scope.CommunityID)
		require.NotNil(t, event.Session)
		require.Equal(t, []string{"alice", "bob"}, event.Session.Players)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}
