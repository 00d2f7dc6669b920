package domain

import (
	"context"
	"testing"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
	"github.com/eskrenkovic/spellqueue/internal/modules/tests"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newEvent() Event {
	return Event{
		ID:        uuid.NewString(),
		Scope:     queue.ScopeKey{CommunityID: "guild", ChannelID: "lfg"},
		Size:      4,
		Tags:      []string{"cedh"},
		SignupIDs: []string{"s1", "s2"},
		GameIDs:   []string{"g1"},
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testBeginOnce(t *testing.T, store EventStore) {
	t.Helper()

	// Arrange
	ctx := context.Background()
	event := newEvent()
	require.NoError(t, store.SaveEvent(ctx, event))

	startedAt := event.CreatedAt.Add(time.Hour)

	// Act
	started, err := store.Begin(ctx, event.ID, startedAt)
	_, secondErr := store.Begin(ctx, event.ID, startedAt)

	// Assert
	require.NoError(t, err)
	require.True(t, started.Started)
	require.True(t, startedAt.Equal(*started.StartedAt))
	require.ErrorIs(t, secondErr, ErrEventStarted)

	loaded, err := store.Event(ctx, event.ID)
	require.NoError(t, err)
	require.True(t, loaded.Started)
	require.Equal(t, event.Scope, loaded.Scope)
	require.Equal(t, event.SignupIDs, loaded.SignupIDs)
	require.Equal(t, event.GameIDs, loaded.GameIDs)
}

func testMissingEvent(t *testing.T, store EventStore) {
	t.Helper()

	// Act
	_, getErr := store.Event(context.Background(), uuid.NewString())
	_, beginErr := store.Begin(context.Background(), uuid.NewString(), time.Now())

	// Assert
	require.ErrorIs(t, getErr, ErrEventNotFound)
	require.ErrorIs(t, beginErr, ErrEventNotFound)
}

func Test_MemoryEventStore_Begins_Once(t *testing.T) {
	testBeginOnce(t, NewMemoryEventStore())
}

func Test_MemoryEventStore_Returns_Not_Found(t *testing.T) {
	testMissingEvent(t, NewMemoryEventStore())
}

func Test_PostgresEventStore_Begins_Once(t *testing.T) {
	testBeginOnce(t, NewPostgresEventStore(tests.StartMigratedPostgres(t)))
}

func Test_PostgresEventStore_Returns_Not_Found(t *testing.T) {
	testMissingEvent(t, NewPostgresEventStore(tests.StartMigratedPostgres(t)))
}
