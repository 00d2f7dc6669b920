package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"

	"github.com/eskrenkovic/tql"
	"github.com/lib/pq"
)

type EventStore interface {
	SaveEvent(ctx context.Context, event Event) error
	Event(ctx context.Context, id string) (Event, error)
	// Begin marks the event started, failing with ErrEventStarted if it already was.
	Begin(ctx context.Context, id string, now time.Time) (Event, error)
}

var (
	_ EventStore = (*PostgresEventStore)(nil)
	_ EventStore = (*MemoryEventStore)(nil)
)

type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db}
}

func (s *PostgresEventStore) SaveEvent(ctx context.Context, event Event) error {
	const stmt = `
		INSERT INTO queue_event
			(id, community_id, channel_id, size, tags, signup_ids, game_ids, started, created_at, started_at)
		VALUES
			(:id, :community_id, :channel_id, :size, :tags, :signup_ids, :game_ids, :started, :created_at, :started_at);`

	_, err := tql.Exec(ctx, s.db, stmt, map[string]any{
		"id":           event.ID,
		"community_id": event.Scope.CommunityID,
		"channel_id":   event.Scope.ChannelID,
		"size":         event.Size,
		"tags":         pq.StringArray(nonNil(event.Tags)),
		"signup_ids":   pq.StringArray(nonNil(event.SignupIDs)),
		"game_ids":     pq.StringArray(nonNil(event.GameIDs)),
		"started":      event.Started,
		"created_at":   event.CreatedAt,
		"started_at":   event.StartedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.ID, err)
	}

	return nil
}

const selectEvent = `
	SELECT
		id, community_id, channel_id, size, tags, signup_ids, game_ids, started, created_at, started_at
	FROM
		queue_event
	WHERE
		id = $1`

func (s *PostgresEventStore) Event(ctx context.Context, id string) (Event, error) {
	row, err := tql.QueryFirst[QueueEvent](ctx, s.db, selectEvent+";", id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Event{}, fmt.Errorf("event %s: %w", id, ErrEventNotFound)
	case err != nil:
		return Event{}, err
	}

	return row.Event(), nil
}

func (s *PostgresEventStore) Begin(ctx context.Context, id string, now time.Time) (Event, error) {
	var event Event

	err := core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		row, err := tql.QueryFirst[QueueEvent](ctx, tx, selectEvent+" FOR UPDATE;", id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("event %s: %w", id, ErrEventNotFound)
		case err != nil:
			return err
		}

		if row.Started {
			return fmt.Errorf("event %s: %w", id, ErrEventStarted)
		}

		const stmt = `
			UPDATE queue_event
			SET started = true, started_at = :started_at
			WHERE id = :id;`

		if _, err := tql.Exec(ctx, tx, stmt, map[string]any{"id": id, "started_at": now}); err != nil {
			return err
		}

		row.Started = true
		row.StartedAt = &now
		event = row.Event()

		return nil
	})

	return event, err
}

// MemoryEventStore keeps events in process. It backs tests and runs without a database.
type MemoryEventStore struct {
	mu     sync.Mutex
	events map[string]Event
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: make(map[string]Event)}
}

func (s *MemoryEventStore) SaveEvent(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[event.ID] = event
	return nil
}

func (s *MemoryEventStore) Event(_ context.Context, id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return Event{}, fmt.Errorf("event %s: %w", id, ErrEventNotFound)
	}
	return event, nil
}

func (s *MemoryEventStore) Begin(_ context.Context, id string, now time.Time) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return Event{}, fmt.Errorf("event %s: %w", id, ErrEventNotFound)
	}
	if event.Started {
		return Event{}, fmt.Errorf("event %s: %w", id, ErrEventStarted)
	}

	event.Started = true
	event.StartedAt = &now
	s.events[id] = event

	return event, nil
}
