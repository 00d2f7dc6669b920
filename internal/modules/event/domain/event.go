package domain

import (
	"errors"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/lib/pq"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventStarted  = errors.New("event already started")
)

// Event is a batch of signups imported together. GameIDs holds the sessions formed
// while the rows were being enqueued.
type Event struct {
	ID        string         `json:"id"`
	Scope     queue.ScopeKey `json:"scope"`
	Size      int            `json:"size"`
	Tags      []string       `json:"tags"`
	SignupIDs []string       `json:"signup_ids"`
	GameIDs   []string       `json:"game_ids"`
	Started   bool           `json:"started"`
	CreatedAt time.Time      `json:"created_at"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
}

// QueueEvent is the queue_event row.
type QueueEvent struct {
	ID          string         `db:"id"`
	CommunityID string         `db:"community_id"`
	ChannelID   string         `db:"channel_id"`
	Size        int            `db:"size"`
	Tags        pq.StringArray `db:"tags"`
	SignupIDs   pq.StringArray `db:"signup_ids"`
	GameIDs     pq.StringArray `db:"game_ids"`
	Started     bool           `db:"started"`
	CreatedAt   time.Time      `db:"created_at"`
	StartedAt   *time.Time     `db:"started_at"`
}

func (e QueueEvent) Event() Event {
	event := Event{
		ID: e.ID,
		Scope: queue.ScopeKey{
			CommunityID: e.CommunityID,
			ChannelID:   e.ChannelID,
		},
		Size:      e.Size,
		Tags:      nonNil(e.Tags),
		SignupIDs: nonNil(e.SignupIDs),
		GameIDs:   nonNil(e.GameIDs),
		Started:   e.Started,
		CreatedAt: e.CreatedAt.UTC(),
	}

	if e.StartedAt != nil {
		startedAt := e.StartedAt.UTC()
		event.StartedAt = &startedAt
	}

	return event
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
