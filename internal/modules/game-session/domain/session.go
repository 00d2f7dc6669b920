package domain

import (
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/lib/pq"
)

// Session is the persisted audit record of a game session.
type Session struct {
	ID          string         `db:"id"`
	CommunityID string         `db:"community_id"`
	ChannelID   string         `db:"channel_id"`
	Size        int            `db:"size"`
	Tags        pq.StringArray `db:"tags"`
	PowerLevel  *float64       `db:"power_level"`
	Players     pq.StringArray `db:"players"`
	SignupIDs   pq.StringArray `db:"signup_ids"`
	State       string         `db:"state"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func FromGameSession(g queue.GameSession) Session {
	return Session{
		ID:          g.ID,
		CommunityID: g.Scope.CommunityID,
		ChannelID:   g.Scope.ChannelID,
		Size:        g.Size,
		Tags:        pq.StringArray(nonNil(g.Tags)),
		PowerLevel:  g.PowerLevel,
		Players:     pq.StringArray(nonNil(g.Players)),
		SignupIDs:   pq.StringArray(nonNil(g.SignupIDs)),
		State:       string(g.State),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func (s Session) GameSession() queue.GameSession {
	return queue.GameSession{
		ID: s.ID,
		Scope: queue.ScopeKey{
			CommunityID: s.CommunityID,
			ChannelID:   s.ChannelID,
		},
		Size:       s.Size,
		Tags:       nonNil(s.Tags),
		PowerLevel: s.PowerLevel,
		Players:    nonNil(s.Players),
		SignupIDs:  nonNil(s.SignupIDs),
		State:      queue.SessionState(s.State),
		CreatedAt:  s.CreatedAt.UTC(),
		UpdatedAt:  s.UpdatedAt.UTC(),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
