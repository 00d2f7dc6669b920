package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/tql"
)

var _ queue.SessionStore = (*SessionRepository)(nil)

// SessionRepository archives every game session state change in Postgres.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db}
}

func (r *SessionRepository) SaveSession(ctx context.Context, session queue.GameSession) error {
	row := FromGameSession(session)

	const stmt = `
		INSERT INTO game_session
			(id, community_id, channel_id, size, tags, power_level, players, signup_ids, state, created_at, updated_at)
		VALUES
			(:id, :community_id, :channel_id, :size, :tags, :power_level, :players, :signup_ids, :state, :created_at, :updated_at)
		ON CONFLICT (id)
		DO
		UPDATE
		SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at;`

	_, err := tql.Exec(ctx, r.db, stmt, map[string]any{
		"id":           row.ID,
		"community_id": row.CommunityID,
		"channel_id":   row.ChannelID,
		"size":         row.Size,
		"tags":         row.Tags,
		"power_level":  row.PowerLevel,
		"players":      row.Players,
		"signup_ids":   row.SignupIDs,
		"state":        row.State,
		"created_at":   row.CreatedAt,
		"updated_at":   row.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save game session %s: %w", session.ID, err)
	}

	return nil
}

// Session loads the archived session, returning queue.ErrNotFound when there is none.
func (r *SessionRepository) Session(ctx context.Context, id string) (queue.GameSession, error) {
	const query = `
		SELECT
			id, community_id, channel_id, size, tags, power_level, players, signup_ids, state, created_at, updated_at
		FROM
			game_session
		WHERE
			id = $1;`

	row, err := tql.QueryFirst[Session](ctx, r.db, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return queue.GameSession{}, fmt.Errorf("game %s: %w", id, queue.ErrNotFound)
	case err != nil:
		return queue.GameSession{}, err
	}

	return row.GameSession(), nil
}
