package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/eskrenkovic/tql"
)

// CommunitySettings is a row of scope_settings.
type CommunitySettings struct {
	CommunityID          string    `db:"community_id"`
	ExpiryMinutes        int       `db:"expiry_minutes"`
	Granularity          string    `db:"granularity"`
	PowerTolerance       float64   `db:"power_tolerance"`
	FriendlyQueueEnabled bool      `db:"friendly_queue_enabled"`
	UpdatedAt            time.Time `db:"updated_at"`
}

func (s CommunitySettings) ScopeSettings() queue.ScopeSettings {
	return queue.ScopeSettings{
		ExpiryMinutes:        s.ExpiryMinutes,
		Granularity:          queue.Granularity(s.Granularity),
		PowerTolerance:       s.PowerTolerance,
		FriendlyQueueEnabled: s.FriendlyQueueEnabled,
	}
}

// SettingsStore reads and writes per-community settings.
type SettingsStore interface {
	queue.SettingsProvider
	SaveSettings(ctx context.Context, communityID string, settings queue.ScopeSettings) error
}

var _ SettingsStore = (*PostgresSettingsProvider)(nil)

// PostgresSettingsProvider serves scope_settings rows, falling back to the process
// defaults for communities that never changed anything.
type PostgresSettingsProvider struct {
	db       *sql.DB
	defaults queue.ScopeSettings
	now      func() time.Time
}

func NewPostgresSettingsProvider(db *sql.DB, defaults queue.ScopeSettings) *PostgresSettingsProvider {
	return &PostgresSettingsProvider{
		db:       db,
		defaults: defaults,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *PostgresSettingsProvider) Settings(ctx context.Context, communityID string) (queue.ScopeSettings, error) {
	const query = `
		SELECT
			community_id, expiry_minutes, granularity, power_tolerance, friendly_queue_enabled, updated_at
		FROM
			scope_settings
		WHERE
			community_id = $1;`

	row, err := tql.QueryFirst[CommunitySettings](ctx, p.db, query, communityID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return p.defaults, nil
	case err != nil:
		return queue.ScopeSettings{}, fmt.Errorf("failed to load settings for community %s: %w", communityID, err)
	}

	return row.ScopeSettings(), nil
}

func (p *PostgresSettingsProvider) SaveSettings(
	ctx context.Context,
	communityID string,
	settings queue.ScopeSettings,
) error {
	const stmt = `
		INSERT INTO scope_settings
			(community_id, expiry_minutes, granularity, power_tolerance, friendly_queue_enabled, updated_at)
		VALUES
			(:community_id, :expiry_minutes, :granularity, :power_tolerance, :friendly_queue_enabled, :updated_at)
		ON CONFLICT (community_id)
		DO
		UPDATE
		SET
			expiry_minutes = EXCLUDED.expiry_minutes,
			granularity = EXCLUDED.granularity,
			power_tolerance = EXCLUDED.power_tolerance,
			friendly_queue_enabled = EXCLUDED.friendly_queue_enabled,
			updated_at = EXCLUDED.updated_at;`

	_, err := tql.Exec(ctx, p.db, stmt, map[string]any{
		"community_id":           communityID,
		"expiry_minutes":         settings.ExpiryMinutes,
		"granularity":            string(settings.Granularity),
		"power_tolerance":        settings.PowerTolerance,
		"friendly_queue_enabled": settings.FriendlyQueueEnabled,
		"updated_at":             p.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to save settings for community %s: %w", communityID, err)
	}

	return nil
}
