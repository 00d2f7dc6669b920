package domain

import (
	"context"
	"testing"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
	"github.com/eskrenkovic/spellqueue/internal/modules/tests"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_PostgresSettingsProvider_Falls_Back_To_Defaults(t *testing.T) {
	// Arrange
	defaults := queue.DefaultScopeSettings()
	provider := NewPostgresSettingsProvider(tests.StartMigratedPostgres(t), defaults)

	// Act
	settings, err := provider.Settings(context.Background(), uuid.NewString())

	// Assert
	require.NoError(t, err)
	require.Equal(t, defaults, settings)
}

func Test_PostgresSettingsProvider_Upserts_Settings(t *testing.T) {
	// Arrange
	provider := NewPostgresSettingsProvider(tests.StartMigratedPostgres(t), queue.DefaultScopeSettings())
	ctx := context.Background()
	communityID := uuid.NewString()

	first := queue.ScopeSettings{ExpiryMinutes: 10, Granularity: queue.GranularityChannel, PowerTolerance: 1, FriendlyQueueEnabled: true}
	second := queue.ScopeSettings{ExpiryMinutes: 45, Granularity: queue.GranularityCommunity, PowerTolerance: 0.5, FriendlyQueueEnabled: false}

	require.NoError(t, provider.SaveSettings(ctx, communityID, first))

	// Act
	err := provider.SaveSettings(ctx, communityID, second)

	// Assert
	require.NoError(t, err)

	settings, err := provider.Settings(ctx, communityID)
	require.NoError(t, err)
	require.Equal(t, second, settings)
}
