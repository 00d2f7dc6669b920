package queue

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"

	"github.com/stretchr/testify/require"
)

func Test_NormalizeRequest_Defaults_Size_To_Four(t *testing.T) {
	// Act
	req, err := normalizeRequest(SignupRequest{Players: []string{"alice"}}, DefaultScopeSettings())

	// Assert
	require.NoError(t, err)
	require.Equal(t, DefaultGameSize, req.Size)
}

func Test_NormalizeRequest_Canonicalizes_Tags(t *testing.T) {
	// Arrange
	raw := SignupRequest{
		Players: []string{"alice"},
		Tags:    []string{"Modern", " cEDH", "modern"},
	}

	// Act
	req, err := normalizeRequest(raw, DefaultScopeSettings())

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"cedh", "modern"}, req.Tags)
}

func Test_NormalizeRequest_Rejects_More_Than_Five_Tags(t *testing.T) {
	// Arrange
	raw := SignupRequest{
		Players: []string{"alice"},
		Tags:    []string{"a", "b", "c", "d", "e", "f"},
	}

	// Act
	_, err := normalizeRequest(raw, DefaultScopeSettings())

	// Assert
	require.ErrorIs(t, err, ErrInvalidTagCount)
	require.True(t, IsValidationError(err))
}

func Test_NormalizeRequest_Rejects_Malformed_Tags(t *testing.T) {
	tags := []string{
		"5",
		"1.5",
		"-3",
		"<@1234>",
		"@here",
		"power:7",
		"a,b",
		"two words",
		"",
		strings.Repeat("x", maxTagLength),
	}

	for _, tag := range tags {
		tag := tag
		t.Run(tag, func(t *testing.T) {
			// Act
			_, err := normalizeRequest(SignupRequest{
				Players: []string{"alice"},
				Tags:    []string{tag},
			}, DefaultScopeSettings())

			// Assert
			require.ErrorIs(t, err, ErrInvalidTag)
		})
	}
}

func Test_NormalizeRequest_Accepts_Tag_With_Digits(t *testing.T) {
	// Act
	req, err := normalizeRequest(SignupRequest{
		Players: []string{"alice"},
		Tags:    []string{"pauper2"},
	}, DefaultScopeSettings())

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"pauper2"}, req.Tags)
}

func Test_NormalizeRequest_Rejects_Block_Larger_Than_Size(t *testing.T) {
	// Act
	_, err := normalizeRequest(SignupRequest{
		Players: []string{"a", "b", "c"},
		Size:    2,
	}, DefaultScopeSettings())

	// Assert
	require.ErrorIs(t, err, ErrInvalidSize)
}

func Test_NormalizeRequest_Rejects_Negative_Size(t *testing.T) {
	// Act
	_, err := normalizeRequest(SignupRequest{
		Players: []string{"a"},
		Size:    -1,
	}, DefaultScopeSettings())

	// Assert
	require.ErrorIs(t, err, ErrInvalidSize)
}

func Test_NormalizeRequest_Rejects_Invalid_Players(t *testing.T) {
	cases := map[string][]string{
		"empty":     nil,
		"blank":     {"alice", "  "},
		"duplicate": {"alice", "alice"},
	}

	for name, players := range cases {
		players := players
		t.Run(name, func(t *testing.T) {
			// Act
			_, err := normalizeRequest(SignupRequest{Players: players}, DefaultScopeSettings())

			// Assert
			require.ErrorIs(t, err, ErrInvalidPlayers)
		})
	}
}

func Test_NormalizeRequest_Rejects_Group_When_Friendly_Queue_Disabled(t *testing.T) {
	// Arrange
	settings := DefaultScopeSettings()
	settings.FriendlyQueueEnabled = false

	// Act
	_, groupErr := normalizeRequest(SignupRequest{Players: []string{"a", "b"}}, settings)
	_, singleErr := normalizeRequest(SignupRequest{Players: []string{"a"}}, settings)

	// Assert
	require.ErrorIs(t, groupErr, ErrFriendlyQueueDisabled)
	require.NoError(t, singleErr)
}

func Test_NormalizeRequest_Rejects_NaN_Power_Level(t *testing.T) {
	// Arrange
	power := math.NaN()

	// Act
	_, err := normalizeRequest(SignupRequest{
		Players:    []string{"alice"},
		PowerLevel: &power,
	}, DefaultScopeSettings())

	// Assert
	require.ErrorIs(t, err, ErrInvalidPowerLevel)
}

func Test_ScopeSettings_ScopeFor_Respects_Granularity(t *testing.T) {
	// Arrange
	community := DefaultScopeSettings()
	channel := DefaultScopeSettings()
	channel.Granularity = GranularityChannel

	// Act
	communityKey, communityErr := community.ScopeFor("guild", "lfg")
	channelKey, channelErr := channel.ScopeFor("guild", "lfg")

	// Assert
	require.NoError(t, communityErr)
	require.NoError(t, channelErr)
	require.Equal(t, ScopeKey{CommunityID: "guild"}, communityKey)
	require.Equal(t, ScopeKey{CommunityID: "guild", ChannelID: "lfg"}, channelKey)
	require.Equal(t, "guild/lfg", channelKey.String())
}

func Test_ScopeSettings_ScopeFor_Requires_Channel_For_Channel_Granularity(t *testing.T) {
	// Arrange
	channel := DefaultScopeSettings()
	channel.Granularity = GranularityChannel

	// Act
	_, channelErr := channel.ScopeFor("guild", "")
	communityKey, communityErr := DefaultScopeSettings().ScopeFor("guild", "")

	// Assert
	require.ErrorIs(t, channelErr, ErrChannelRequired)
	require.True(t, IsValidationError(channelErr))
	require.NoError(t, communityErr)
	require.Equal(t, ScopeKey{CommunityID: "guild"}, communityKey)
}

func Test_ScopeSettings_Validate_Rejects_Bad_Values(t *testing.T) {
	// Arrange
	zeroExpiry := DefaultScopeSettings()
	zeroExpiry.ExpiryMinutes = 0

	longExpiry := DefaultScopeSettings()
	longExpiry.ExpiryMinutes = MaxExpiryMinutes + 1

	maxExpiry := DefaultScopeSettings()
	maxExpiry.ExpiryMinutes = MaxExpiryMinutes

	negativeTolerance := DefaultScopeSettings()
	negativeTolerance.PowerTolerance = -1

	badGranularity := DefaultScopeSettings()
	badGranularity.Granularity = "server"

	// Assert
	require.NoError(t, DefaultScopeSettings().Validate())
	require.Error(t, zeroExpiry.Validate())
	require.Error(t, longExpiry.Validate())
	require.NoError(t, maxExpiry.Validate())
	require.Error(t, negativeTolerance.Validate())
	require.Error(t, badGranularity.Validate())
}

func Test_CommandError_Maps_Queue_Errors_To_Status(t *testing.T) {
	cases := map[error]int{
		ErrInvalidTag:            400,
		ErrFriendlyQueueDisabled: 400,
		ErrChannelRequired:       400,
		ErrNotFound:              404,
		ErrAlreadyQueued:         409,
		ErrInvalidState:          409,
	}

	for err, status := range cases {
		// Act
		mapped := CommandError(fmt.Errorf("context: %w", err))

		// Assert
		var commandErr core.CommandError
		require.ErrorAs(t, mapped, &commandErr)
		require.Equal(t, status, commandErr.StatusCode)
	}

	require.NoError(t, CommandError(nil))
}
