package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_GameSession_Power_Is_Player_Weighted_Average(t *testing.T) {
	// Arrange
	records := []*Signup{
		newTestSignup("pair", []string{"a", "b"}, withPower(6)),
		newTestSignup("s1", []string{"c"}, withPower(7)),
		newTestSignup("s2", []string{"d"}, withPower(7)),
	}

	// Act
	session := newGameSession("game", ScopeKey{CommunityID: "guild"}, records, epoch)

	// Assert
	require.NotNil(t, session.PowerLevel)
	require.InDelta(t, 6.5, *session.PowerLevel, 1e-9)
	require.Equal(t, []string{"a", "b", "c", "d"}, session.Players)
	require.Equal(t, []string{"pair", "s1", "s2"}, session.SignupIDs)
	require.Equal(t, StateMatched, session.State)
}

func Test_GameSession_Power_Free_Has_No_Power(t *testing.T) {
	// Arrange
	records := []*Signup{newTestSignup("full", []string{"a", "b", "c", "d"})}

	// Act
	session := newGameSession("game", ScopeKey{CommunityID: "guild"}, records, epoch)

	// Assert
	require.Nil(t, session.PowerLevel)
}

func Test_GameSession_Leaves_Matched_Exactly_Once(t *testing.T) {
	transitions := map[string]func(*GameSession, time.Time) error{
		"start":  (*GameSession).Start,
		"expire": (*GameSession).Expire,
		"cancel": (*GameSession).Cancel,
	}

	for name, first := range transitions {
		first := first
		t.Run(name, func(t *testing.T) {
			// Arrange
			session := newGameSession(
				"game",
				ScopeKey{CommunityID: "guild"},
				[]*Signup{newTestSignup("full", []string{"a", "b", "c", "d"})},
				epoch,
			)

			// Act
			err := first(session, epoch.Add(time.Minute))

			// Assert
			require.NoError(t, err)
			require.True(t, session.State.Terminal())
			require.Equal(t, epoch.Add(time.Minute), session.UpdatedAt)

			for _, next := range transitions {
				require.ErrorIs(t, next(session, epoch.Add(2*time.Minute)), ErrInvalidState)
			}
		})
	}
}
