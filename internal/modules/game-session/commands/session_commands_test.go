package commands

import (
	"context"
	"testing"

	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func matchedGame(t *testing.T) (*queue.Service, queue.GameSession) {
	t.Helper()

	service := queue.NewService(queue.Options{Logger: zaptest.NewLogger(t)})

	result, err := service.Enqueue(
		context.Background(),
		queue.ScopeKey{CommunityID: "guild"},
		queue.SignupRequest{Players: []string{"a", "b", "c", "d"}},
	)
	require.NoError(t, err)
	require.Len(t, result.Matched, 1)

	return service, result.Matched[0]
}

func Test_ConfirmSessionCommand_Starts_Matched_Game(t *testing.T) {
	// Arrange
	service, game := matchedGame(t)
	handler := NewConfirmSessionCommandHandler(service)

	// Act
	session, err := handler.Handle(context.Background(), ConfirmSessionCommand{SessionID: game.ID})

	// Assert
	require.NoError(t, err)
	require.Equal(t, queue.StateStarted, session.State)
}

func Test_ConfirmSessionCommand_Returns_409_When_Already_Started(t *testing.T) {
	// Arrange
	service, game := matchedGame(t)
	handler := NewConfirmSessionCommandHandler(service)

	_, err := handler.Handle(context.Background(), ConfirmSessionCommand{SessionID: game.ID})
	require.NoError(t, err)

	// Act
	_, err = handler.Handle(context.Background(), ConfirmSessionCommand{SessionID: game.ID})

	// Assert
	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, 409, commandErr.StatusCode)
}

func Test_CancelSessionCommand_Returns_404_For_Unknown_Game(t *testing.T) {
	// Arrange
	service, _ := matchedGame(t)
	handler := NewCancelSessionCommandHandler(service)

	// Act
	_, err := handler.Handle(context.Background(), CancelSessionCommand{SessionID: "missing"})

	// Assert
	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, 404, commandErr.StatusCode)
}

func Test_CancelSessionCommand_Cancels_Matched_Game(t *testing.T) {
	// Arrange
	service, game := matchedGame(t)
	handler := NewCancelSessionCommandHandler(service)

	// Act
	session, err := handler.Handle(context.Background(), CancelSessionCommand{SessionID: game.ID})

	// Assert
	require.NoError(t, err)
	require.Equal(t, queue.StateCancelled, session.State)
}

func Test_SessionCommands_Validate_Require_ID(t *testing.T) {
	require.Error(t, ConfirmSessionCommand{}.Validate())
	require.Error(t, CancelSessionCommand{}.Validate())
	require.NoError(t, ConfirmSessionCommand{SessionID: "x"}.Validate())
}
