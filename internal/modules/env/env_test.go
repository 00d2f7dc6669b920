package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_GetDurationOrDefault_Uses_Default_When_Unset(t *testing.T) {
	// Arrange
	t.Setenv("SPELLQUEUE_TEST_DURATION", "")

	// Act
	val, err := GetDurationOrDefault("SPELLQUEUE_TEST_DURATION", 30*time.Second)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, val)
}

func Test_GetFloatOrDefault_Parses_Value(t *testing.T) {
	// Arrange
	t.Setenv("SPELLQUEUE_TEST_FLOAT", "2.5")

	// Act
	val, err := GetFloatOrDefault("SPELLQUEUE_TEST_FLOAT", 1.5)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 2.5, val)
}

func Test_GetBoolOrDefault_Rejects_Malformed_Value(t *testing.T) {
	// Arrange
	t.Setenv("SPELLQUEUE_TEST_BOOL", "maybe")

	// Act
	_, err := GetBoolOrDefault("SPELLQUEUE_TEST_BOOL", true)

	// Assert
	require.ErrorIs(t, err, ErrConversionFailed)
}

func Test_MustGetInt_Panics_When_Missing(t *testing.T) {
	require.Panics(t, func() {
		MustGetInt("SPELLQUEUE_TEST_MISSING_INT")
	})
}

func Test_GetString_Returns_Not_Found(t *testing.T) {
	// Act
	_, err := GetString("SPELLQUEUE_TEST_MISSING_STRING")

	// Assert
	require.ErrorIs(t, err, ErrNotFound)
}
