package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_WriteCommandError_Uses_Command_Error_Status(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	err := fmt.Errorf("wrapped: %w", Conflict(errors.New("player already queued")))

	// Act
	WriteCommandError(w, r, err)

	// Assert
	require.Equal(t, http.StatusConflict, w.Code)

	var body CommandError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "player already queued", body.Payload)
	require.Equal(t, "conflict", *body.Reason)
}

func Test_WriteCommandError_Defaults_To_Internal_Server_Error(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	WriteCommandError(w, r, errors.New("boom"))

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func Test_CorrelationIDHTTPMiddleware_Propagates_Header(t *testing.T) {
	// Arrange
	var seen string
	handler := CorrelationIDHTTPMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationID(r.Context())
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(CorrelationIDHeader, "abc")

	// Act
	handler(w, r)

	// Assert
	require.Equal(t, "abc", seen)
	require.Equal(t, "abc", w.Header().Get(CorrelationIDHeader))
}

func Test_CorrelationIDHTTPMiddleware_Generates_Missing_ID(t *testing.T) {
	// Arrange
	var seen string
	handler := CorrelationIDHTTPMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationID(r.Context())
	})

	// Act
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.NotEmpty(t, seen)
}

func Test_Validate_Collects_Only_Failures(t *testing.T) {
	// Act
	err := Validate(nil, errors.New("invalid Size - '0'"), nil, errors.New("invalid Players"))

	// Assert
	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.ValidationErrors, 2)
	require.Equal(t, "'invalid Size - '0'' 'invalid Players'", err.Error())

	require.NoError(t, Validate(nil, nil))
}

func Test_Validate_Preserves_Wrapped_Errors(t *testing.T) {
	// Arrange
	sentinel := errors.New("invalid roster")

	// Act
	err := Validate(nil, fmt.Errorf("row 2: %w", sentinel))

	// Assert
	require.ErrorIs(t, err, sentinel)
	require.NotErrorIs(t, err, errors.New("invalid roster"))
}

func Test_Map_And_Filter(t *testing.T) {
	// Act
	doubled := Map([]int{1, 2, 3}, func(i int) int { return i * 2 })
	even := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })

	// Assert
	require.Equal(t, []int{2, 4, 6}, doubled)
	require.Equal(t, []int{2, 4}, even)
}
