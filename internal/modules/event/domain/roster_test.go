package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParseRoster_Uses_Header_Width_As_Size(t *testing.T) {
	// Arrange
	file := "seat1,seat2,seat3,seat4\n" +
		"alice,bob,,\n" +
		"carol, dave ,erin,frank\n" +
		"gina\n"

	// Act
	roster, err := ParseRoster(strings.NewReader(file))

	// Assert
	require.NoError(t, err)
	require.Equal(t, 4, roster.Size)
	require.Equal(t, [][]string{
		{"alice", "bob"},
		{"carol", "dave", "erin", "frank"},
		{"gina"},
	}, roster.Rows)
	require.Equal(t, 7, roster.Players())
}

func Test_ParseRoster_Rejects_Bad_Files(t *testing.T) {
	cases := map[string]string{
		"empty file":       "",
		"header only":      "a,b\n",
		"empty row":        "a,b\n,\n",
		"oversized row":    "a,b\nalice,bob,carol\n",
		"duplicate player": "a,b\nalice,bob\ncarol,alice\n",
		"broken quoting":   "a,b\n\"alice,bob\n",
	}

	for name, file := range cases {
		file := file
		t.Run(name, func(t *testing.T) {
			// Act
			_, err := ParseRoster(strings.NewReader(file))

			// Assert
			require.ErrorIs(t, err, ErrInvalidRoster)
		})
	}
}
