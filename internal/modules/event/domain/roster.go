package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrInvalidRoster = errors.New("invalid event roster")

// Roster is a parsed event file. Every row is one group of players that must end up
// in the same game.
type Roster struct {
	Size int        `json:"size"`
	Rows [][]string `json:"rows"`
}

// ParseRoster reads a CSV file whose header row fixes the game size through its column
// count. Blank cells are ignored and every data row becomes one group.
func ParseRoster(r io.Reader) (Roster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Roster{}, fmt.Errorf("missing header row: %w", ErrInvalidRoster)
	}
	if err != nil {
		return Roster{}, fmt.Errorf("%s: %w", err.Error(), ErrInvalidRoster)
	}

	roster := Roster{Size: len(header)}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Roster{}, fmt.Errorf("%s: %w", err.Error(), ErrInvalidRoster)
		}

		line, _ := reader.FieldPos(0)
		if len(record) > roster.Size {
			return Roster{}, fmt.Errorf(
				"line %d has %d columns, header has %d: %w",
				line, len(record), roster.Size, ErrInvalidRoster,
			)
		}

		var players []string
		for _, cell := range record {
			if cell = strings.TrimSpace(cell); cell != "" {
				players = append(players, cell)
			}
		}
		roster.Rows = append(roster.Rows, players)
	}

	return roster, roster.Validate()
}

// Validate checks the whole roster so that an import never enqueues part of a bad file.
func (r Roster) Validate() error {
	if r.Size < 1 {
		return fmt.Errorf("game size must be at least 1: %w", ErrInvalidRoster)
	}

	if len(r.Rows) == 0 {
		return fmt.Errorf("no player rows: %w", ErrInvalidRoster)
	}

	seen := make(map[string]int)
	for i, row := range r.Rows {
		n := i + 1

		if len(row) == 0 {
			return fmt.Errorf("row %d is empty: %w", n, ErrInvalidRoster)
		}
		if len(row) > r.Size {
			return fmt.Errorf("row %d has more than %d players: %w", n, r.Size, ErrInvalidRoster)
		}

		for _, player := range row {
			if first, dup := seen[player]; dup {
				return fmt.Errorf("player %q appears in rows %d and %d: %w", player, first, n, ErrInvalidRoster)
			}
			seen[player] = n
		}
	}

	return nil
}

func (r Roster) Players() int {
	var count int
	for _, row := range r.Rows {
		count += len(row)
	}
	return count
}
