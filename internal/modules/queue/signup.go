package queue

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
)

const (
	DefaultGameSize = 4
	MaxTags         = 5

	maxTagLength = 50
)

// SignupRequest is the caller-facing shape of a signup. A zero Size means DefaultGameSize.
type SignupRequest struct {
	Players    []string `json:"players"`
	Size       int      `json:"size"`
	Tags       []string `json:"tags"`
	PowerLevel *float64 `json:"power_level,omitempty"`
}

// Signup is one queued request. A multi-player signup is a friendly group that
// always lands in the same game.
type Signup struct {
	ID         string    `json:"id"`
	Scope      ScopeKey  `json:"scope"`
	Players    []string  `json:"players"`
	Size       int       `json:"size"`
	Tags       []string  `json:"tags"`
	PowerLevel *float64  `json:"power_level,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`

	seq uint64
}

func (s *Signup) PlayerCount() int {
	return len(s.Players)
}

func (s *Signup) HasPower() bool {
	return s.PowerLevel != nil
}

func (s *Signup) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// before orders signups oldest first, falling back to arrival order for equal timestamps.
func (s *Signup) before(other *Signup) bool {
	if s.CreatedAt.Equal(other.CreatedAt) {
		return s.seq < other.seq
	}
	return s.CreatedAt.Before(other.CreatedAt)
}

func (s *Signup) clone() Signup {
	c := *s
	c.Players = append([]string(nil), s.Players...)
	c.Tags = append([]string(nil), s.Tags...)
	if s.PowerLevel != nil {
		p := *s.PowerLevel
		c.PowerLevel = &p
	}
	return c
}

// normalizeRequest validates a request against the scope settings and returns it
// with defaults applied and tags canonicalized. Nothing is mutated on failure.
func normalizeRequest(req SignupRequest, settings ScopeSettings) (SignupRequest, error) {
	players, err := normalizePlayers(req.Players)
	if err != nil {
		return SignupRequest{}, err
	}

	size := req.Size
	if size == 0 {
		size = DefaultGameSize
	}

	if size < 0 {
		return SignupRequest{}, fmt.Errorf("size %d: %w", size, ErrInvalidSize)
	}

	if len(players) > size {
		return SignupRequest{}, fmt.Errorf("%d players do not fit a game of %d: %w", len(players), size, ErrInvalidSize)
	}

	if len(players) > 1 && !settings.FriendlyQueueEnabled {
		return SignupRequest{}, ErrFriendlyQueueDisabled
	}

	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return SignupRequest{}, err
	}

	var power *float64
	if req.PowerLevel != nil {
		p := *req.PowerLevel
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return SignupRequest{}, fmt.Errorf("power level %v: %w", p, ErrInvalidPowerLevel)
		}
		power = &p
	}

	return SignupRequest{
		Players:    players,
		Size:       size,
		Tags:       tags,
		PowerLevel: power,
	}, nil
}

func normalizePlayers(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no players given: %w", ErrInvalidPlayers)
	}

	seen := make(map[string]struct{}, len(raw))
	players := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("blank player id: %w", ErrInvalidPlayers)
		}

		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("player %q listed twice: %w", p, ErrInvalidPlayers)
		}

		seen[p] = struct{}{}
		players = append(players, p)
	}

	return players, nil
}

// normalizeTags lowercases, de-duplicates and sorts tags so that two signups with
// the same tag set compare equal regardless of input order.
func normalizeTags(raw []string) ([]string, error) {
	if len(raw) > MaxTags {
		return nil, fmt.Errorf("%d tags given, at most %d allowed: %w", len(raw), MaxTags, ErrInvalidTagCount)
	}

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		tag := strings.ToLower(strings.TrimSpace(t))
		if err := validateTag(tag); err != nil {
			return nil, err
		}

		if _, dup := seen[tag]; dup {
			continue
		}

		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	sort.Strings(tags)
	return tags, nil
}

func validateTag(tag string) error {
	switch {
	case tag == "":
		return fmt.Errorf("empty tag: %w", ErrInvalidTag)
	case len(tag) >= maxTagLength:
		return fmt.Errorf("tag %q is too long: %w", tag, ErrInvalidTag)
	case isNumeric(tag):
		// Numbers are reserved for size and power filters.
		return fmt.Errorf("tag %q is numeric: %w", tag, ErrInvalidTag)
	case strings.HasPrefix(tag, "<"), strings.HasPrefix(tag, "@"):
		return fmt.Errorf("tag %q looks like a mention: %w", tag, ErrInvalidTag)
	case strings.ContainsAny(tag, ":,"):
		return fmt.Errorf("tag %q contains a reserved character: %w", tag, ErrInvalidTag)
	}

	for _, r := range tag {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("tag %q contains whitespace: %w", tag, ErrInvalidTag)
		}
	}

	return nil
}

func isNumeric(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return digits > 0
}

func tagsKey(tags []string) string {
	return strings.Join(tags, ",")
}
