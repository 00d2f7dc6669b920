package queue

import (
	"fmt"
	"time"
)

type SessionState string

const (
	StateMatched   SessionState = "matched"
	StateStarted   SessionState = "started"
	StateExpired   SessionState = "expired"
	StateCancelled SessionState = "cancelled"
)

func (s SessionState) Terminal() bool {
	return s == StateStarted || s == StateExpired || s == StateCancelled
}

// GameSession is a full group assembled by the matcher. It starts in StateMatched
// and moves exactly once into one of the terminal states.
type GameSession struct {
	ID         string       `json:"id"`
	Scope      ScopeKey     `json:"scope"`
	Size       int          `json:"size"`
	Tags       []string     `json:"tags"`
	PowerLevel *float64     `json:"power_level,omitempty"`
	Players    []string     `json:"players"`
	SignupIDs  []string     `json:"signup_ids"`
	State      SessionState `json:"state"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func newGameSession(id string, scope ScopeKey, records []*Signup, now time.Time) *GameSession {
	first := records[0]

	session := &GameSession{
		ID:        id,
		Scope:     scope,
		Size:      first.Size,
		Tags:      append([]string(nil), first.Tags...),
		Players:   make([]string, 0, first.Size),
		SignupIDs: make([]string, 0, len(records)),
		State:     StateMatched,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var (
		powered     bool
		powerSum    float64
		powerWeight int
	)

	for _, r := range records {
		session.Players = append(session.Players, r.Players...)
		session.SignupIDs = append(session.SignupIDs, r.ID)

		if r.PowerLevel != nil {
			powered = true
			powerSum += *r.PowerLevel * float64(r.PlayerCount())
			powerWeight += r.PlayerCount()
		}
	}

	if powered {
		avg := powerSum / float64(powerWeight)
		session.PowerLevel = &avg
	}

	return session
}

func (g *GameSession) Start(now time.Time) error {
	return g.transition(StateStarted, now)
}

func (g *GameSession) Expire(now time.Time) error {
	return g.transition(StateExpired, now)
}

func (g *GameSession) Cancel(now time.Time) error {
	return g.transition(StateCancelled, now)
}

func (g *GameSession) transition(to SessionState, now time.Time) error {
	if g.State != StateMatched || !to.Terminal() {
		return fmt.Errorf("game %s cannot move from %s to %s: %w", g.ID, g.State, to, ErrInvalidState)
	}

	g.State = to
	g.UpdatedAt = now
	return nil
}

func (g *GameSession) clone() GameSession {
	c := *g
	c.Tags = append([]string(nil), g.Tags...)
	c.Players = append([]string(nil), g.Players...)
	c.SignupIDs = append([]string(nil), g.SignupIDs...)
	if g.PowerLevel != nil {
		p := *g.PowerLevel
		c.PowerLevel = &p
	}
	return c
}
