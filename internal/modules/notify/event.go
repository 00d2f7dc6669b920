// Package notify delivers queue events to the outside world.
package notify

import (
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
)

type EventType string

const (
	EventGameMatched   EventType = "game.matched"
	EventGameExpired   EventType = "game.expired"
	EventSignupExpired EventType = "signup.expired"
)

// Event is the message published for every queue notification.
type Event struct {
	Type       EventType          `json:"type"`
	Scope      queue.ScopeKey     `json:"scope"`
	Session    *queue.GameSession `json:"session,omitempty"`
	Signup     *queue.Signup      `json:"signup,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func matchedEvent(session queue.GameSession, now time.Time) Event {
	return Event{Type: EventGameMatched, Scope: session.Scope, Session: &session, OccurredAt: now}
}

func sessionExpiredEvent(session queue.GameSession, now time.Time) Event {
	return Event{Type: EventGameExpired, Scope: session.Scope, Session: &session, OccurredAt: now}
}

func signupExpiredEvent(signup queue.Signup, now time.Time) Event {
	return Event{Type: EventSignupExpired, Scope: signup.Scope, Signup: &signup, OccurredAt: now}
}
