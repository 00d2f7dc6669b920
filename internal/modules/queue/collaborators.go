package queue

import "context"

// SettingsProvider supplies read-only per-community configuration.
type SettingsProvider interface {
	Settings(ctx context.Context, communityID string) (ScopeSettings, error)
}

// StaticSettings serves the same settings to every community.
type StaticSettings ScopeSettings

func (s StaticSettings) Settings(context.Context, string) (ScopeSettings, error) {
	return ScopeSettings(s), nil
}

// Notifier is told about matches and evictions. Delivery failures are its own
// concern; the queue never retries.
type Notifier interface {
	NotifyMatched(ctx context.Context, session GameSession)
	NotifySignupExpired(ctx context.Context, signup Signup)
	NotifySessionExpired(ctx context.Context, session GameSession)
}

type NopNotifier struct{}

func (NopNotifier) NotifyMatched(context.Context, GameSession)        {}
func (NopNotifier) NotifySignupExpired(context.Context, Signup)       {}
func (NopNotifier) NotifySessionExpired(context.Context, GameSession) {}

// SessionStore persists game session state changes.
type SessionStore interface {
	SaveSession(ctx context.Context, session GameSession) error
}

type NopSessionStore struct{}

func (NopSessionStore) SaveSession(context.Context, GameSession) error {
	return nil
}
