// Package queue implements the matchmaking queue: per-scope pending pools, the
// matcher, game session lifecycle and expiry sweeping.
package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	Settings SettingsProvider
	Notifier Notifier
	Store    SessionStore
	Logger   *zap.Logger

	// MatchedGrace is how long a session may wait in StateMatched before the
	// sweeper expires it. Zero disables session expiry.
	MatchedGrace time.Duration

	// Retention is how long terminal sessions stay visible before they are reclaimed.
	Retention time.Duration

	Clock func() time.Time
	NewID func() string
}

// Service is the concurrency-safe entry point to the queue. Every scope has its own
// lock; operations on different scopes never wait on each other.
type Service struct {
	settings SettingsProvider
	notifier Notifier
	store    SessionStore
	logger   *zap.Logger

	matchedGrace time.Duration
	retention    time.Duration

	now   func() time.Time
	newID func() string
	seq   atomic.Uint64

	// mu guards the registry maps only, never pool state.
	mu      sync.Mutex
	scopes  map[ScopeKey]*scopeUnit
	games   map[string]ScopeKey
	signups map[string]string
}

func NewService(opts Options) *Service {
	s := &Service{
		settings:     opts.Settings,
		notifier:     opts.Notifier,
		store:        opts.Store,
		logger:       opts.Logger,
		matchedGrace: opts.MatchedGrace,
		retention:    opts.Retention,
		now:          opts.Clock,
		newID:        opts.NewID,
		scopes:       make(map[ScopeKey]*scopeUnit),
		games:        make(map[string]ScopeKey),
		signups:      make(map[string]string),
	}

	if s.settings == nil {
		s.settings = StaticSettings(DefaultScopeSettings())
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.store == nil {
		s.store = NopSessionStore{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	return s
}

type EnqueueResult struct {
	Signup  Signup        `json:"signup"`
	Matched []GameSession `json:"matched,omitempty"`
}

// ResolveScope turns a raw community/channel pair into the pool key the
// community's settings call for.
func (s *Service) ResolveScope(ctx context.Context, communityID, channelID string) (ScopeKey, error) {
	settings, err := s.settings.Settings(ctx, communityID)
	if err != nil {
		return ScopeKey{}, fmt.Errorf("failed to load settings for community %s: %w", communityID, err)
	}
	return settings.ScopeFor(communityID, channelID)
}

// Enqueue validates and inserts a signup, then immediately tries to match the scope.
func (s *Service) Enqueue(ctx context.Context, scope ScopeKey, req SignupRequest) (EnqueueResult, error) {
	settings, err := s.settings.Settings(ctx, scope.CommunityID)
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("failed to load settings for %s: %w", scope, err)
	}

	normalized, err := normalizeRequest(req, settings)
	if err != nil {
		return EnqueueResult{}, err
	}

	now := s.now()
	record := &Signup{
		ID:         s.newID(),
		Scope:      scope,
		Players:    normalized.Players,
		Size:       normalized.Size,
		Tags:       normalized.Tags,
		PowerLevel: normalized.PowerLevel,
		CreatedAt:  now,
		ExpiresAt:  now.Add(settings.Expiry()),
		seq:        s.seq.Add(1),
	}

	var result EnqueueResult
	err = s.withScope(ctx, scope, func(u *scopeUnit) error {
		for _, p := range record.Players {
			if gameID, busy := u.inSession[p]; busy {
				return fmt.Errorf("player %q is waiting in game %s: %w", p, gameID, ErrAlreadyQueued)
			}
		}

		if err := u.pool.Add(record); err != nil {
			return err
		}

		result.Signup = record.clone()
		result.Matched = s.tickLocked(u, NewMatcher(settings.PowerTolerance), now)
		return nil
	})
	if err != nil {
		return EnqueueResult{}, err
	}

	s.logger.Debug(
		"signup enqueued",
		zap.String("scope", scope.String()),
		zap.String("signup_id", record.ID),
		zap.Strings("players", record.Players),
		zap.Int("games_formed", len(result.Matched)),
	)

	return result, nil
}

// Leave removes the whole signup containing player. It reports whether anything
// was removed; sessions are never touched.
func (s *Service) Leave(ctx context.Context, scope ScopeKey, player string) (bool, error) {
	settings, err := s.settings.Settings(ctx, scope.CommunityID)
	if err != nil {
		return false, fmt.Errorf("failed to load settings for %s: %w", scope, err)
	}

	var removed bool
	err = s.withScope(ctx, scope, func(u *scopeUnit) error {
		record, ok := u.pool.ByPlayer(player)
		if !ok {
			return nil
		}

		_, removed = u.pool.Remove(record.ID)
		s.tickLocked(u, NewMatcher(settings.PowerTolerance), s.now())
		return nil
	})

	return removed, err
}

// Tick runs the matcher against the scope until no further game can be formed.
func (s *Service) Tick(ctx context.Context, scope ScopeKey) ([]GameSession, error) {
	settings, err := s.settings.Settings(ctx, scope.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for %s: %w", scope, err)
	}

	var formed []GameSession
	err = s.withScope(ctx, scope, func(u *scopeUnit) error {
		formed = s.tickLocked(u, NewMatcher(settings.PowerTolerance), s.now())
		return nil
	})

	return formed, err
}

func (s *Service) Confirm(ctx context.Context, gameID string) (GameSession, error) {
	return s.transition(ctx, gameID, (*GameSession).Start)
}

func (s *Service) Cancel(ctx context.Context, gameID string) (GameSession, error) {
	return s.transition(ctx, gameID, (*GameSession).Cancel)
}

func (s *Service) Session(ctx context.Context, gameID string) (GameSession, error) {
	scope, ok := s.scopeOfGame(gameID)
	if !ok {
		return GameSession{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	u := s.lookup(scope)
	if u == nil {
		return GameSession{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	session, ok := u.sessions[gameID]
	if !ok {
		return GameSession{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	return session.clone(), nil
}

// SessionForSignup returns the game a signup was matched into. It fails with
// ErrNotFound while the signup is still pending, after it left or expired, and once
// the game has been reclaimed.
func (s *Service) SessionForSignup(ctx context.Context, signupID string) (GameSession, error) {
	gameID, ok := s.gameOfSignup(signupID)
	if !ok {
		return GameSession{}, fmt.Errorf("signup %s: %w", signupID, ErrNotFound)
	}

	return s.Session(ctx, gameID)
}

func (s *Service) transition(
	ctx context.Context,
	gameID string,
	apply func(*GameSession, time.Time) error,
) (GameSession, error) {
	scope, ok := s.scopeOfGame(gameID)
	if !ok {
		return GameSession{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	var result GameSession
	err := s.withScope(ctx, scope, func(u *scopeUnit) error {
		session, ok := u.sessions[gameID]
		if !ok {
			return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
		}

		if err := apply(session, s.now()); err != nil {
			return err
		}

		u.release(session)
		result = session.clone()
		u.outbox = append(u.outbox, effect{kind: effectSessionChanged, session: result})
		return nil
	})

	return result, err
}

// tickLocked forms as many games as the pool allows. Caller holds u.mu.
func (s *Service) tickLocked(u *scopeUnit, matcher Matcher, now time.Time) []GameSession {
	var formed []GameSession

	for {
		records := matcher.Match(u.pool)
		if records == nil {
			return formed
		}

		for _, r := range records {
			u.pool.Remove(r.ID)
		}

		session := newGameSession(s.newID(), u.key, records, now)
		u.sessions[session.ID] = session
		for _, p := range session.Players {
			u.inSession[p] = session.ID
		}
		s.indexGame(session)

		snapshot := session.clone()
		u.outbox = append(u.outbox, effect{kind: effectMatched, session: snapshot})
		formed = append(formed, snapshot)
	}
}

// Scopes lists every scope that currently holds state.
func (s *Service) Scopes() []ScopeKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]ScopeKey, 0, len(s.scopes))
	for k := range s.scopes {
		keys = append(keys, k)
	}
	return keys
}

// withScope runs fn inside the scope's critical section, then delivers whatever
// side effects fn queued once the lock is released.
func (s *Service) withScope(ctx context.Context, scope ScopeKey, fn func(u *scopeUnit) error) error {
	u := s.lock(scope)

	err := func() error {
		defer u.mu.Unlock()
		return fn(u)
	}()

	s.flush(ctx, u)
	return err
}

// lock returns the scope's unit with its mutex held. A unit retired by the sweeper
// between lookup and locking is skipped in favour of a fresh one.
func (s *Service) lock(scope ScopeKey) *scopeUnit {
	for {
		s.mu.Lock()
		u, ok := s.scopes[scope]
		if !ok {
			u = newScopeUnit(scope)
			s.scopes[scope] = u
		}
		s.mu.Unlock()

		u.mu.Lock()
		if !u.retired {
			return u
		}
		u.mu.Unlock()
	}
}

func (s *Service) lookup(scope ScopeKey) *scopeUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scopes[scope]
}

// retire drops an empty unit from the registry. Caller holds u.mu.
func (s *Service) retire(u *scopeUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scopes[u.key] == u {
		delete(s.scopes, u.key)
	}
	u.retired = true
}

func (s *Service) indexGame(session *GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games[session.ID] = session.Scope
	for _, id := range session.SignupIDs {
		s.signups[id] = session.ID
	}
}

func (s *Service) unindexGame(session *GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.games, session.ID)
	for _, id := range session.SignupIDs {
		delete(s.signups, id)
	}
}

func (s *Service) gameOfSignup(signupID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gameID, ok := s.signups[signupID]
	return gameID, ok
}

func (s *Service) scopeOfGame(gameID string) (ScopeKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scope, ok := s.games[gameID]
	return scope, ok
}

// flush delivers queued effects in the order they were produced. The delivery
// lock is separate from the state lock so collaborators never run under u.mu.
func (s *Service) flush(ctx context.Context, u *scopeUnit) {
	u.deliverMu.Lock()
	defer u.deliverMu.Unlock()

	for {
		u.mu.Lock()
		batch := u.outbox
		u.outbox = nil
		u.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		for _, e := range batch {
			s.dispatch(ctx, e)
		}
	}
}

func (s *Service) dispatch(ctx context.Context, e effect) {
	switch e.kind {
	case effectMatched:
		s.save(ctx, e.session)
		s.notifier.NotifyMatched(ctx, e.session)
		s.logger.Info(
			"game matched",
			zap.String("scope", e.session.Scope.String()),
			zap.String("game_id", e.session.ID),
			zap.Strings("players", e.session.Players),
		)

	case effectSessionChanged:
		s.save(ctx, e.session)
		s.logger.Info(
			"game state changed",
			zap.String("game_id", e.session.ID),
			zap.String("state", string(e.session.State)),
		)

	case effectSessionExpired:
		s.save(ctx, e.session)
		s.notifier.NotifySessionExpired(ctx, e.session)
		s.logger.Info("game expired", zap.String("game_id", e.session.ID))

	case effectSignupExpired:
		s.notifier.NotifySignupExpired(ctx, e.signup)
		s.logger.Info(
			"signup expired",
			zap.String("scope", e.signup.Scope.String()),
			zap.String("signup_id", e.signup.ID),
		)
	}
}

func (s *Service) save(ctx context.Context, session GameSession) {
	if err := s.store.SaveSession(ctx, session); err != nil {
		s.logger.Error(
			"failed to persist game session",
			zap.String("game_id", session.ID),
			zap.String("state", string(session.State)),
			zap.Error(err),
		)
	}
}

type effectKind int

const (
	effectMatched effectKind = iota
	effectSessionChanged
	effectSessionExpired
	effectSignupExpired
)

type effect struct {
	kind    effectKind
	session GameSession
	signup  Signup
}

// scopeUnit is the serialization unit for one scope: its pool, its sessions and
// the outbox of side effects waiting for delivery.
type scopeUnit struct {
	key ScopeKey

	mu        sync.Mutex
	pool      *Pool
	sessions  map[string]*GameSession
	inSession map[string]string
	outbox    []effect
	retired   bool

	deliverMu sync.Mutex
}

func newScopeUnit(key ScopeKey) *scopeUnit {
	return &scopeUnit{
		key:       key,
		pool:      NewPool(),
		sessions:  make(map[string]*GameSession),
		inSession: make(map[string]string),
	}
}

// release frees a session's players once it leaves StateMatched.
func (u *scopeUnit) release(session *GameSession) {
	for _, p := range session.Players {
		if u.inSession[p] == session.ID {
			delete(u.inSession, p)
		}
	}
}

func (u *scopeUnit) idle() bool {
	return u.pool.Len() == 0 && len(u.sessions) == 0 && len(u.outbox) == 0
}
