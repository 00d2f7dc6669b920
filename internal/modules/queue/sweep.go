package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

type SweepResult struct {
	ExpiredSignups  []Signup
	ExpiredSessions []GameSession
	Reclaimed       int
}

// Sweep evicts everything in scope whose deadline has passed at now. Running it
// twice with the same now is a no-op the second time.
func (s *Service) Sweep(ctx context.Context, scope ScopeKey, now time.Time) (SweepResult, error) {
	var result SweepResult

	err := s.withScope(ctx, scope, func(u *scopeUnit) error {
		for _, record := range u.pool.Expired(now) {
			if _, ok := u.pool.Remove(record.ID); !ok {
				continue
			}

			snapshot := record.clone()
			result.ExpiredSignups = append(result.ExpiredSignups, snapshot)
			u.outbox = append(u.outbox, effect{kind: effectSignupExpired, signup: snapshot})
		}

		for _, session := range u.sortedSessions() {
			switch {
			case session.State == StateMatched && s.matchedGrace > 0 && !now.Before(session.CreatedAt.Add(s.matchedGrace)):
				if err := session.Expire(now); err != nil {
					continue
				}

				u.release(session)
				snapshot := session.clone()
				result.ExpiredSessions = append(result.ExpiredSessions, snapshot)
				u.outbox = append(u.outbox, effect{kind: effectSessionExpired, session: snapshot})

			case session.State.Terminal() && !now.Before(session.UpdatedAt.Add(s.retention)):
				delete(u.sessions, session.ID)
				s.unindexGame(session)
				result.Reclaimed++
			}
		}

		if u.idle() {
			s.retire(u)
		}

		return nil
	})

	return result, err
}

// SweepAll sweeps every known scope and then ticks it, so that signups left
// behind by a failed match attempt get another chance.
func (s *Service) SweepAll(ctx context.Context) error {
	scopes := s.Scopes()
	sort.Slice(scopes, func(i, j int) bool {
		return scopes[i].String() < scopes[j].String()
	})

	var errs []error
	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := s.Sweep(ctx, scope, s.now())
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to sweep %s: %w", scope, err))
			continue
		}

		if len(result.ExpiredSignups) > 0 || len(result.ExpiredSessions) > 0 || result.Reclaimed > 0 {
			s.logger.Info(
				"scope swept",
				zap.String("scope", scope.String()),
				zap.Int("expired_signups", len(result.ExpiredSignups)),
				zap.Int("expired_sessions", len(result.ExpiredSessions)),
				zap.Int("reclaimed_sessions", result.Reclaimed),
			)
		}

		if s.lookup(scope) == nil {
			continue
		}

		if _, err := s.Tick(ctx, scope); err != nil {
			errs = append(errs, fmt.Errorf("failed to tick %s: %w", scope, err))
		}
	}

	return errors.Join(errs...)
}

func (u *scopeUnit) sortedSessions() []*GameSession {
	sessions := make([]*GameSession, 0, len(u.sessions))
	for _, session := range u.sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	return sessions
}
