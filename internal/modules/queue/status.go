package queue

import (
	"context"
	"math"
)

// PendingGroup counts waiting signups that share size, tags and power bucket.
type PendingGroup struct {
	Size        int      `json:"size"`
	Tags        []string `json:"tags"`
	PowerBucket *int     `json:"power_bucket,omitempty"`
	Signups     int      `json:"signups"`
	Players     int      `json:"players"`
}

type Status struct {
	Scope   ScopeKey       `json:"scope"`
	Pending []PendingGroup `json:"pending"`
	Matched []GameSession  `json:"matched"`
}

func (s *Service) Status(_ context.Context, scope ScopeKey) Status {
	status := Status{
		Scope:   scope,
		Pending: []PendingGroup{},
		Matched: []GameSession{},
	}

	u := s.lookup(scope)
	if u == nil {
		return status
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	type groupKey struct {
		size    int
		tags    string
		bucket  int
		powered bool
	}

	groups := make(map[groupKey]*PendingGroup)
	var order []groupKey

	for _, record := range u.pool.All() {
		key := groupKey{size: record.Size, tags: tagsKey(record.Tags)}
		if record.PowerLevel != nil {
			key.powered = true
			key.bucket = int(math.Round(*record.PowerLevel))
		}

		g, ok := groups[key]
		if !ok {
			g = &PendingGroup{
				Size: record.Size,
				Tags: append([]string{}, record.Tags...),
			}
			if key.powered {
				bucket := key.bucket
				g.PowerBucket = &bucket
			}
			groups[key] = g
			order = append(order, key)
		}

		g.Signups++
		g.Players += record.PlayerCount()
	}

	for _, key := range order {
		status.Pending = append(status.Pending, *groups[key])
	}

	for _, session := range u.sortedSessions() {
		if session.State == StateMatched {
			status.Matched = append(status.Matched, session.clone())
		}
	}

	return status
}
