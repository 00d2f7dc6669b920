package queue

import (
	"fmt"
	"sort"
	"time"
)

// partitionKey groups signups that may ever be matched together: same size, same
// tag set, and either all power-free or all power-specified.
type partitionKey struct {
	size    int
	tags    string
	powered bool
}

func partitionOf(s *Signup) partitionKey {
	return partitionKey{
		size:    s.Size,
		tags:    tagsKey(s.Tags),
		powered: s.HasPower(),
	}
}

type partition struct {
	key     partitionKey
	records []*Signup
}

// Pool holds the pending signups of one scope. It is not safe for concurrent use;
// the owning scope unit serializes access.
type Pool struct {
	byID     map[string]*Signup
	byPlayer map[string]*Signup

	// Records per partition, oldest first.
	partitions map[partitionKey][]*Signup
}

func NewPool() *Pool {
	return &Pool{
		byID:       make(map[string]*Signup),
		byPlayer:   make(map[string]*Signup),
		partitions: make(map[partitionKey][]*Signup),
	}
}

func (p *Pool) Add(s *Signup) error {
	if _, exists := p.byID[s.ID]; exists {
		return fmt.Errorf("signup %s already pending", s.ID)
	}

	for _, player := range s.Players {
		if _, exists := p.byPlayer[player]; exists {
			return fmt.Errorf("player %q: %w", player, ErrAlreadyQueued)
		}
	}

	p.byID[s.ID] = s
	for _, player := range s.Players {
		p.byPlayer[player] = s
	}

	key := partitionOf(s)
	p.partitions[key] = insertSorted(p.partitions[key], s)

	return nil
}

func (p *Pool) Remove(id string) (*Signup, bool) {
	s, ok := p.byID[id]
	if !ok {
		return nil, false
	}

	delete(p.byID, id)
	for _, player := range s.Players {
		delete(p.byPlayer, player)
	}

	key := partitionOf(s)
	records := removeByID(p.partitions[key], id)
	if len(records) == 0 {
		delete(p.partitions, key)
	} else {
		p.partitions[key] = records
	}

	return s, true
}

func (p *Pool) Get(id string) (*Signup, bool) {
	s, ok := p.byID[id]
	return s, ok
}

func (p *Pool) ByPlayer(player string) (*Signup, bool) {
	s, ok := p.byPlayer[player]
	return s, ok
}

func (p *Pool) Len() int {
	return len(p.byID)
}

// Expired returns the signups whose deadline is at or before now, oldest first.
func (p *Pool) Expired(now time.Time) []*Signup {
	var expired []*Signup
	for _, s := range p.byID {
		if s.IsExpired(now) {
			expired = append(expired, s)
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].before(expired[j])
	})

	return expired
}

// All returns every pending signup, oldest first.
func (p *Pool) All() []*Signup {
	all := make([]*Signup, 0, len(p.byID))
	for _, s := range p.byID {
		all = append(all, s)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].before(all[j])
	})

	return all
}

// orderedPartitions returns partitions ordered by their oldest waiting signup so
// that the longest wait is considered first.
func (p *Pool) orderedPartitions() []partition {
	parts := make([]partition, 0, len(p.partitions))
	for key, records := range p.partitions {
		parts = append(parts, partition{key: key, records: records})
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].records[0].before(parts[j].records[0])
	})

	return parts
}

func insertSorted(records []*Signup, s *Signup) []*Signup {
	i := sort.Search(len(records), func(i int) bool {
		return s.before(records[i])
	})

	records = append(records, nil)
	copy(records[i+1:], records[i:])
	records[i] = s
	return records
}

func removeByID(records []*Signup, id string) []*Signup {
	for i, s := range records {
		if s.ID == id {
			return append(records[:i], records[i+1:]...)
		}
	}
	return records
}
