package queue

import (
	"sort"
)

// powerEpsilon absorbs float rounding when comparing power differences to the tolerance.
const powerEpsilon = 1e-9

// strategy finds signups in one partition whose players add up to exactly size.
// Candidates are given oldest first.
type strategy interface {
	find(candidates []*Signup, size int) []*Signup
}

// Matcher assembles at most one full game per call from a pool.
type Matcher struct {
	powerFree strategy
	powered   strategy
}

func NewMatcher(tolerance float64) Matcher {
	return Matcher{
		powerFree: powerFreeStrategy{},
		powered:   powerStrategy{tolerance: tolerance},
	}
}

// Match returns the signups forming one game, or nil when the pool cannot form one.
// The pool is not modified.
func (m Matcher) Match(pool *Pool) []*Signup {
	for _, part := range pool.orderedPartitions() {
		s := m.powerFree
		if part.key.powered {
			s = m.powered
		}

		if found := s.find(part.records, part.key.size); found != nil {
			return found
		}
	}

	return nil
}

type powerFreeStrategy struct{}

func (powerFreeStrategy) find(candidates []*Signup, size int) []*Signup {
	return fillExact(candidates, size)
}

// powerStrategy only combines signups whose power levels are all within tolerance of
// each other, preferring the tightest spread and then the oldest signups.
type powerStrategy struct {
	tolerance float64
}

func (s powerStrategy) find(candidates []*Signup, size int) []*Signup {
	// Every power window is a subset of the partition.
	if fillExact(candidates, size) == nil {
		return nil
	}

	lows := distinctPowers(candidates)
	spreads := s.spreads(lows)

	// A window only grows with its spread, so feasibility is monotonic and the
	// tightest workable spread can be found by bisection.
	if !s.anyAt(candidates, lows, spreads[len(spreads)-1], size) {
		return nil
	}

	lo, hi := 0, len(spreads)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if s.anyAt(candidates, lows, spreads[mid], size) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	return s.bestAt(candidates, lows, spreads[lo], size)
}

// anyAt reports whether some window of the given spread can seat a full game.
func (s powerStrategy) anyAt(candidates []*Signup, lows []float64, spread float64, size int) bool {
	for _, low := range lows {
		if fillExact(powerWindow(candidates, low, spread), size) != nil {
			return true
		}
	}
	return false
}

// bestAt returns the oldest combination among all windows of the given spread.
func (s powerStrategy) bestAt(candidates []*Signup, lows []float64, spread float64, size int) []*Signup {
	var best []*Signup

	for _, low := range lows {
		found := fillExact(powerWindow(candidates, low, spread), size)
		if found != nil && (best == nil || olderCombination(found, best)) {
			best = found
		}
	}

	return best
}

// powerWindow keeps the candidates with power in [low, low+spread], in their original order.
func powerWindow(candidates []*Signup, low, spread float64) []*Signup {
	window := make([]*Signup, 0, len(candidates))
	for _, c := range candidates {
		if d := *c.PowerLevel - low; d >= 0 && d <= spread+powerEpsilon {
			window = append(window, c)
		}
	}
	return window
}

// spreads lists every distinct pairwise power difference within tolerance, ascending.
func (s powerStrategy) spreads(powers []float64) []float64 {
	spreads := []float64{0}
	for i := range powers {
		for j := i + 1; j < len(powers); j++ {
			d := powers[j] - powers[i]
			if d > s.tolerance+powerEpsilon {
				break
			}
			spreads = append(spreads, d)
		}
	}

	sort.Float64s(spreads)

	unique := spreads[:1]
	for _, d := range spreads[1:] {
		if d-unique[len(unique)-1] > powerEpsilon {
			unique = append(unique, d)
		}
	}

	return unique
}

func distinctPowers(candidates []*Signup) []float64 {
	powers := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		powers = append(powers, *c.PowerLevel)
	}

	sort.Float64s(powers)

	unique := make([]float64, 0, len(powers))
	for _, p := range powers {
		if len(unique) == 0 || p != unique[len(unique)-1] {
			unique = append(unique, p)
		}
	}

	return unique
}

// fillExact picks signups, oldest first, whose player counts sum to exactly size.
// A signup that would overshoot is skipped, never split. The search backtracks so a
// combination is found whenever one exists, and the one returned is the one that
// includes the oldest signups. Failed (index, remaining) states are memoized, which
// bounds the work by len(candidates) * size.
func fillExact(candidates []*Signup, size int) []*Signup {
	if size <= 0 || playerTotal(candidates) < size {
		return nil
	}

	type state struct{ index, remaining int }
	failed := make(map[state]struct{})
	picked := make([]*Signup, 0, size)

	var search func(index, remaining int) bool
	search = func(index, remaining int) bool {
		if remaining == 0 {
			return true
		}

		if index == len(candidates) {
			return false
		}

		st := state{index, remaining}
		if _, ok := failed[st]; ok {
			return false
		}

		if n := candidates[index].PlayerCount(); n <= remaining {
			picked = append(picked, candidates[index])
			if search(index+1, remaining-n) {
				return true
			}
			picked = picked[:len(picked)-1]
		}

		if search(index+1, remaining) {
			return true
		}

		failed[st] = struct{}{}
		return false
	}

	if !search(0, size) {
		return nil
	}

	return picked
}

// olderCombination compares two oldest-first combinations member by member.
func olderCombination(a, b []*Signup) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		return a[i].before(b[i])
	}
	return len(a) < len(b)
}

func playerTotal(records []*Signup) int {
	total := 0
	for _, r := range records {
		total += r.PlayerCount()
	}
	return total
}
