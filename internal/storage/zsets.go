package storage

import (
	"math"
	"sort"

	"github.com/eternalApril/keyspace/internal/executor"
)

// ScoredMember is a sorted set element
type ScoredMember struct {
	Member string
	Score  float64
}

func (m *MapStorage) zsetFor(key string, create bool, now int64) (*Entity, error) {
	e, err := m.typed(key, TypeZSet, now)
	if err != nil {
		return nil, err
	}
	if e == nil && create {
		e = newZSet()
		m.put(key, e, now)
	}
	return e, nil
}

// ordered returns the members sorted by score, ties broken lexicographically
func ordered(scores map[string]float64) []ScoredMember {
	out := make([]ScoredMember, 0, len(scores))
	for member, score := range scores {
		out = append(out, ScoredMember{Member: member, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Member < out[j].Member
	})
	return out
}

// ZAdd adds members or updates their scores. Returns the number of new members
func (s *ShardedMapStorage) ZAdd(key string, members []ScoredMember) (int64, error) {
	for _, sm := range members {
		if math.IsNaN(sm.Score) {
			return 0, executor.ErrNotFloat
		}
	}

	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.zsetFor(key, len(members) > 0, now())
	if err != nil || e == nil {
		return 0, err
	}

	var added int64
	scores := e.zset()
	for _, sm := range members {
		if _, ok := scores[sm.Member]; !ok {
			added++
		}
		scores[sm.Member] = sm.Score
	}
	return added, nil
}

// ZIncrBy adds increment to the score of member, adding it with that score when missing
func (s *ShardedMapStorage) ZIncrBy(key string, increment float64, member string) (float64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.zsetFor(key, true, now())
	if err != nil {
		return 0, err
	}

	scores := e.zset()
	score := scores[member] + increment
	if math.IsNaN(score) {
		m.dropIfEmpty(key, e)
		return 0, executor.ErrNaN
	}
	scores[member] = score
	return score, nil
}

// ZCard returns the number of members, 0 when absent
func (s *ShardedMapStorage) ZCard(key string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.zsetFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.zset())), nil
}

// ZRange returns the members ranked between start and stop inclusive, lowest score first
func (s *ShardedMapStorage) ZRange(key string, start, stop int64) ([]ScoredMember, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.zsetFor(key, false, now())
	if err != nil || e == nil {
		return []ScoredMember{}, err
	}

	all := ordered(e.zset())
	lo, hi, ok := clampRange(start, stop, int64(len(all)))
	if !ok {
		return []ScoredMember{}, nil
	}
	return all[lo : hi+1], nil
}

// ZRank returns the 0-based rank of member, lowest score first
func (s *ShardedMapStorage) ZRank(key, member string) (int64, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.zsetFor(key, false, now())
	if err != nil || e == nil {
		return 0, false, err
	}
	if _, ok := e.zset()[member]; !ok {
		return 0, false, nil
	}

	for i, sm := range ordered(e.zset()) {
		if sm.Member == member {
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

// ZRem removes members. Returns how many were present
func (s *ShardedMapStorage) ZRem(key string, members []string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.zsetFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}

	var removed int64
	scores := e.zset()
	for _, member := range members {
		if _, ok := scores[member]; ok {
			delete(scores, member)
			removed++
		}
	}
	m.dropIfEmpty(key, e)
	return removed, nil
}

// ZScore returns the score of member
func (s *ShardedMapStorage) ZScore(key, member string) (float64, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.zsetFor(key, false, now())
	if err != nil || e == nil {
		return 0, false, err
	}
	score, ok := e.zset()[member]
	return score, ok, nil
}
