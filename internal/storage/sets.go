package storage

import (
	"math/rand/v2"
)

func (m *MapStorage) setFor(key string, create bool, now int64) (*Entity, error) {
	e, err := m.typed(key, TypeSet, now)
	if err != nil {
		return nil, err
	}
	if e == nil && create {
		e = newSet()
		m.put(key, e, now)
	}
	return e, nil
}

// SAdd adds members to the set stored at key. Returns the number of members that were new
func (s *ShardedMapStorage) SAdd(key string, members []string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, len(members) > 0, now())
	if err != nil || e == nil {
		return 0, err
	}

	var added int64
	stored := e.set()
	for _, member := range members {
		if _, ok := stored[member]; !ok {
			stored[member] = struct{}{}
			added++
		}
	}
	return added, nil
}

// SRem removes members from the set. Returns the number of members that were present
func (s *ShardedMapStorage) SRem(key string, members []string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}

	var removed int64
	stored := e.set()
	for _, member := range members {
		if _, ok := stored[member]; ok {
			delete(stored, member)
			removed++
		}
	}
	m.dropIfEmpty(key, e)
	return removed, nil
}

// SCard returns the cardinality of the set, 0 when absent
func (s *ShardedMapStorage) SCard(key string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.set())), nil
}

// SIsMember reports whether member belongs to the set
func (s *ShardedMapStorage) SIsMember(key, member string) (bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, false, now())
	if err != nil || e == nil {
		return false, err
	}
	_, ok := e.set()[member]
	return ok, nil
}

// SMembers returns every member of the set, sorted
func (s *ShardedMapStorage) SMembers(key string) ([]string, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, false, now())
	if err != nil || e == nil {
		return []string{}, err
	}
	return sortedKeys(e.set()), nil
}

// SMove moves member from source to destination. Returns false if member was not in source
func (s *ShardedMapStorage) SMove(source, destination, member string) (bool, error) {
	unlock := s.lockKeys(source, destination)
	defer unlock()

	now := now()
	srcShard, dstShard := s.shard(source), s.shard(destination)

	src, err := srcShard.setFor(source, false, now)
	if err != nil {
		return false, err
	}
	if _, err := dstShard.setFor(destination, false, now); err != nil {
		return false, err
	}
	if src == nil {
		return false, nil
	}
	if _, ok := src.set()[member]; !ok {
		return false, nil
	}
	if source == destination {
		return true, nil
	}

	delete(src.set(), member)
	srcShard.dropIfEmpty(source, src)

	dst, _ := dstShard.setFor(destination, true, now) //nolint:errcheck
	dst.set()[member] = struct{}{}
	return true, nil
}

// SPop removes and returns a random member
func (s *ShardedMapStorage) SPop(key string) (string, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, false, now())
	if err != nil || e == nil {
		return "", false, err
	}

	members := sortedKeys(e.set())
	member := members[rand.IntN(len(members))]
	delete(e.set(), member)
	m.dropIfEmpty(key, e)
	return member, true, nil
}

// SRandMember returns a random member without removing it
func (s *ShardedMapStorage) SRandMember(key string) (string, bool, error) {
	members, err := s.SRandMembers(key, 1)
	if err != nil || len(members) == 0 {
		return "", false, err
	}
	return members[0], true, nil
}

// SRandMembers returns up to count distinct random members when count is positive,
// or exactly -count members that may repeat when count is negative
func (s *ShardedMapStorage) SRandMembers(key string, count int64) ([]string, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, false, now())
	if err != nil || e == nil || count == 0 {
		return []string{}, err
	}

	members := sortedKeys(e.set())
	if count < 0 {
		out := make([]string, -count)
		for i := range out {
			out[i] = members[rand.IntN(len(members))]
		}
		return out, nil
	}

	rand.Shuffle(len(members), func(i, j int) {
		members[i], members[j] = members[j], members[i]
	})
	if int64(len(members)) > count {
		members = members[:count]
	}
	return members, nil
}

// SScan runs one step of a cursor scan over the members of the set stored at key
func (s *ShardedMapStorage) SScan(key string, cursor uint64, match string, count int64) (uint64, []string, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.setFor(key, false, now())
	if err != nil || e == nil {
		return 0, nil, err
	}

	next, members := scanCollection(sortedKeys(e.set()), cursor, match, count)
	return next, members, nil
}

type setOperation int

const (
	setDiff setOperation = iota
	setInter
	setUnion
)

// combine evaluates op over the sets at keys. The caller holds the locks of every key.
// Missing keys are empty sets; a key of another kind fails the whole operation
func (s *ShardedMapStorage) combine(op setOperation, keys []string, now int64) (map[string]struct{}, error) {
	sets := make([]map[string]struct{}, len(keys))
	for i, key := range keys {
		e, err := s.shard(key).setFor(key, false, now)
		if err != nil {
			return nil, err
		}
		if e != nil {
			sets[i] = e.set()
		}
	}

	out := make(map[string]struct{})
	if len(sets) == 0 {
		return out, nil
	}

	switch op {
	case setDiff:
		for member := range sets[0] {
			out[member] = struct{}{}
		}
		for _, other := range sets[1:] {
			for member := range other {
				delete(out, member)
			}
		}

	case setInter:
		for member := range sets[0] {
			inAll := true
			for _, other := range sets[1:] {
				if _, ok := other[member]; !ok {
					inAll = false
					break
				}
			}
			if inAll {
				out[member] = struct{}{}
			}
		}

	case setUnion:
		for _, set := range sets {
			for member := range set {
				out[member] = struct{}{}
			}
		}
	}

	return out, nil
}

func (s *ShardedMapStorage) algebra(op setOperation, keys []string) ([]string, error) {
	unlock := s.lockKeys(keys...)
	defer unlock()

	res, err := s.combine(op, keys, now())
	if err != nil {
		return nil, err
	}
	return sortedKeys(res), nil
}

// algebraStore writes the result to destination, replacing whatever was there.
// An empty result leaves destination absent
func (s *ShardedMapStorage) algebraStore(op setOperation, destination string, keys []string) (int64, error) {
	unlock := s.lockKeys(append([]string{destination}, keys...)...)
	defer unlock()

	now := now()
	res, err := s.combine(op, keys, now)
	if err != nil {
		return 0, err
	}

	dst := s.shard(destination)
	dst.remove(destination)
	if len(res) > 0 {
		dst.put(destination, &Entity{Type: TypeSet, Value: res}, now)
	}
	return int64(len(res)), nil
}

// SDiff returns the members of the first set that are in none of the others
func (s *ShardedMapStorage) SDiff(keys ...string) ([]string, error) {
	return s.algebra(setDiff, keys)
}

// SInter returns the members common to all sets
func (s *ShardedMapStorage) SInter(keys ...string) ([]string, error) {
	return s.algebra(setInter, keys)
}

// SUnion returns the members present in at least one set
func (s *ShardedMapStorage) SUnion(keys ...string) ([]string, error) {
	return s.algebra(setUnion, keys)
}

// SDiffStore stores SDiff in destination and returns its cardinality
func (s *ShardedMapStorage) SDiffStore(destination string, keys ...string) (int64, error) {
	return s.algebraStore(setDiff, destination, keys)
}

// SInterStore stores SInter in destination and returns its cardinality
func (s *ShardedMapStorage) SInterStore(destination string, keys ...string) (int64, error) {
	return s.algebraStore(setInter, destination, keys)
}

// SUnionStore stores SUnion in destination and returns its cardinality
func (s *ShardedMapStorage) SUnionStore(destination string, keys ...string) (int64, error) {
	return s.algebraStore(setUnion, destination, keys)
}
