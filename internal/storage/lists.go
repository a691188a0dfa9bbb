package storage

import (
	"bytes"

	"github.com/eternalApril/keyspace/internal/executor"
)

func (m *MapStorage) listFor(key string, create bool, now int64) (*Entity, error) {
	e, err := m.typed(key, TypeList, now)
	if err != nil {
		return nil, err
	}
	if e == nil && create {
		e = newList()
		m.put(key, e, now)
	}
	return e, nil
}

// listIndex converts a possibly negative index into a position, ok is false when out of range
func listIndex(index int64, n int) (int, bool) {
	if index < 0 {
		index += int64(n)
	}
	if index < 0 || index >= int64(n) {
		return 0, false
	}
	return int(index), true
}

// LPush inserts values at the head one after another, so the last value ends up first.
// With onlyExisting set nothing happens when the list does not exist
func (s *ShardedMapStorage) LPush(key string, values [][]byte, onlyExisting bool) (int64, error) {
	return s.push(key, values, true, onlyExisting)
}

// RPush appends values at the tail
func (s *ShardedMapStorage) RPush(key string, values [][]byte, onlyExisting bool) (int64, error) {
	return s.push(key, values, false, onlyExisting)
}

func (s *ShardedMapStorage) push(key string, values [][]byte, head, onlyExisting bool) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, !onlyExisting && len(values) > 0, now())
	if err != nil || e == nil {
		return 0, err
	}

	items := e.list()
	if head {
		prefix := make([][]byte, len(values), len(values)+len(items))
		for i, v := range values {
			prefix[len(values)-1-i] = v
		}
		items = append(prefix, items...)
	} else {
		items = append(items, values...)
	}
	e.Value = items
	return int64(len(items)), nil
}

// LPop removes and returns the first element
func (s *ShardedMapStorage) LPop(key string) ([]byte, bool, error) {
	return s.pop(key, true)
}

// RPop removes and returns the last element
func (s *ShardedMapStorage) RPop(key string) ([]byte, bool, error) {
	return s.pop(key, false)
}

func (s *ShardedMapStorage) pop(key string, head bool) ([]byte, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil || e == nil {
		return nil, false, err
	}

	v := popFrom(e, head)
	m.dropIfEmpty(key, e)
	return v, true, nil
}

func popFrom(e *Entity, head bool) []byte {
	items := e.list()
	var v []byte
	if head {
		v, items = items[0], items[1:]
	} else {
		v, items = items[len(items)-1], items[:len(items)-1]
	}
	e.Value = items
	return v
}

// RPopLPush atomically moves the last element of source to the head of destination
func (s *ShardedMapStorage) RPopLPush(source, destination string) ([]byte, bool, error) {
	unlock := s.lockKeys(source, destination)
	defer unlock()

	now := now()
	srcShard, dstShard := s.shard(source), s.shard(destination)

	src, err := srcShard.listFor(source, false, now)
	if err != nil {
		return nil, false, err
	}
	if src == nil {
		return nil, false, nil
	}
	if _, err := dstShard.listFor(destination, false, now); err != nil {
		return nil, false, err
	}

	v := popFrom(src, false)
	srcShard.dropIfEmpty(source, src)

	dst, _ := dstShard.listFor(destination, true, now) //nolint:errcheck
	dst.Value = append([][]byte{v}, dst.list()...)
	return v, true, nil
}

// LIndex returns the element at index
func (s *ShardedMapStorage) LIndex(key string, index int64) ([]byte, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil || e == nil {
		return nil, false, err
	}

	i, ok := listIndex(index, len(e.list()))
	if !ok {
		return nil, false, nil
	}
	return e.list()[i], true, nil
}

// LInsert inserts value before or after the first occurrence of pivot.
// Returns the new length, -1 when pivot is missing and 0 when the list does not exist
func (s *ShardedMapStorage) LInsert(key string, before bool, pivot, value []byte) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}

	items := e.list()
	at := -1
	for i, v := range items {
		if bytes.Equal(v, pivot) {
			at = i
			break
		}
	}
	if at < 0 {
		return -1, nil
	}
	if !before {
		at++
	}

	grown := make([][]byte, 0, len(items)+1)
	grown = append(grown, items[:at]...)
	grown = append(grown, value)
	grown = append(grown, items[at:]...)
	e.Value = grown
	return int64(len(grown)), nil
}

// LLen returns the length of the list, 0 when absent
func (s *ShardedMapStorage) LLen(key string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.list())), nil
}

// LRange returns the elements between start and stop inclusive
func (s *ShardedMapStorage) LRange(key string, start, stop int64) ([][]byte, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil || e == nil {
		return [][]byte{}, err
	}

	items := e.list()
	lo, hi, ok := clampRange(start, stop, int64(len(items)))
	if !ok {
		return [][]byte{}, nil
	}
	return append([][]byte(nil), items[lo:hi+1]...), nil
}

// LRem removes up to |count| occurrences of value: from the head when count is
// positive, from the tail when negative, all of them when zero
func (s *ShardedMapStorage) LRem(key string, count int64, value []byte) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}

	items := e.list()
	limit := count
	if limit < 0 {
		limit = -limit
	}

	step, i := 1, 0
	if count < 0 {
		step, i = -1, len(items)-1
	}

	drop := make([]bool, len(items))
	var removed int64
	for ; i >= 0 && i < len(items); i += step {
		if limit != 0 && removed == limit {
			break
		}
		if bytes.Equal(items[i], value) {
			drop[i] = true
			removed++
		}
	}

	kept := make([][]byte, 0, len(items)-int(removed))
	for i, v := range items {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	e.Value = kept
	m.dropIfEmpty(key, e)
	return removed, nil
}

// LSet replaces the element at index
func (s *ShardedMapStorage) LSet(key string, index int64, value []byte) error {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil {
		return err
	}
	if e == nil {
		return executor.ErrNoSuchKey
	}

	items := e.list()
	i, ok := listIndex(index, len(items))
	if !ok {
		return executor.ErrOutOfRange
	}

	replaced := append([][]byte(nil), items...)
	replaced[i] = value
	e.Value = replaced
	return nil
}

// LTrim keeps only the elements between start and stop inclusive
func (s *ShardedMapStorage) LTrim(key string, start, stop int64) error {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.listFor(key, false, now())
	if err != nil || e == nil {
		return err
	}

	items := e.list()
	lo, hi, ok := clampRange(start, stop, int64(len(items)))
	if !ok {
		e.Value = [][]byte(nil)
	} else {
		e.Value = append([][]byte(nil), items[lo:hi+1]...)
	}
	m.dropIfEmpty(key, e)
	return nil
}
