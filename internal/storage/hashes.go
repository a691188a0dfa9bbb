package storage

import (
	"math"
	"strconv"

	"github.com/eternalApril/keyspace/internal/executor"
)

// hashFor returns the hash at key, creating an empty one when create is set
func (m *MapStorage) hashFor(key string, create bool, now int64) (*Entity, error) {
	e, err := m.typed(key, TypeHash, now)
	if err != nil {
		return nil, err
	}
	if e == nil && create {
		e = newHash()
		m.put(key, e, now)
	}
	return e, nil
}

// HSet sets field in the hash stored at key. Returns true if the field is new
func (s *ShardedMapStorage) HSet(key, field string, value []byte) (bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, true, now())
	if err != nil {
		return false, err
	}

	fields := e.hash()
	_, existed := fields[field]
	fields[field] = value
	return !existed, nil
}

// HSetNX sets field only if it does not exist yet
func (s *ShardedMapStorage) HSetNX(key, field string, value []byte) (bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, true, now())
	if err != nil {
		return false, err
	}

	fields := e.hash()
	if _, existed := fields[field]; existed {
		return false, nil
	}
	fields[field] = value
	return true, nil
}

// HMSet sets all the given fields at once
func (s *ShardedMapStorage) HMSet(key string, values []executor.FieldValue) error {
	if len(values) == 0 {
		return executor.ErrSyntax
	}

	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, true, now())
	if err != nil {
		return err
	}

	fields := e.hash()
	for _, fv := range values {
		fields[fv.Field] = fv.Value
	}
	return nil
}

// HGet returns the value associated with field in the hash stored at key
func (s *ShardedMapStorage) HGet(key, field string) ([]byte, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil || e == nil {
		return nil, false, err
	}

	v, ok := e.hash()[field]
	return v, ok, nil
}

// HMGet returns the values of fields in order, nil for the missing ones
func (s *ShardedMapStorage) HMGet(key string, fields []string) ([][]byte, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(fields))
	if e == nil {
		return out, nil
	}

	stored := e.hash()
	for i, f := range fields {
		if v, ok := stored[f]; ok {
			out[i] = v
		}
	}
	return out, nil
}

// HGetAll returns all fields and values of the hash stored at key
func (s *ShardedMapStorage) HGetAll(key string) (map[string][]byte, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte)
	if e == nil {
		return out, nil
	}
	for f, v := range e.hash() {
		out[f] = v
	}
	return out, nil
}

// HDel removes fields from the hash stored at key. Returns the number of removed fields
func (s *ShardedMapStorage) HDel(key string, fields []string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}

	var removed int64
	stored := e.hash()
	for _, f := range fields {
		if _, ok := stored[f]; ok {
			delete(stored, f)
			removed++
		}
	}
	m.dropIfEmpty(key, e)
	return removed, nil
}

// HExists returns if field is an existing field in the hash stored at key
func (s *ShardedMapStorage) HExists(key, field string) (bool, error) {
	_, ok, err := s.HGet(key, field)
	return ok, err
}

// HLen returns the number of fields contained in the hash stored at key
func (s *ShardedMapStorage) HLen(key string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.hash())), nil
}

// HKeys returns all field names in the hash stored at key, sorted
func (s *ShardedMapStorage) HKeys(key string) ([]string, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil || e == nil {
		return []string{}, err
	}
	return sortedKeys(e.hash()), nil
}

// HVals returns all values in the hash stored at key, in the order of HKeys
func (s *ShardedMapStorage) HVals(key string) ([][]byte, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil || e == nil {
		return [][]byte{}, err
	}

	stored := e.hash()
	names := sortedKeys(stored)
	out := make([][]byte, len(names))
	for i, f := range names {
		out[i] = stored[f]
	}
	return out, nil
}

// HIncrBy adds increment to the integer stored in field
func (s *ShardedMapStorage) HIncrBy(key, field string, increment int64) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, true, now())
	if err != nil {
		return 0, err
	}

	stored := e.hash()
	var current int64
	if v, ok := stored[field]; ok {
		if current, err = strconv.ParseInt(string(v), 10, 64); err != nil {
			return 0, executor.ErrNotInteger
		}
	}

	if (increment > 0 && current > math.MaxInt64-increment) ||
		(increment < 0 && current < math.MinInt64-increment) {
		return 0, executor.ErrOverflow
	}

	current += increment
	stored[field] = strconv.AppendInt(nil, current, 10)
	return current, nil
}

// HIncrByFloat adds increment to the number stored in field
func (s *ShardedMapStorage) HIncrByFloat(key, field string, increment float64) (float64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, true, now())
	if err != nil {
		return 0, err
	}

	stored := e.hash()
	var current float64
	if v, ok := stored[field]; ok {
		if current, ok = parseFloat(v); !ok {
			return 0, executor.ErrNotFloat
		}
	}

	current += increment
	if math.IsNaN(current) || math.IsInf(current, 0) {
		m.dropIfEmpty(key, e)
		return 0, executor.ErrNotFloat
	}

	stored[field] = formatFloat(current)
	return current, nil
}

// HScan runs one step of a cursor scan over the fields of the hash stored at key
func (s *ShardedMapStorage) HScan(key string, cursor uint64, match string, count int64) (uint64, []executor.FieldValue, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.hashFor(key, false, now())
	if err != nil || e == nil {
		return 0, nil, err
	}

	stored := e.hash()
	next, names := scanCollection(sortedKeys(stored), cursor, match, count)
	out := make([]executor.FieldValue, len(names))
	for i, f := range names {
		out[i] = executor.FieldValue{Field: f, Value: stored[f]}
	}
	return next, out, nil
}
