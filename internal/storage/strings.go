package storage

import (
	"math"
	"math/bits"
	"strconv"

	"github.com/eternalApril/keyspace/internal/executor"
)

// maxBitOffset bounds SETBIT and SETRANGE to a 512MB string
const maxBitOffset = 1<<32 - 1

// Get returns the string value and true if the key is found
func (s *ShardedMapStorage) Get(key string) ([]byte, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.typed(key, TypeString, now())
	if err != nil || e == nil {
		return nil, false, err
	}
	return e.str(), true, nil
}

// Set writes the value based on the options. Returns true if recording has been performed.
// Any existing value is replaced regardless of its kind
func (s *ShardedMapStorage) Set(key string, value []byte, options SetOptions) bool {
	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	exists := m.peek(key, now) != nil

	if options.NX && exists {
		return false
	}

	if options.XX && !exists {
		return false
	}

	m.put(key, newString(value), now)

	if options.KeepTTL {
		// if KEEPTTL is set, we do nothing to m.expires (retain existing)
		return true
	}

	if options.TTL == 0 {
		// no TTL provided (and not KEEPTTL), so we remove any existing expiration (persist)
		delete(m.expires, key)
	} else {
		m.expires[key] = now + int64(options.TTL)
	}

	return true
}

// GetSet stores value and returns the previous string, clearing any expiration
func (s *ShardedMapStorage) GetSet(key string, value []byte) ([]byte, bool, error) {
	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	e, err := m.typed(key, TypeString, now)
	if err != nil {
		return nil, false, err
	}

	m.put(key, newString(value), now)
	delete(m.expires, key)

	if e == nil {
		return nil, false, nil
	}
	return e.str(), true, nil
}

// Append adds value at the end of the string, creating it when absent. Returns the new length
func (s *ShardedMapStorage) Append(key string, value []byte) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	e, err := m.typed(key, TypeString, now)
	if err != nil {
		return 0, err
	}
	if e == nil {
		e = newString(nil)
		m.put(key, e, now)
	}

	if len(e.str())+len(value) > maxBitOffset/8+1 {
		return 0, executor.ErrOutOfRange
	}

	e.Value = append(append([]byte(nil), e.str()...), value...)
	return int64(len(e.str())), nil
}

// StrLen returns the length of the string, 0 when absent
func (s *ShardedMapStorage) StrLen(key string) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.typed(key, TypeString, now())
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.str())), nil
}

// IncrBy adds increment to the integer stored at key, starting from 0 when absent.
// The expiration of the key is kept
func (s *ShardedMapStorage) IncrBy(key string, increment int64) (int64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	e, err := m.typed(key, TypeString, now)
	if err != nil {
		return 0, err
	}

	var current int64
	if e != nil {
		current, err = strconv.ParseInt(string(e.str()), 10, 64)
		if err != nil {
			return 0, executor.ErrNotInteger
		}
	}

	if (increment > 0 && current > math.MaxInt64-increment) ||
		(increment < 0 && current < math.MinInt64-increment) {
		return 0, executor.ErrOverflow
	}

	current += increment
	value := strconv.AppendInt(nil, current, 10)
	if e == nil {
		m.put(key, newString(value), now)
	} else {
		e.Value = value
	}
	return current, nil
}

// IncrByFloat adds increment to the number stored at key, starting from 0 when absent
func (s *ShardedMapStorage) IncrByFloat(key string, increment float64) (float64, error) {
	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	e, err := m.typed(key, TypeString, now)
	if err != nil {
		return 0, err
	}

	var current float64
	if e != nil {
		var ok bool
		if current, ok = parseFloat(e.str()); !ok {
			return 0, executor.ErrNotFloat
		}
	}

	current += increment
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return 0, executor.ErrNotFloat
	}

	value := formatFloat(current)
	if e == nil {
		m.put(key, newString(value), now)
	} else {
		e.Value = value
	}
	return current, nil
}

// GetRange returns the substring between start and end inclusive; negative offsets count from the end
func (s *ShardedMapStorage) GetRange(key string, start, end int64) ([]byte, error) {
	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.typed(key, TypeString, now())
	if err != nil || e == nil {
		return []byte{}, err
	}

	v := e.str()
	lo, hi, ok := clampRange(start, end, int64(len(v)))
	if !ok {
		return []byte{}, nil
	}
	return append([]byte(nil), v[lo:hi+1]...), nil
}

// SetRange overwrites part of the string starting at offset, zero-padding as needed.
// Returns the new length
func (s *ShardedMapStorage) SetRange(key string, offset int64, value []byte) (int64, error) {
	if offset < 0 || offset+int64(len(value)) > maxBitOffset/8+1 {
		return 0, executor.ErrOutOfRange
	}

	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	e, err := m.typed(key, TypeString, now)
	if err != nil {
		return 0, err
	}

	if e == nil {
		if len(value) == 0 {
			return 0, nil
		}
		e = newString(nil)
		m.put(key, e, now)
	}

	v := e.str()
	if len(value) == 0 {
		return int64(len(v)), nil
	}

	end := offset + int64(len(value))
	buf := make([]byte, max(int64(len(v)), end))
	copy(buf, v)
	copy(buf[offset:], value)
	e.Value = buf
	return int64(len(buf)), nil
}

// GetBit returns the bit at offset, false beyond the end of the string
func (s *ShardedMapStorage) GetBit(key string, offset int64) (bool, error) {
	if offset < 0 || offset > maxBitOffset {
		return false, executor.ErrBitOffset
	}

	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.typed(key, TypeString, now())
	if err != nil || e == nil {
		return false, err
	}

	v := e.str()
	idx := offset >> 3
	if idx >= int64(len(v)) {
		return false, nil
	}
	return v[idx]&(0x80>>(offset&7)) != 0, nil
}

// SetBit sets or clears the bit at offset, growing the string. Returns the previous bit
func (s *ShardedMapStorage) SetBit(key string, offset int64, bit bool) (bool, error) {
	if offset < 0 || offset > maxBitOffset {
		return false, executor.ErrBitOffset
	}

	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	e, err := m.typed(key, TypeString, now)
	if err != nil {
		return false, err
	}
	if e == nil {
		e = newString(nil)
		m.put(key, e, now)
	}

	v := e.str()
	idx := offset >> 3
	if idx >= int64(len(v)) {
		grown := make([]byte, idx+1)
		copy(grown, v)
		v = grown
	} else {
		v = append([]byte(nil), v...)
	}

	mask := byte(0x80 >> (offset & 7))
	prev := v[idx]&mask != 0
	if bit {
		v[idx] |= mask
	} else {
		v[idx] &^= mask
	}
	e.Value = v
	return prev, nil
}

// BitCount counts the set bits of the string, optionally within the byte range [pos[0], pos[1]]
func (s *ShardedMapStorage) BitCount(key string, pos ...int64) (int64, error) {
	if len(pos) != 0 && len(pos) != 2 {
		return 0, executor.ErrSyntax
	}

	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.typed(key, TypeString, now())
	if err != nil || e == nil {
		return 0, err
	}

	v := e.str()
	lo, hi := int64(0), int64(len(v))-1
	if len(pos) == 2 {
		var ok bool
		if lo, hi, ok = clampRange(pos[0], pos[1], int64(len(v))); !ok {
			return 0, nil
		}
	}

	var count int64
	for _, b := range v[lo : hi+1] {
		count += int64(bits.OnesCount8(b))
	}
	return count, nil
}

// BitPos returns the position of the first bit equal to bit, searching the byte
// range [pos[0], pos[1]]. Without an explicit end, a search for a clear bit in a
// string of set bits reports the first bit past the end
func (s *ShardedMapStorage) BitPos(key string, bit bool, pos ...int64) (int64, error) {
	if len(pos) > 2 {
		return 0, executor.ErrSyntax
	}

	m, unlock := s.locked(key)
	defer unlock()

	e, err := m.typed(key, TypeString, now())
	if err != nil {
		return 0, err
	}
	if e == nil {
		if bit {
			return -1, nil
		}
		return 0, nil
	}

	v := e.str()
	start, end := int64(0), int64(len(v))-1
	if len(pos) >= 1 {
		start = pos[0]
	}
	if len(pos) == 2 {
		end = pos[1]
	}

	lo, hi, ok := clampRange(start, end, int64(len(v)))
	if !ok {
		return -1, nil
	}

	for i := lo; i <= hi; i++ {
		b := v[i]
		if !bit {
			b = ^b
		}
		if b != 0 {
			return i*8 + int64(bits.LeadingZeros8(b)), nil
		}
	}

	if !bit && len(pos) < 2 {
		return (hi + 1) * 8, nil
	}
	return -1, nil
}

// clampRange converts the inclusive, possibly negative range [start, end] over a
// sequence of length n into valid indexes. ok is false when the range is empty
func clampRange(start, end, n int64) (lo, hi int64, ok bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start = n + start
	}
	if end < 0 {
		end = n + end
	}
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if end >= n {
		end = n - 1
	}
	if start > end {
		return 0, 0, false
	}
	return start, end, true
}
