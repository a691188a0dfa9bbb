package storage

import (
	"errors"
	"hash/fnv"
	"math/bits"
	"slices"
	"sync"
	"time"

	"github.com/eternalApril/keyspace/internal/executor"
)

// ShardedMapStorage is a thread-safe multi-kind key-value storage,
// divided into segments (shards) to reduce contention for locking.
// Commands touching several keys lock every involved shard in index order,
// so they apply atomically
type ShardedMapStorage struct {
	shards    []*MapStorage
	shardMask uint32
}

// NewShardedMapStorage creates a new instance of ShardedMapStorage.
// The requestedShards parameter must be a power of two for efficient allocation.
// The maximum allowed number of shards is 64.
func NewShardedMapStorage(requestedShards uint) (*ShardedMapStorage, error) {
	if bits.OnesCount(requestedShards) != 1 {
		return nil, errors.New("requested shards must be a power of 2")
	}

	if requestedShards > 64 {
		return nil, errors.New("requested shards must be less or equal than 64")
	}

	s := &ShardedMapStorage{
		shards:    make([]*MapStorage, requestedShards),
		shardMask: uint32(requestedShards - 1),
	}

	var i uint
	for i = 0; i < requestedShards; i++ {
		s.shards[i] = NewMapStorage()
	}

	return s, nil
}

// getShardIndex returns index of shard by key
func (s *ShardedMapStorage) getShardIndex(key string) uint32 {
	hash := fnv.New32a()
	hash.Write([]byte(key)) //nolint:errcheck

	return hash.Sum32() & s.shardMask
}

func (s *ShardedMapStorage) shard(key string) *MapStorage {
	return s.shards[s.getShardIndex(key)]
}

// locked write-locks the shard owning key
func (s *ShardedMapStorage) locked(key string) (*MapStorage, func()) {
	m := s.shard(key)
	m.mu.Lock()
	return m, m.mu.Unlock
}

// lockKeys write-locks every shard owning one of keys, in index order
func (s *ShardedMapStorage) lockKeys(keys ...string) func() {
	idx := make([]uint32, 0, len(keys))
	for _, key := range keys {
		idx = append(idx, s.getShardIndex(key))
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)

	for _, i := range idx {
		s.shards[i].mu.Lock()
	}

	return func() {
		for i := len(idx) - 1; i >= 0; i-- {
			s.shards[idx[i]].mu.Unlock()
		}
	}
}

// Del deletes the keys. Returns the number of keys that existed
func (s *ShardedMapStorage) Del(keys ...string) int64 {
	var deleted int64
	now := now()
	for _, key := range keys {
		m, unlock := s.locked(key)
		if m.peek(key, now) != nil {
			m.remove(key)
			deleted++
		}
		unlock()
	}
	return deleted
}

// Exists returns how many of keys exist. A key mentioned twice is counted twice
func (s *ShardedMapStorage) Exists(keys ...string) int64 {
	var found int64
	now := now()
	for _, key := range keys {
		m, unlock := s.locked(key)
		if m.peek(key, now) != nil {
			found++
		}
		unlock()
	}
	return found
}

// ExpireAt sets the absolute expiration of key. A deadline in the past deletes the key.
// Returns false if the key does not exist
func (s *ShardedMapStorage) ExpireAt(key string, at time.Time) bool {
	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	if m.lookup(key, now) == nil {
		return false
	}

	deadline := at.UnixNano()
	if deadline <= now {
		m.remove(key)
		return true
	}

	m.expires[key] = deadline
	return true
}

// Persist removes the expiration date of the key, making it eternal.
// Returns false if the key was not found or had no TTL
func (s *ShardedMapStorage) Persist(key string) bool {
	m, unlock := s.locked(key)
	defer unlock()

	if m.lookup(key, now()) == nil {
		return false
	}
	if _, hasExp := m.expires[key]; !hasExp {
		return false
	}

	delete(m.expires, key)
	return true
}

// Expiry returns the remaining lifetime and status as ExpiryStatus
func (s *ShardedMapStorage) Expiry(key string) (time.Duration, ExpiryStatus) {
	m, unlock := s.locked(key)
	defer unlock()

	return m.expiry(key, now())
}

// Type returns the kind of value stored at key, "none" if absent
func (s *ShardedMapStorage) Type(key string) string {
	m, unlock := s.locked(key)
	defer unlock()

	e := m.peek(key, now())
	if e == nil {
		return "none"
	}
	return e.Type.String()
}

// Dump serializes the value stored at key
func (s *ShardedMapStorage) Dump(key string) ([]byte, bool) {
	m, unlock := s.locked(key)
	defer unlock()

	e := m.lookup(key, now())
	if e == nil {
		return nil, false
	}

	payload, err := dumpEntity(e)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// ObjectEncoding returns the internal representation name of the value at key
func (s *ShardedMapStorage) ObjectEncoding(key string) (string, bool) {
	m, unlock := s.locked(key)
	defer unlock()

	e := m.peek(key, now())
	if e == nil {
		return "", false
	}
	return e.Encoding(), true
}

// ObjectIdleTime returns the time since the value at key was last accessed
func (s *ShardedMapStorage) ObjectIdleTime(key string) (time.Duration, bool) {
	m, unlock := s.locked(key)
	defer unlock()

	now := now()
	e := m.peek(key, now)
	if e == nil {
		return 0, false
	}
	return time.Duration(now - e.LastAccess), true
}

// ObjectRefCount returns the number of references to the value at key.
// Values are never shared, so a present key always reports 1
func (s *ShardedMapStorage) ObjectRefCount(key string) (int64, bool) {
	m, unlock := s.locked(key)
	defer unlock()

	if m.peek(key, now()) == nil {
		return 0, false
	}
	return 1, true
}

// Rename moves the value and expiration of key to newKey, overwriting it
func (s *ShardedMapStorage) Rename(key, newKey string) error {
	_, err := s.rename(key, newKey, false)
	return err
}

// RenameNX renames key only if newKey does not exist
func (s *ShardedMapStorage) RenameNX(key, newKey string) (bool, error) {
	return s.rename(key, newKey, true)
}

func (s *ShardedMapStorage) rename(key, newKey string, nx bool) (bool, error) {
	unlock := s.lockKeys(key, newKey)
	defer unlock()

	now := now()
	src := s.shard(key)
	e := src.lookup(key, now)
	if e == nil {
		return false, executor.ErrNoSuchKey
	}
	if key == newKey {
		return false, executor.ErrSameKey
	}

	dst := s.shard(newKey)
	if nx && dst.peek(newKey, now) != nil {
		return false, nil
	}

	exp, hasExp := src.expires[key]
	src.remove(key)
	dst.remove(newKey)
	dst.put(newKey, e, now)
	if hasExp {
		dst.expires[newKey] = exp
	}
	return true, nil
}

// Scan visits up to count keys starting at cursor and returns those matching the glob pattern
func (s *ShardedMapStorage) Scan(cursor uint64, match string, count int64) (uint64, []string) {
	budget := scanBudget(count)

	shard, pos := 0, uint32(0)
	if cursor != 0 {
		if cursor&cursorLive == 0 {
			return 0, nil
		}
		shard, pos = int(cursor>>33), uint32(cursor)
	}

	var out []string
	now := now()
	for shard < len(s.shards) {
		m := s.shards[shard]
		m.mu.RLock()
		names := m.liveKeys(now)
		m.mu.RUnlock()

		visited, next, more := scanHashed(names, pos, budget)
		out = appendMatching(out, visited, match)
		if more {
			return uint64(shard)<<33 | cursorLive | uint64(next), out
		}

		budget -= len(visited)
		shard++
		pos = 0
		if budget <= 0 {
			break
		}
	}

	if shard >= len(s.shards) {
		return 0, out
	}
	return uint64(shard)<<33 | cursorLive, out
}

// Len returns the number of live keys
func (s *ShardedMapStorage) Len() int64 {
	var total int64
	now := now()
	for _, m := range s.shards {
		m.mu.RLock()
		total += int64(len(m.liveKeys(now)))
		m.mu.RUnlock()
	}
	return total
}

// Flush removes every key
func (s *ShardedMapStorage) Flush() {
	for _, m := range s.shards {
		m.mu.Lock()
		m.data = make(map[string]*Entity)
		m.expires = make(map[string]int64)
		m.mu.Unlock()
	}
}

// DeleteExpired randomly selects a limit of keys from each shard and delete if his TTL has expired
func (s *ShardedMapStorage) DeleteExpired(limit int) float64 {
	var wg sync.WaitGroup
	var totalRatio float64
	var mu sync.Mutex // protects totalRatio

	shardCount := len(s.shards)
	wg.Add(shardCount)

	for _, shard := range s.shards {
		go func(m *MapStorage) {
			ratio := m.DeleteExpired(limit)

			mu.Lock()
			totalRatio += ratio
			mu.Unlock()

			wg.Done()
		}(shard)
	}

	wg.Wait()

	return totalRatio / float64(shardCount)
}
