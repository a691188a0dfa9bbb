package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/eternalApril/keyspace/internal/executor"
)

// MapStorage is a single shard of the store. Every method except DeleteExpired
// expects the caller to hold mu.
type MapStorage struct {
	data    map[string]*Entity // key - value
	expires map[string]int64   // key - expires time nanoseconds
	mu      sync.RWMutex
}

// NewMapStorage creates a new instance of MapStorage.
func NewMapStorage() *MapStorage {
	return &MapStorage{
		data:    make(map[string]*Entity),
		expires: make(map[string]int64),
	}
}

// peek returns the live entity stored at key, lazily removing it when expired.
// It does not count as an access
func (m *MapStorage) peek(key string, now int64) *Entity {
	e, ok := m.data[key]
	if !ok {
		return nil
	}

	if exp, hasExp := m.expires[key]; hasExp && now > exp {
		delete(m.data, key)
		delete(m.expires, key)
		return nil
	}

	return e
}

// lookup is peek that records the access time
func (m *MapStorage) lookup(key string, now int64) *Entity {
	e := m.peek(key, now)
	if e != nil {
		e.LastAccess = now
	}
	return e
}

// typed returns the entity at key when it holds t, nil when the key is absent
// and ErrWrongKind when it holds something else
func (m *MapStorage) typed(key string, t DataType, now int64) (*Entity, error) {
	e := m.lookup(key, now)
	if e == nil {
		return nil, nil
	}
	if e.Type != t {
		return nil, executor.ErrWrongKind
	}
	return e, nil
}

// put stores e at key, keeping any existing expiration
func (m *MapStorage) put(key string, e *Entity, now int64) {
	e.LastAccess = now
	m.data[key] = e
}

// remove deletes key and its expiration. Returns true if the key existed
func (m *MapStorage) remove(key string) bool {
	if _, ok := m.data[key]; !ok {
		return false
	}
	delete(m.data, key)
	delete(m.expires, key)
	return true
}

// dropIfEmpty removes collections that lost their last element
func (m *MapStorage) dropIfEmpty(key string, e *Entity) {
	if e.Type != TypeString && e.size() == 0 {
		m.remove(key)
	}
}

// expiry returns the remaining lifetime and status as ExpiryStatus
func (m *MapStorage) expiry(key string, now int64) (time.Duration, ExpiryStatus) {
	if m.lookup(key, now) == nil {
		return 0, ExpNotFound
	}

	exp, hasExp := m.expires[key]
	if !hasExp {
		return 0, ExpNoTimeout
	}

	return time.Duration(exp - now), ExpActive
}

// liveKeys returns the names of all keys that have not expired at now
func (m *MapStorage) liveKeys(now int64) []string {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if exp, hasExp := m.expires[key]; hasExp && now > exp {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// DeleteExpired randomly selects a limit of keys and delete if his TTL has expired
func (m *MapStorage) DeleteExpired(limit int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.expires) == 0 {
		return 0.0
	}

	checked := 0
	expired := 0
	now := now()

	// go map iteration is randomized by design
	for key, expTime := range m.expires {
		checked++
		if now > expTime {
			delete(m.data, key)
			delete(m.expires, key)
			expired++
		}

		if checked >= limit {
			break
		}
	}

	return float64(expired) / float64(checked)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
