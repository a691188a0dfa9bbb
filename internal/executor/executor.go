// Package executor describes the raw command surface of a Redis-style store.
// Keys and values are already-encoded bytes; results are already decoded.
package executor

import (
	"context"
	"time"
)

// Condition restricts when a SET is applied
type Condition int

const (
	// Always applies the write unconditionally
	Always Condition = iota
	// IfAbsent applies the write only if the key does not exist (NX)
	IfAbsent
	// IfPresent applies the write only if the key already exists (XX)
	IfPresent
)

// SetArgs are the optional parts of a SET command
type SetArgs struct {
	TTL       time.Duration // key lifetime, 0 means no expiry
	KeepTTL   bool          // retain the existing expiry of the key
	Condition Condition
}

// ScanArgs are the optional parts of the SCAN family
type ScanArgs struct {
	Match string // glob pattern evaluated by the store, empty means all
	Count int64  // batch size hint, 0 lets the store decide
}

// FieldValue is a single hash entry
type FieldValue struct {
	Field string
	Value []byte
}

// ScoredMember is a single sorted set entry
type ScoredMember struct {
	Member []byte
	Score  float64
}

// Raw TTL replies shared by TTL and PTTL
const (
	TTLNoKey    int64 = -2
	TTLNoExpiry int64 = -1
)

// KeyCommands are the kind-agnostic commands
type KeyCommands interface {
	Del(ctx context.Context, keys ...[]byte) (int64, error)
	Dump(ctx context.Context, key []byte) ([]byte, bool, error)
	Exists(ctx context.Context, keys ...[]byte) (int64, error)
	Expire(ctx context.Context, key []byte, ttl time.Duration) (bool, error)
	ExpireAt(ctx context.Context, key []byte, at time.Time) (bool, error)
	PExpire(ctx context.Context, key []byte, ttl time.Duration) (bool, error)
	PExpireAt(ctx context.Context, key []byte, at time.Time) (bool, error)
	Move(ctx context.Context, key []byte, db int) (bool, error)
	ObjectRefCount(ctx context.Context, key []byte) (int64, bool, error)
	ObjectEncoding(ctx context.Context, key []byte) (string, bool, error)
	ObjectIdleTime(ctx context.Context, key []byte) (time.Duration, bool, error)
	Persist(ctx context.Context, key []byte) (bool, error)
	// PTTL returns milliseconds, or TTLNoKey / TTLNoExpiry
	PTTL(ctx context.Context, key []byte) (int64, error)
	// TTL returns seconds, or TTLNoKey / TTLNoExpiry
	TTL(ctx context.Context, key []byte) (int64, error)
	Rename(ctx context.Context, key, newKey []byte) error
	RenameNX(ctx context.Context, key, newKey []byte) (bool, error)
	// Type returns one of "none", "string", "hash", "list", "set", "zset"
	Type(ctx context.Context, key []byte) (string, error)
	Scan(ctx context.Context, cursor uint64, args ScanArgs) (uint64, [][]byte, error)
}

// StringCommands operate on string values
type StringCommands interface {
	Append(ctx context.Context, key, value []byte) (int64, error)
	// BitCount counts set bits, optionally restricted to the byte range [pos[0], pos[1]]
	BitCount(ctx context.Context, key []byte, pos ...int64) (int64, error)
	// BitPos finds the first bit equal to bit, optionally starting at pos[0] and ending at pos[1]
	BitPos(ctx context.Context, key []byte, bit bool, pos ...int64) (int64, error)
	Decr(ctx context.Context, key []byte) (int64, error)
	DecrBy(ctx context.Context, key []byte, decrement int64) (int64, error)
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	GetBit(ctx context.Context, key []byte, offset int64) (bool, error)
	GetRange(ctx context.Context, key []byte, start, end int64) ([]byte, error)
	GetSet(ctx context.Context, key, value []byte) ([]byte, bool, error)
	Incr(ctx context.Context, key []byte) (int64, error)
	IncrBy(ctx context.Context, key []byte, increment int64) (int64, error)
	IncrByFloat(ctx context.Context, key []byte, increment float64) (float64, error)
	PSetEX(ctx context.Context, key, value []byte, ttl time.Duration) error
	// Set reports whether the write was applied; false means the condition was not met
	Set(ctx context.Context, key, value []byte, args SetArgs) (bool, error)
	// SetBit returns the previous bit value
	SetBit(ctx context.Context, key []byte, offset int64, bit bool) (bool, error)
	SetEX(ctx context.Context, key, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key, value []byte) (bool, error)
	SetRange(ctx context.Context, key []byte, offset int64, value []byte) (int64, error)
	StrLen(ctx context.Context, key []byte) (int64, error)
}

// HashCommands operate on hash values
type HashCommands interface {
	HDel(ctx context.Context, key []byte, fields ...string) (int64, error)
	HExists(ctx context.Context, key []byte, field string) (bool, error)
	HGet(ctx context.Context, key []byte, field string) ([]byte, bool, error)
	HGetAll(ctx context.Context, key []byte) (map[string][]byte, error)
	HIncrBy(ctx context.Context, key []byte, field string, increment int64) (int64, error)
	HIncrByFloat(ctx context.Context, key []byte, field string, increment float64) (float64, error)
	HKeys(ctx context.Context, key []byte) ([]string, error)
	HLen(ctx context.Context, key []byte) (int64, error)
	// HMGet returns one element per field, nil for an absent field
	HMGet(ctx context.Context, key []byte, fields ...string) ([][]byte, error)
	HMSet(ctx context.Context, key []byte, values ...FieldValue) error
	HScan(ctx context.Context, key []byte, cursor uint64, args ScanArgs) (uint64, []FieldValue, error)
	// HSet reports whether the field was created, false means it was overwritten
	HSet(ctx context.Context, key []byte, field string, value []byte) (bool, error)
	HSetNX(ctx context.Context, key []byte, field string, value []byte) (bool, error)
	HVals(ctx context.Context, key []byte) ([][]byte, error)
}

// ListCommands operate on list values
type ListCommands interface {
	LIndex(ctx context.Context, key []byte, index int64) ([]byte, bool, error)
	// LInsert returns the new length, -1 if pivot was not found, 0 if key does not exist
	LInsert(ctx context.Context, key []byte, before bool, pivot, value []byte) (int64, error)
	LLen(ctx context.Context, key []byte) (int64, error)
	LPop(ctx context.Context, key []byte) ([]byte, bool, error)
	LPush(ctx context.Context, key []byte, values ...[]byte) (int64, error)
	LPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error)
	LRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error)
	LRem(ctx context.Context, key []byte, count int64, value []byte) (int64, error)
	LSet(ctx context.Context, key []byte, index int64, value []byte) error
	LTrim(ctx context.Context, key []byte, start, stop int64) error
	RPop(ctx context.Context, key []byte) ([]byte, bool, error)
	RPopLPush(ctx context.Context, source, destination []byte) ([]byte, bool, error)
	RPush(ctx context.Context, key []byte, values ...[]byte) (int64, error)
	RPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error)
}

// SetCommands operate on set values
type SetCommands interface {
	SAdd(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	SCard(ctx context.Context, key []byte) (int64, error)
	SDiff(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SDiffStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error)
	SInter(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SInterStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error)
	SIsMember(ctx context.Context, key, member []byte) (bool, error)
	SMembers(ctx context.Context, key []byte) ([][]byte, error)
	SMove(ctx context.Context, source, destination, member []byte) (bool, error)
	SPop(ctx context.Context, key []byte) ([]byte, bool, error)
	SRandMember(ctx context.Context, key []byte) ([]byte, bool, error)
	SRandMembers(ctx context.Context, key []byte, count int64) ([][]byte, error)
	SRem(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	SScan(ctx context.Context, key []byte, cursor uint64, args ScanArgs) (uint64, [][]byte, error)
	SUnion(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SUnionStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error)
}

// SortedSetCommands operate on sorted set values
type SortedSetCommands interface {
	ZAdd(ctx context.Context, key []byte, members ...ScoredMember) (int64, error)
	ZCard(ctx context.Context, key []byte) (int64, error)
	ZIncrBy(ctx context.Context, key []byte, increment float64, member []byte) (float64, error)
	ZRange(ctx context.Context, key []byte, start, stop int64) ([]ScoredMember, error)
	ZRank(ctx context.Context, key []byte, member []byte) (int64, bool, error)
	ZRem(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	ZScore(ctx context.Context, key []byte, member []byte) (float64, bool, error)
}

// Executor is the full command surface consumed by the keyspace layer.
// Implementations must be safe for concurrent use.
type Executor interface {
	KeyCommands
	StringCommands
	HashCommands
	ListCommands
	SetCommands
	SortedSetCommands
}
