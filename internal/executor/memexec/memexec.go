// Package memexec runs the executor command surface against the in-process sharded storage.
package memexec

import (
	"bytes"
	"context"
	"time"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/storage"
)

const (
	defaultDatabases = 16
	defaultShards    = 16
)

// Executor is bound to one logical database of a storage.Databases.
// Byte slices are copied on the way in and out, callers may reuse their buffers.
type Executor struct {
	dbs   *storage.Databases
	index int
	db    *storage.ShardedMapStorage
}

var _ executor.Executor = (*Executor)(nil)

// New returns an executor over database index of dbs
func New(dbs *storage.Databases, index int) (*Executor, error) {
	db, err := dbs.DB(index)
	if err != nil {
		return nil, err
	}
	return &Executor{dbs: dbs, index: index, db: db}, nil
}

// NewStandalone creates a private set of databases and returns an executor over database 0
func NewStandalone() *Executor {
	dbs, err := storage.NewDatabases(defaultDatabases, defaultShards)
	if err != nil {
		panic(err) // constants are valid
	}
	e, _ := New(dbs, 0) //nolint:errcheck
	return e
}

// Select returns an executor over another database of the same set
func (e *Executor) Select(index int) (*Executor, error) {
	return New(e.dbs, index)
}

// Index returns the database number this executor is bound to
func (e *Executor) Index() int {
	return e.index
}

// Databases returns the underlying database set
func (e *Executor) Databases() *storage.Databases {
	return e.dbs
}

// DBSize returns the number of live keys of the bound database
func (e *Executor) DBSize(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.Len(), nil
}

// FlushDB removes every key of the bound database
func (e *Executor) FlushDB(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.db.Flush()
	return nil
}

func strs(keys [][]byte) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func raws(names []string) [][]byte {
	out := make([][]byte, len(names))
	for i, n := range names {
		out[i] = []byte(n)
	}
	return out
}

func cloneAll(values [][]byte) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = bytes.Clone(v)
	}
	return out
}

func clone(v []byte) []byte {
	if v == nil {
		return nil
	}
	return bytes.Clone(v)
}

// Del implements executor.KeyCommands
func (e *Executor) Del(ctx context.Context, keys ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.Del(strs(keys)...), nil
}

// Dump implements executor.KeyCommands
func (e *Executor) Dump(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	payload, ok := e.db.Dump(string(key))
	return payload, ok, nil
}

// Exists implements executor.KeyCommands
func (e *Executor) Exists(ctx context.Context, keys ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.Exists(strs(keys)...), nil
}

// roundTTL brings ttl to the resolution of unit the way go-redis formats it
// for the wire: truncated, except that a positive ttl below unit becomes unit
func roundTTL(ttl, unit time.Duration) time.Duration {
	if ttl > 0 && ttl < unit {
		return unit
	}
	return ttl.Truncate(unit)
}

func (e *Executor) expireAt(ctx context.Context, key []byte, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.ExpireAt(string(key), at), nil
}

// Expire implements executor.KeyCommands with second resolution.
// A non-positive ttl deletes the key
func (e *Executor) Expire(ctx context.Context, key []byte, ttl time.Duration) (bool, error) {
	return e.expireAt(ctx, key, time.Now().Add(roundTTL(ttl, time.Second)))
}

// ExpireAt implements executor.KeyCommands with second resolution
func (e *Executor) ExpireAt(ctx context.Context, key []byte, at time.Time) (bool, error) {
	return e.expireAt(ctx, key, time.Unix(at.Unix(), 0))
}

// PExpire implements executor.KeyCommands
func (e *Executor) PExpire(ctx context.Context, key []byte, ttl time.Duration) (bool, error) {
	return e.expireAt(ctx, key, time.Now().Add(roundTTL(ttl, time.Millisecond)))
}

// PExpireAt implements executor.KeyCommands
func (e *Executor) PExpireAt(ctx context.Context, key []byte, at time.Time) (bool, error) {
	return e.expireAt(ctx, key, time.UnixMilli(at.UnixMilli()))
}

// Move implements executor.KeyCommands
func (e *Executor) Move(ctx context.Context, key []byte, db int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.dbs.Move(string(key), e.index, db)
}

// ObjectRefCount implements executor.KeyCommands
func (e *Executor) ObjectRefCount(ctx context.Context, key []byte) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	n, ok := e.db.ObjectRefCount(string(key))
	return n, ok, nil
}

// ObjectEncoding implements executor.KeyCommands
func (e *Executor) ObjectEncoding(ctx context.Context, key []byte) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	enc, ok := e.db.ObjectEncoding(string(key))
	return enc, ok, nil
}

// ObjectIdleTime implements executor.KeyCommands
func (e *Executor) ObjectIdleTime(ctx context.Context, key []byte) (time.Duration, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	idle, ok := e.db.ObjectIdleTime(string(key))
	return idle, ok, nil
}

// Persist implements executor.KeyCommands
func (e *Executor) Persist(ctx context.Context, key []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.Persist(string(key)), nil
}

func (e *Executor) ttl(ctx context.Context, key []byte, unit time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	remaining, status := e.db.Expiry(string(key))
	switch status {
	case storage.ExpNotFound:
		return executor.TTLNoKey, nil
	case storage.ExpNoTimeout:
		return executor.TTLNoExpiry, nil
	}

	// round to the nearest unit like the server does
	return int64((remaining + unit/2) / unit), nil
}

// PTTL implements executor.KeyCommands
func (e *Executor) PTTL(ctx context.Context, key []byte) (int64, error) {
	return e.ttl(ctx, key, time.Millisecond)
}

// TTL implements executor.KeyCommands
func (e *Executor) TTL(ctx context.Context, key []byte) (int64, error) {
	return e.ttl(ctx, key, time.Second)
}

// Rename implements executor.KeyCommands
func (e *Executor) Rename(ctx context.Context, key, newKey []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.Rename(string(key), string(newKey))
}

// RenameNX implements executor.KeyCommands
func (e *Executor) RenameNX(ctx context.Context, key, newKey []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.RenameNX(string(key), string(newKey))
}

// Type implements executor.KeyCommands
func (e *Executor) Type(ctx context.Context, key []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.db.Type(string(key)), nil
}

// Scan implements executor.KeyCommands
func (e *Executor) Scan(ctx context.Context, cursor uint64, args executor.ScanArgs) (uint64, [][]byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	next, keys := e.db.Scan(cursor, args.Match, args.Count)
	return next, raws(keys), nil
}
