package keyspace

import (
	"bytes"
	"context"
	"time"

	"github.com/eternalApril/keyspace/internal/executor"
)

// Key is the kind-agnostic part of every typed key
type Key interface {
	// Raw returns the store key. The slice must not be modified
	Raw() []byte

	Del(ctx context.Context) (bool, error)
	Exists(ctx context.Context) (bool, error)
	Expire(ctx context.Context, ttl time.Duration) (bool, error)
	ExpireAt(ctx context.Context, at time.Time) (bool, error)
	PExpire(ctx context.Context, ttl time.Duration) (bool, error)
	PExpireAt(ctx context.Context, at time.Time) (bool, error)
	Move(ctx context.Context, db int) (bool, error)
	Dump(ctx context.Context) ([]byte, bool, error)
	ObjectRefCount(ctx context.Context) (int64, bool, error)
	ObjectEncoding(ctx context.Context) (string, bool, error)
	ObjectIdleTime(ctx context.Context) (time.Duration, bool, error)
	Persist(ctx context.Context) (bool, error)
	Rename(ctx context.Context, to Key) error
	RenameNX(ctx context.Context, to Key) (bool, error)
	TTL(ctx context.Context) (TTL, error)
	PTTL(ctx context.Context) (TTL, error)
	Type(ctx context.Context) (Kind, error)
}

// BaseKey implements Key. It is embedded by every capability type
type BaseKey struct {
	raw  []byte
	exec executor.Executor
	opts *options
}

var _ Key = (*BaseKey)(nil)

// Raw implements Key
func (k *BaseKey) Raw() []byte {
	return k.raw
}

// Del removes the key and reports whether it existed
func (k *BaseKey) Del(ctx context.Context) (bool, error) {
	n, err := k.exec.Del(ctx, k.raw)
	return n > 0, k.opts.failed("DEL", k.raw, err)
}

// Exists reports whether the key is present
func (k *BaseKey) Exists(ctx context.Context) (bool, error) {
	n, err := k.exec.Exists(ctx, k.raw)
	return n > 0, k.opts.failed("EXISTS", k.raw, err)
}

// Expire sets a timeout in second resolution. Returns false when the key does not exist.
// A positive ttl below one second is sent as one second; use PExpire for finer timeouts
func (k *BaseKey) Expire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := k.exec.Expire(ctx, k.raw, ttl)
	return ok, k.opts.failed("EXPIRE", k.raw, err)
}

// ExpireAt sets an absolute expiration in second resolution
func (k *BaseKey) ExpireAt(ctx context.Context, at time.Time) (bool, error) {
	ok, err := k.exec.ExpireAt(ctx, k.raw, at)
	return ok, k.opts.failed("EXPIREAT", k.raw, err)
}

// PExpire sets a timeout in millisecond resolution
func (k *BaseKey) PExpire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := k.exec.PExpire(ctx, k.raw, ttl)
	return ok, k.opts.failed("PEXPIRE", k.raw, err)
}

// PExpireAt sets an absolute expiration in millisecond resolution
func (k *BaseKey) PExpireAt(ctx context.Context, at time.Time) (bool, error) {
	ok, err := k.exec.PExpireAt(ctx, k.raw, at)
	return ok, k.opts.failed("PEXPIREAT", k.raw, err)
}

// Move transfers the key to database db of the same store
func (k *BaseKey) Move(ctx context.Context, db int) (bool, error) {
	ok, err := k.exec.Move(ctx, k.raw, db)
	return ok, k.opts.failed("MOVE", k.raw, err)
}

// Dump returns the serialized value in the store's own format
func (k *BaseKey) Dump(ctx context.Context) ([]byte, bool, error) {
	payload, ok, err := k.exec.Dump(ctx, k.raw)
	return payload, ok, k.opts.failed("DUMP", k.raw, err)
}

// ObjectRefCount reports how many references the store holds to the value
func (k *BaseKey) ObjectRefCount(ctx context.Context) (int64, bool, error) {
	n, ok, err := k.exec.ObjectRefCount(ctx, k.raw)
	return n, ok, k.opts.failed("OBJECT REFCOUNT", k.raw, err)
}

// ObjectEncoding reports the internal representation of the value
func (k *BaseKey) ObjectEncoding(ctx context.Context) (string, bool, error) {
	enc, ok, err := k.exec.ObjectEncoding(ctx, k.raw)
	return enc, ok, k.opts.failed("OBJECT ENCODING", k.raw, err)
}

// ObjectIdleTime reports how long ago the value was last accessed
func (k *BaseKey) ObjectIdleTime(ctx context.Context) (time.Duration, bool, error) {
	idle, ok, err := k.exec.ObjectIdleTime(ctx, k.raw)
	return idle, ok, k.opts.failed("OBJECT IDLETIME", k.raw, err)
}

// Persist removes the expiration. Returns false when the key is missing or has none
func (k *BaseKey) Persist(ctx context.Context) (bool, error) {
	ok, err := k.exec.Persist(ctx, k.raw)
	return ok, k.opts.failed("PERSIST", k.raw, err)
}

// Rename moves the value to the key of to, overwriting it.
// Renaming a key onto itself fails with executor.ErrSameKey without contacting the store
func (k *BaseKey) Rename(ctx context.Context, to Key) error {
	if bytes.Equal(k.raw, to.Raw()) {
		return executor.ErrSameKey
	}
	return k.opts.failed("RENAME", k.raw, k.exec.Rename(ctx, k.raw, to.Raw()))
}

// RenameNX renames only when the key of to does not exist
func (k *BaseKey) RenameNX(ctx context.Context, to Key) (bool, error) {
	if bytes.Equal(k.raw, to.Raw()) {
		return false, executor.ErrSameKey
	}
	ok, err := k.exec.RenameNX(ctx, k.raw, to.Raw())
	return ok, k.opts.failed("RENAMENX", k.raw, err)
}

// TTL returns the remaining lifetime in second resolution
func (k *BaseKey) TTL(ctx context.Context) (TTL, error) {
	raw, err := k.exec.TTL(ctx, k.raw)
	if err != nil {
		return TTL{}, k.opts.failed("TTL", k.raw, err)
	}
	return shapeTTL(raw, time.Second, k.opts.legacyTTL), nil
}

// PTTL returns the remaining lifetime in millisecond resolution
func (k *BaseKey) PTTL(ctx context.Context) (TTL, error) {
	raw, err := k.exec.PTTL(ctx, k.raw)
	if err != nil {
		return TTL{}, k.opts.failed("PTTL", k.raw, err)
	}
	return shapeTTL(raw, time.Millisecond, k.opts.legacyTTL), nil
}

// Type returns the kind of the stored value, KindNone when absent
func (k *BaseKey) Type(ctx context.Context) (Kind, error) {
	name, err := k.exec.Type(ctx, k.raw)
	if err != nil {
		return KindNone, k.opts.failed("TYPE", k.raw, err)
	}
	return Kind(name), nil
}
