package keyspace

import (
	"context"
	"time"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/executor"
)

// Simple is a key holding a single string value of type V
type Simple[V any] struct {
	BaseKey
	codec codec.Codec[V]
}

// NewSimple returns the string key of value in s
func NewSimple[P, K, V any](s *Space[P, K], value K, c codec.Codec[V]) (*Simple[V], error) {
	base, err := s.base(value)
	if err != nil {
		return nil, err
	}
	return &Simple[V]{BaseKey: base, codec: c}, nil
}

// SetOption adjusts a Set call
type SetOption func(*executor.SetArgs)

// WithTTL expires the key after ttl
func WithTTL(ttl time.Duration) SetOption {
	return func(a *executor.SetArgs) {
		a.TTL = ttl
	}
}

// KeepTTL retains the current expiration of the key
func KeepTTL() SetOption {
	return func(a *executor.SetArgs) {
		a.KeepTTL = true
	}
}

// IfAbsent writes only when the key does not exist
func IfAbsent() SetOption {
	return func(a *executor.SetArgs) {
		a.Condition = executor.IfAbsent
	}
}

// IfPresent writes only when the key already exists
func IfPresent() SetOption {
	return func(a *executor.SetArgs) {
		a.Condition = executor.IfPresent
	}
}

func (k *Simple[V]) decode(command string, raw []byte, found bool, err error) (V, bool, error) {
	var zero V
	if err != nil {
		return zero, false, k.opts.failed(command, k.raw, err)
	}
	if !found {
		return zero, false, nil
	}

	v, err := k.codec.Read(raw)
	if err != nil {
		return zero, false, k.opts.failed(command, k.raw, err)
	}
	return v, true, nil
}

// Get returns the value and whether the key exists
func (k *Simple[V]) Get(ctx context.Context) (V, bool, error) {
	raw, ok, err := k.exec.Get(ctx, k.raw)
	return k.decode("GET", raw, ok, err)
}

// Set writes v and reports whether the write was applied.
// A condition that is not met yields false, not an error
func (k *Simple[V]) Set(ctx context.Context, v V, opts ...SetOption) (bool, error) {
	raw, err := k.codec.Write(v)
	if err != nil {
		return false, err
	}

	var args executor.SetArgs
	for _, opt := range opts {
		opt(&args)
	}

	ok, err := k.exec.Set(ctx, k.raw, raw, args)
	return ok, k.opts.failed("SET", k.raw, err)
}

// GetSet writes v and returns the previous value
func (k *Simple[V]) GetSet(ctx context.Context, v V) (V, bool, error) {
	raw, err := k.codec.Write(v)
	if err != nil {
		var zero V
		return zero, false, err
	}

	old, ok, err := k.exec.GetSet(ctx, k.raw, raw)
	return k.decode("GETSET", old, ok, err)
}

// SetNX writes v only when the key does not exist
func (k *Simple[V]) SetNX(ctx context.Context, v V) (bool, error) {
	raw, err := k.codec.Write(v)
	if err != nil {
		return false, err
	}

	ok, err := k.exec.SetNX(ctx, k.raw, raw)
	return ok, k.opts.failed("SETNX", k.raw, err)
}

// SetEX writes v with a timeout in second resolution
func (k *Simple[V]) SetEX(ctx context.Context, v V, ttl time.Duration) error {
	raw, err := k.codec.Write(v)
	if err != nil {
		return err
	}
	return k.opts.failed("SETEX", k.raw, k.exec.SetEX(ctx, k.raw, raw, ttl))
}

// PSetEX writes v with a timeout in millisecond resolution
func (k *Simple[V]) PSetEX(ctx context.Context, v V, ttl time.Duration) error {
	raw, err := k.codec.Write(v)
	if err != nil {
		return err
	}
	return k.opts.failed("PSETEX", k.raw, k.exec.PSetEX(ctx, k.raw, raw, ttl))
}

// Append adds the encoding of v to the end of the stored bytes and returns the new length
func (k *Simple[V]) Append(ctx context.Context, v V) (int64, error) {
	raw, err := k.codec.Write(v)
	if err != nil {
		return 0, err
	}

	n, err := k.exec.Append(ctx, k.raw, raw)
	return n, k.opts.failed("APPEND", k.raw, err)
}

// Incr adds one to the stored integer
func (k *Simple[V]) Incr(ctx context.Context) (int64, error) {
	n, err := k.exec.Incr(ctx, k.raw)
	return n, k.opts.failed("INCR", k.raw, err)
}

// IncrBy adds increment to the stored integer
func (k *Simple[V]) IncrBy(ctx context.Context, increment int64) (int64, error) {
	n, err := k.exec.IncrBy(ctx, k.raw, increment)
	return n, k.opts.failed("INCRBY", k.raw, err)
}

// IncrByFloat adds increment to the stored number
func (k *Simple[V]) IncrByFloat(ctx context.Context, increment float64) (float64, error) {
	f, err := k.exec.IncrByFloat(ctx, k.raw, increment)
	return f, k.opts.failed("INCRBYFLOAT", k.raw, err)
}

// Decr subtracts one from the stored integer
func (k *Simple[V]) Decr(ctx context.Context) (int64, error) {
	n, err := k.exec.Decr(ctx, k.raw)
	return n, k.opts.failed("DECR", k.raw, err)
}

// DecrBy subtracts decrement from the stored integer
func (k *Simple[V]) DecrBy(ctx context.Context, decrement int64) (int64, error) {
	n, err := k.exec.DecrBy(ctx, k.raw, decrement)
	return n, k.opts.failed("DECRBY", k.raw, err)
}

// StrLen returns the length of the stored bytes
func (k *Simple[V]) StrLen(ctx context.Context) (int64, error) {
	n, err := k.exec.StrLen(ctx, k.raw)
	return n, k.opts.failed("STRLEN", k.raw, err)
}

// GetBit returns the bit at offset of the stored bytes
func (k *Simple[V]) GetBit(ctx context.Context, offset int64) (bool, error) {
	bit, err := k.exec.GetBit(ctx, k.raw, offset)
	return bit, k.opts.failed("GETBIT", k.raw, err)
}

// SetBit sets the bit at offset and returns its previous value
func (k *Simple[V]) SetBit(ctx context.Context, offset int64, bit bool) (bool, error) {
	prev, err := k.exec.SetBit(ctx, k.raw, offset, bit)
	return prev, k.opts.failed("SETBIT", k.raw, err)
}

// BitCount counts set bits, optionally within the byte range [pos[0], pos[1]]
func (k *Simple[V]) BitCount(ctx context.Context, pos ...int64) (int64, error) {
	n, err := k.exec.BitCount(ctx, k.raw, pos...)
	return n, k.opts.failed("BITCOUNT", k.raw, err)
}

// BitPos returns the position of the first bit equal to bit
func (k *Simple[V]) BitPos(ctx context.Context, bit bool, pos ...int64) (int64, error) {
	n, err := k.exec.BitPos(ctx, k.raw, bit, pos...)
	return n, k.opts.failed("BITPOS", k.raw, err)
}

// GetRange returns a slice of the stored bytes. A fragment of an encoding is
// generally not a valid encoding, so the bytes are returned undecoded
func (k *Simple[V]) GetRange(ctx context.Context, start, end int64) ([]byte, error) {
	b, err := k.exec.GetRange(ctx, k.raw, start, end)
	return b, k.opts.failed("GETRANGE", k.raw, err)
}

// SetRange overwrites the stored bytes from offset and returns the new length
func (k *Simple[V]) SetRange(ctx context.Context, offset int64, value []byte) (int64, error) {
	n, err := k.exec.SetRange(ctx, k.raw, offset, value)
	return n, k.opts.failed("SETRANGE", k.raw, err)
}
