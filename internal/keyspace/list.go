package keyspace

import (
	"context"

	"github.com/eternalApril/keyspace/internal/codec"
)

// List is a key holding a sequence of values of type V.
// Indexes are 0-based and negative indexes count from the tail
type List[V any] struct {
	BaseKey
	codec codec.Codec[V]
}

// NewList returns the list key of value in s
func NewList[P, K, V any](s *Space[P, K], value K, c codec.Codec[V]) (*List[V], error) {
	base, err := s.base(value)
	if err != nil {
		return nil, err
	}
	return &List[V]{BaseKey: base, codec: c}, nil
}

// Position selects the side of the pivot Insert writes to
type Position bool

const (
	Before Position = true
	After  Position = false
)

func (k *List[V]) one(command string, raw []byte, found bool, err error) (V, bool, error) {
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

// Index returns the element at index
func (k *List[V]) Index(ctx context.Context, index int64) (V, bool, error) {
	raw, ok, err := k.exec.LIndex(ctx, k.raw, index)
	return k.one("LINDEX", raw, ok, err)
}

// Insert writes v next to the first element equal to pivot. Returns the new
// length, -1 when pivot is missing and 0 when the list does not exist
func (k *List[V]) Insert(ctx context.Context, pos Position, pivot, v V) (int64, error) {
	rawPivot, err := k.codec.Write(pivot)
	if err != nil {
		return 0, err
	}
	raw, err := k.codec.Write(v)
	if err != nil {
		return 0, err
	}

	n, err := k.exec.LInsert(ctx, k.raw, bool(pos), rawPivot, raw)
	return n, k.opts.failed("LINSERT", k.raw, err)
}

// Len returns the number of elements
func (k *List[V]) Len(ctx context.Context) (int64, error) {
	n, err := k.exec.LLen(ctx, k.raw)
	return n, k.opts.failed("LLEN", k.raw, err)
}

// LPop removes and returns the first element
func (k *List[V]) LPop(ctx context.Context) (V, bool, error) {
	raw, ok, err := k.exec.LPop(ctx, k.raw)
	return k.one("LPOP", raw, ok, err)
}

// RPop removes and returns the last element
func (k *List[V]) RPop(ctx context.Context) (V, bool, error) {
	raw, ok, err := k.exec.RPop(ctx, k.raw)
	return k.one("RPOP", raw, ok, err)
}

// LPush prepends values one by one, so the last one ends up first. Returns the new length
func (k *List[V]) LPush(ctx context.Context, values ...V) (int64, error) {
	raw, err := codec.WriteAll(k.codec, values)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.LPush(ctx, k.raw, raw...)
	return n, k.opts.failed("LPUSH", k.raw, err)
}

// LPushX is LPush that does nothing when the list does not exist
func (k *List[V]) LPushX(ctx context.Context, values ...V) (int64, error) {
	raw, err := codec.WriteAll(k.codec, values)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.LPushX(ctx, k.raw, raw...)
	return n, k.opts.failed("LPUSHX", k.raw, err)
}

// RPush appends values. Returns the new length
func (k *List[V]) RPush(ctx context.Context, values ...V) (int64, error) {
	raw, err := codec.WriteAll(k.codec, values)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.RPush(ctx, k.raw, raw...)
	return n, k.opts.failed("RPUSH", k.raw, err)
}

// RPushX is RPush that does nothing when the list does not exist
func (k *List[V]) RPushX(ctx context.Context, values ...V) (int64, error) {
	raw, err := codec.WriteAll(k.codec, values)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.RPushX(ctx, k.raw, raw...)
	return n, k.opts.failed("RPUSHX", k.raw, err)
}

// Range returns the elements between start and stop inclusive
func (k *List[V]) Range(ctx context.Context, start, stop int64) ([]V, error) {
	raw, err := k.exec.LRange(ctx, k.raw, start, stop)
	if err != nil {
		return nil, k.opts.failed("LRANGE", k.raw, err)
	}
	values, err := codec.ReadAll(k.codec, raw)
	return values, k.opts.failed("LRANGE", k.raw, err)
}

// Rem removes elements equal to v: up to count from the head when count is
// positive, up to -count from the tail when negative, all when zero
func (k *List[V]) Rem(ctx context.Context, count int64, v V) (int64, error) {
	raw, err := k.codec.Write(v)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.LRem(ctx, k.raw, count, raw)
	return n, k.opts.failed("LREM", k.raw, err)
}

// Set replaces the element at index
func (k *List[V]) Set(ctx context.Context, index int64, v V) error {
	raw, err := k.codec.Write(v)
	if err != nil {
		return err
	}
	return k.opts.failed("LSET", k.raw, k.exec.LSet(ctx, k.raw, index, raw))
}

// Trim keeps only the elements between start and stop inclusive
func (k *List[V]) Trim(ctx context.Context, start, stop int64) error {
	return k.opts.failed("LTRIM", k.raw, k.exec.LTrim(ctx, k.raw, start, stop))
}

// RPopLPush moves the last element to the head of destination and returns it.
// destination may be the list itself, which rotates it
func (k *List[V]) RPopLPush(ctx context.Context, destination *List[V]) (V, bool, error) {
	raw, ok, err := k.exec.RPopLPush(ctx, k.raw, destination.raw)
	return k.one("RPOPLPUSH", raw, ok, err)
}
