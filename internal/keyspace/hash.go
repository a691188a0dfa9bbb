package keyspace

import (
	"context"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/executor"
)

// Hash is a key holding a map of fields to values of type V.
// Field names read back from the store are resolved through the registry,
// so names it does not declare come back as unrecognized fields
type Hash[V any] struct {
	BaseKey
	fields *FieldRegistry
	codec  codec.Codec[V]
}

// FieldEntry is one field of a hash and its value
type FieldEntry[V any] struct {
	Field Field
	Value V
}

// NewHash returns the hash key of value in s. A nil registry declares no fields
func NewHash[P, K, V any](s *Space[P, K], value K, fields *FieldRegistry, c codec.Codec[V]) (*Hash[V], error) {
	base, err := s.base(value)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = NewFieldRegistry()
	}
	return &Hash[V]{BaseKey: base, fields: fields, codec: c}, nil
}

// Fields returns the registry of the hash
func (k *Hash[V]) Fields() *FieldRegistry {
	return k.fields
}

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

// Get returns the value of f and whether it is set
func (k *Hash[V]) Get(ctx context.Context, f Field) (V, bool, error) {
	var zero V

	raw, ok, err := k.exec.HGet(ctx, k.raw, f.name)
	if err != nil {
		return zero, false, k.opts.failed("HGET", k.raw, err)
	}
	if !ok {
		return zero, false, nil
	}

	v, err := k.codec.Read(raw)
	if err != nil {
		return zero, false, k.opts.failed("HGET", k.raw, err)
	}
	return v, true, nil
}

// MGet returns the values of the fields that are set
func (k *Hash[V]) MGet(ctx context.Context, fields ...Field) (map[Field]V, error) {
	raws, err := k.exec.HMGet(ctx, k.raw, names(fields)...)
	if err != nil {
		return nil, k.opts.failed("HMGET", k.raw, err)
	}

	out := make(map[Field]V, len(fields))
	for i, raw := range raws {
		if raw == nil || i >= len(fields) {
			continue
		}
		v, err := k.codec.Read(raw)
		if err != nil {
			return nil, k.opts.failed("HMGET", k.raw, err)
		}
		out[fields[i]] = v
	}
	return out, nil
}

// MSet writes several fields at once
func (k *Hash[V]) MSet(ctx context.Context, values map[Field]V) error {
	pairs := make([]executor.FieldValue, 0, len(values))
	for f, v := range values {
		raw, err := k.codec.Write(v)
		if err != nil {
			return err
		}
		pairs = append(pairs, executor.FieldValue{Field: f.name, Value: raw})
	}
	return k.opts.failed("HMSET", k.raw, k.exec.HMSet(ctx, k.raw, pairs...))
}

// Set writes f and reports whether the field was created
func (k *Hash[V]) Set(ctx context.Context, f Field, v V) (bool, error) {
	raw, err := k.codec.Write(v)
	if err != nil {
		return false, err
	}

	created, err := k.exec.HSet(ctx, k.raw, f.name, raw)
	return created, k.opts.failed("HSET", k.raw, err)
}

// SetNX writes f only when it is not set
func (k *Hash[V]) SetNX(ctx context.Context, f Field, v V) (bool, error) {
	raw, err := k.codec.Write(v)
	if err != nil {
		return false, err
	}

	ok, err := k.exec.HSetNX(ctx, k.raw, f.name, raw)
	return ok, k.opts.failed("HSETNX", k.raw, err)
}

// GetAll returns every field of the hash
func (k *Hash[V]) GetAll(ctx context.Context) (map[Field]V, error) {
	all, err := k.exec.HGetAll(ctx, k.raw)
	if err != nil {
		return nil, k.opts.failed("HGETALL", k.raw, err)
	}

	out := make(map[Field]V, len(all))
	for name, raw := range all {
		v, err := k.codec.Read(raw)
		if err != nil {
			return nil, k.opts.failed("HGETALL", k.raw, err)
		}
		out[k.fields.Lookup(name)] = v
	}
	return out, nil
}

// IncrBy adds increment to the integer stored in f
func (k *Hash[V]) IncrBy(ctx context.Context, f Field, increment int64) (int64, error) {
	n, err := k.exec.HIncrBy(ctx, k.raw, f.name, increment)
	return n, k.opts.failed("HINCRBY", k.raw, err)
}

// IncrByFloat adds increment to the number stored in f
func (k *Hash[V]) IncrByFloat(ctx context.Context, f Field, increment float64) (float64, error) {
	n, err := k.exec.HIncrByFloat(ctx, k.raw, f.name, increment)
	return n, k.opts.failed("HINCRBYFLOAT", k.raw, err)
}

// Keys returns the fields that are set
func (k *Hash[V]) Keys(ctx context.Context) ([]Field, error) {
	raw, err := k.exec.HKeys(ctx, k.raw)
	if err != nil {
		return nil, k.opts.failed("HKEYS", k.raw, err)
	}

	out := make([]Field, len(raw))
	for i, name := range raw {
		out[i] = k.fields.Lookup(name)
	}
	return out, nil
}

// Vals returns the values of every field
func (k *Hash[V]) Vals(ctx context.Context) ([]V, error) {
	raw, err := k.exec.HVals(ctx, k.raw)
	if err != nil {
		return nil, k.opts.failed("HVALS", k.raw, err)
	}

	vals, err := codec.ReadAll(k.codec, raw)
	return vals, k.opts.failed("HVALS", k.raw, err)
}

// Len returns the number of fields
func (k *Hash[V]) Len(ctx context.Context) (int64, error) {
	n, err := k.exec.HLen(ctx, k.raw)
	return n, k.opts.failed("HLEN", k.raw, err)
}

// DelFields removes fields and returns how many were set
func (k *Hash[V]) DelFields(ctx context.Context, fields ...Field) (int64, error) {
	n, err := k.exec.HDel(ctx, k.raw, names(fields)...)
	return n, k.opts.failed("HDEL", k.raw, err)
}

// HasField reports whether f is set
func (k *Hash[V]) HasField(ctx context.Context, f Field) (bool, error) {
	ok, err := k.exec.HExists(ctx, k.raw, f.name)
	return ok, k.opts.failed("HEXISTS", k.raw, err)
}

// Scan issues one HSCAN call
func (k *Hash[V]) Scan(ctx context.Context, cursor FieldCursor, opts ...ScanOption) (FieldCursor, []FieldEntry[V], error) {
	next, pairs, err := k.exec.HScan(ctx, k.raw, uint64(cursor), scanArgs(opts))
	if err != nil {
		return 0, nil, k.opts.failed("HSCAN", k.raw, err)
	}

	out := make([]FieldEntry[V], len(pairs))
	for i, p := range pairs {
		v, err := k.codec.Read(p.Value)
		if err != nil {
			return 0, nil, k.opts.failed("HSCAN", k.raw, err)
		}
		out[i] = FieldEntry[V]{Field: k.fields.Lookup(p.Field), Value: v}
	}
	return FieldCursor(next), out, nil
}

// Scanner returns a scanner over the fields of the hash
func (k *Hash[V]) Scanner(opts ...ScanOption) *Scanner[FieldCursor, FieldEntry[V]] {
	return NewScanner[FieldCursor, FieldEntry[V]](func(ctx context.Context, cursor FieldCursor) (FieldCursor, []FieldEntry[V], error) {
		return k.Scan(ctx, cursor, opts...)
	})
}
