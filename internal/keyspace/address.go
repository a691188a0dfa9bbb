// Package keyspace addresses store entries as typed keys.
//
// A Space binds a prefix and a key codec to an executor. Keys created from a
// space (Simple, Hash, List, Set, SortedSet) resolve to the raw key
// write(prefix) ++ write(value) and expose the operations legal for one kind
// of stored value, encoding and decoding values through a codec.
package keyspace

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/executor"
)

// RawKey derives the store key of (prefix, value) by concatenating their encodings.
// The result carries no delimiter, so distinct pairs may map to the same key
// when encodings vary in length. Use WithLengthPrefix on a Space to avoid that.
func RawKey[P, K any](pw codec.Writer[P], prefix P, kw codec.Writer[K], value K) ([]byte, error) {
	p, err := pw.Write(prefix)
	if err != nil {
		return nil, fmt.Errorf("encode key prefix: %w", err)
	}
	v, err := kw.Write(value)
	if err != nil {
		return nil, fmt.Errorf("encode key value: %w", err)
	}

	raw := make([]byte, 0, len(p)+len(v))
	raw = append(raw, p...)
	return append(raw, v...), nil
}

// Option configures a Space
type Option func(*options)

type options struct {
	logger       *zap.Logger
	legacyTTL    bool
	lengthPrefix bool
}

func defaultOptions() *options {
	return &options{logger: zap.NewNop()}
}

// WithLogger sets the logger failed commands are reported to at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLegacyTTL treats a TTL reply of -1 as NoKey, for stores that answer -1
// both for missing keys and for keys without an expiry
func WithLegacyTTL() Option {
	return func(o *options) {
		o.legacyTTL = true
	}
}

// WithLengthPrefix derives raw keys as uvarint(len(prefix)) ++ prefix ++ value,
// which no two distinct (prefix, value) pairs share
func WithLengthPrefix() Option {
	return func(o *options) {
		o.lengthPrefix = true
	}
}

// failed logs err at debug level and returns it unchanged
func (o *options) failed(command string, raw []byte, err error) error {
	if err != nil && o.logger.Core().Enabled(zapcore.DebugLevel) {
		o.logger.Debug("command failed",
			zap.String("command", command),
			zap.ByteString("key", raw),
			zap.Error(err),
		)
	}
	return err
}

// Space is the set of keys sharing a prefix, addressed by values of type K
type Space[P, K any] struct {
	exec   executor.Executor
	prefix P
	raw    []byte // encoded prefix, including the length header when enabled
	kw     codec.Writer[K]
	opts   *options
}

// NewSpace encodes prefix once and returns a space issuing commands through exec
func NewSpace[P, K any](exec executor.Executor, pw codec.Writer[P], prefix P, kw codec.Writer[K], opts ...Option) (*Space[P, K], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	p, err := pw.Write(prefix)
	if err != nil {
		return nil, fmt.Errorf("encode key prefix: %w", err)
	}

	raw := p
	if o.lengthPrefix {
		raw = binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen64+len(p)), uint64(len(p)))
		raw = append(raw, p...)
	}

	return &Space[P, K]{
		exec:   exec,
		prefix: prefix,
		raw:    raw,
		kw:     kw,
		opts:   o,
	}, nil
}

// Prefix returns the prefix the space was created with
func (s *Space[P, K]) Prefix() P {
	return s.prefix
}

// Executor returns the executor commands are issued through
func (s *Space[P, K]) Executor() executor.Executor {
	return s.exec
}

// Raw returns the store key of value
func (s *Space[P, K]) Raw(value K) ([]byte, error) {
	v, err := s.kw.Write(value)
	if err != nil {
		return nil, fmt.Errorf("encode key value: %w", err)
	}

	raw := make([]byte, 0, len(s.raw)+len(v))
	raw = append(raw, s.raw...)
	return append(raw, v...), nil
}

// Owns reports whether raw starts with the encoded prefix of the space
func (s *Space[P, K]) Owns(raw []byte) bool {
	return bytes.HasPrefix(raw, s.raw)
}

func (s *Space[P, K]) base(value K) (BaseKey, error) {
	raw, err := s.Raw(value)
	if err != nil {
		return BaseKey{}, err
	}
	return BaseKey{raw: raw, exec: s.exec, opts: s.opts}, nil
}

// Key returns a kind-agnostic key, typically used as a rename target
func (s *Space[P, K]) Key(value K) (*BaseKey, error) {
	k, err := s.base(value)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (s *Space[P, K]) raws(values []K) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		raw, err := s.Raw(v)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

// Del removes the keys of values and returns how many existed
func (s *Space[P, K]) Del(ctx context.Context, values ...K) (int64, error) {
	keys, err := s.raws(values)
	if err != nil {
		return 0, err
	}
	n, err := s.exec.Del(ctx, keys...)
	return n, s.opts.failed("DEL", nil, err)
}

// Exists counts how many of the keys of values exist, counting repeats
func (s *Space[P, K]) Exists(ctx context.Context, values ...K) (int64, error) {
	keys, err := s.raws(values)
	if err != nil {
		return 0, err
	}
	n, err := s.exec.Exists(ctx, keys...)
	return n, s.opts.failed("EXISTS", nil, err)
}
