package keyspace

import (
	"context"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/executor"
)

// Scored is a sorted set member with its score
type Scored[V any] struct {
	Member V
	Score  float64
}

// SortedSet is a key holding unique members of type V ordered by score
type SortedSet[V any] struct {
	BaseKey
	codec codec.Codec[V]
}

// NewSortedSet returns the sorted set key of value in s
func NewSortedSet[P, K, V any](s *Space[P, K], value K, c codec.Codec[V]) (*SortedSet[V], error) {
	base, err := s.base(value)
	if err != nil {
		return nil, err
	}
	return &SortedSet[V]{BaseKey: base, codec: c}, nil
}

// Add adds members or updates their scores. Returns how many were new
func (k *SortedSet[V]) Add(ctx context.Context, members ...Scored[V]) (int64, error) {
	raw := make([]executor.ScoredMember, len(members))
	for i, m := range members {
		b, err := k.codec.Write(m.Member)
		if err != nil {
			return 0, err
		}
		raw[i] = executor.ScoredMember{Member: b, Score: m.Score}
	}

	n, err := k.exec.ZAdd(ctx, k.raw, raw...)
	return n, k.opts.failed("ZADD", k.raw, err)
}

// Card returns the number of members
func (k *SortedSet[V]) Card(ctx context.Context) (int64, error) {
	n, err := k.exec.ZCard(ctx, k.raw)
	return n, k.opts.failed("ZCARD", k.raw, err)
}

// IncrBy adds increment to the score of member and returns the new score
func (k *SortedSet[V]) IncrBy(ctx context.Context, increment float64, member V) (float64, error) {
	raw, err := k.codec.Write(member)
	if err != nil {
		return 0, err
	}
	score, err := k.exec.ZIncrBy(ctx, k.raw, increment, raw)
	return score, k.opts.failed("ZINCRBY", k.raw, err)
}

// Range returns the members ranked between start and stop inclusive, lowest score first
func (k *SortedSet[V]) Range(ctx context.Context, start, stop int64) ([]Scored[V], error) {
	raw, err := k.exec.ZRange(ctx, k.raw, start, stop)
	if err != nil {
		return nil, k.opts.failed("ZRANGE", k.raw, err)
	}

	out := make([]Scored[V], len(raw))
	for i, sm := range raw {
		v, err := k.codec.Read(sm.Member)
		if err != nil {
			return nil, k.opts.failed("ZRANGE", k.raw, err)
		}
		out[i] = Scored[V]{Member: v, Score: sm.Score}
	}
	return out, nil
}

// Rank returns the 0-based rank of member, lowest score first
func (k *SortedSet[V]) Rank(ctx context.Context, member V) (int64, bool, error) {
	raw, err := k.codec.Write(member)
	if err != nil {
		return 0, false, err
	}
	rank, ok, err := k.exec.ZRank(ctx, k.raw, raw)
	return rank, ok, k.opts.failed("ZRANK", k.raw, err)
}

// Rem removes members and returns how many were present
func (k *SortedSet[V]) Rem(ctx context.Context, members ...V) (int64, error) {
	raw, err := codec.WriteAll(k.codec, members)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.ZRem(ctx, k.raw, raw...)
	return n, k.opts.failed("ZREM", k.raw, err)
}

// Score returns the score of member
func (k *SortedSet[V]) Score(ctx context.Context, member V) (float64, bool, error) {
	raw, err := k.codec.Write(member)
	if err != nil {
		return 0, false, err
	}
	score, ok, err := k.exec.ZScore(ctx, k.raw, raw)
	return score, ok, k.opts.failed("ZSCORE", k.raw, err)
}
