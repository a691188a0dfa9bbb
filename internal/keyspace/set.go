package keyspace

import (
	"context"

	"github.com/eternalApril/keyspace/internal/codec"
)

// Set is a key holding unique members of type V
type Set[V any] struct {
	BaseKey
	codec codec.Codec[V]
}

// NewSet returns the set key of value in s
func NewSet[P, K, V any](s *Space[P, K], value K, c codec.Codec[V]) (*Set[V], error) {
	base, err := s.base(value)
	if err != nil {
		return nil, err
	}
	return &Set[V]{BaseKey: base, codec: c}, nil
}

func (k *Set[V]) decodeAll(command string, raw [][]byte, err error) ([]V, error) {
	if err != nil {
		return nil, k.opts.failed(command, k.raw, err)
	}
	members, err := codec.ReadAll(k.codec, raw)
	return members, k.opts.failed(command, k.raw, err)
}

func (k *Set[V]) one(command string, raw []byte, found bool, err error) (V, bool, error) {
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

// Add adds members and returns how many were new
func (k *Set[V]) Add(ctx context.Context, members ...V) (int64, error) {
	raw, err := codec.WriteAll(k.codec, members)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.SAdd(ctx, k.raw, raw...)
	return n, k.opts.failed("SADD", k.raw, err)
}

// Card returns the number of members
func (k *Set[V]) Card(ctx context.Context) (int64, error) {
	n, err := k.exec.SCard(ctx, k.raw)
	return n, k.opts.failed("SCARD", k.raw, err)
}

// IsMember reports whether member belongs to the set
func (k *Set[V]) IsMember(ctx context.Context, member V) (bool, error) {
	raw, err := k.codec.Write(member)
	if err != nil {
		return false, err
	}
	ok, err := k.exec.SIsMember(ctx, k.raw, raw)
	return ok, k.opts.failed("SISMEMBER", k.raw, err)
}

// Members returns every member
func (k *Set[V]) Members(ctx context.Context) ([]V, error) {
	raw, err := k.exec.SMembers(ctx, k.raw)
	return k.decodeAll("SMEMBERS", raw, err)
}

// MoveMember moves member to destination. Returns false when it is not a member
func (k *Set[V]) MoveMember(ctx context.Context, destination *Set[V], member V) (bool, error) {
	raw, err := k.codec.Write(member)
	if err != nil {
		return false, err
	}
	ok, err := k.exec.SMove(ctx, k.raw, destination.raw, raw)
	return ok, k.opts.failed("SMOVE", k.raw, err)
}

// Pop removes and returns a random member
func (k *Set[V]) Pop(ctx context.Context) (V, bool, error) {
	raw, ok, err := k.exec.SPop(ctx, k.raw)
	return k.one("SPOP", raw, ok, err)
}

// RandMember returns a random member without removing it
func (k *Set[V]) RandMember(ctx context.Context) (V, bool, error) {
	raw, ok, err := k.exec.SRandMember(ctx, k.raw)
	return k.one("SRANDMEMBER", raw, ok, err)
}

// RandMembers returns up to count distinct members when count is positive,
// or -count members that may repeat when it is negative
func (k *Set[V]) RandMembers(ctx context.Context, count int64) ([]V, error) {
	raw, err := k.exec.SRandMembers(ctx, k.raw, count)
	return k.decodeAll("SRANDMEMBER", raw, err)
}

// Rem removes members and returns how many were present
func (k *Set[V]) Rem(ctx context.Context, members ...V) (int64, error) {
	raw, err := codec.WriteAll(k.codec, members)
	if err != nil {
		return 0, err
	}
	n, err := k.exec.SRem(ctx, k.raw, raw...)
	return n, k.opts.failed("SREM", k.raw, err)
}

// Scan issues one SSCAN call
func (k *Set[V]) Scan(ctx context.Context, cursor MemberCursor, opts ...ScanOption) (MemberCursor, []V, error) {
	next, raw, err := k.exec.SScan(ctx, k.raw, uint64(cursor), scanArgs(opts))
	members, err := k.decodeAll("SSCAN", raw, err)
	if err != nil {
		return 0, nil, err
	}
	return MemberCursor(next), members, nil
}

// Scanner returns a scanner over the members of the set
func (k *Set[V]) Scanner(opts ...ScanOption) *Scanner[MemberCursor, V] {
	return NewScanner[MemberCursor, V](func(ctx context.Context, cursor MemberCursor) (MemberCursor, []V, error) {
		return k.Scan(ctx, cursor, opts...)
	})
}

func (k *Set[V]) with(others []*Set[V]) [][]byte {
	keys := make([][]byte, 0, len(others)+1)
	keys = append(keys, k.raw)
	for _, o := range others {
		keys = append(keys, o.raw)
	}
	return keys
}

// Diff returns the members of k that belong to none of others.
// Missing keys count as empty sets
func (k *Set[V]) Diff(ctx context.Context, others ...*Set[V]) ([]V, error) {
	raw, err := k.exec.SDiff(ctx, k.with(others)...)
	return k.decodeAll("SDIFF", raw, err)
}

// Inter returns the members common to k and every one of others
func (k *Set[V]) Inter(ctx context.Context, others ...*Set[V]) ([]V, error) {
	raw, err := k.exec.SInter(ctx, k.with(others)...)
	return k.decodeAll("SINTER", raw, err)
}

// Union returns the members of k and others
func (k *Set[V]) Union(ctx context.Context, others ...*Set[V]) ([]V, error) {
	raw, err := k.exec.SUnion(ctx, k.with(others)...)
	return k.decodeAll("SUNION", raw, err)
}

// DiffStore writes Diff to destination, replacing it, and returns its size.
// An empty result leaves destination absent
func (k *Set[V]) DiffStore(ctx context.Context, destination *Set[V], others ...*Set[V]) (int64, error) {
	n, err := k.exec.SDiffStore(ctx, destination.raw, k.with(others)...)
	return n, k.opts.failed("SDIFFSTORE", destination.raw, err)
}

// InterStore writes Inter to destination, replacing it, and returns its size
func (k *Set[V]) InterStore(ctx context.Context, destination *Set[V], others ...*Set[V]) (int64, error) {
	n, err := k.exec.SInterStore(ctx, destination.raw, k.with(others)...)
	return n, k.opts.failed("SINTERSTORE", destination.raw, err)
}

// UnionStore writes Union to destination, replacing it, and returns its size
func (k *Set[V]) UnionStore(ctx context.Context, destination *Set[V], others ...*Set[V]) (int64, error) {
	n, err := k.exec.SUnionStore(ctx, destination.raw, k.with(others)...)
	return n, k.opts.failed("SUNIONSTORE", destination.raw, err)
}
