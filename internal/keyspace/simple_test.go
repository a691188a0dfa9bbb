package keyspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/executor"
)

type profile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestSimple_SetConditions(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "k")

	tests := []struct {
		name    string
		value   string
		opts    []SetOption
		applied bool
		want    string
	}{
		{"xx on absent", "a", []SetOption{IfPresent()}, false, ""},
		{"nx on absent", "b", []SetOption{IfAbsent()}, true, "b"},
		{"nx on present", "c", []SetOption{IfAbsent()}, false, "b"},
		{"xx on present", "d", []SetOption{IfPresent()}, true, "d"},
		{"plain", "e", nil, true, "e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied, err := k.Set(ctx, tt.value, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)

			v, _, err := k.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestSimple_KeepTTL(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "k")

	_, err := k.Set(ctx, "v1", WithTTL(time.Hour))
	require.NoError(t, err)
	_, err = k.Set(ctx, "v2", KeepTTL())
	require.NoError(t, err)

	ttl, err := k.TTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpiresIn, ttl.State)
}

func TestSimple_Codecs(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)

	users, err := NewSimple(s, "profile", codec.JSON[profile]())
	require.NoError(t, err)

	_, err = users.Set(ctx, profile{Name: "Ada", Age: 36})
	require.NoError(t, err)

	p, found, err := users.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, profile{Name: "Ada", Age: 36}, p)

	counter, err := NewSimple(s, "counter", codec.Int64)
	require.NoError(t, err)
	_, err = counter.Set(ctx, 41)
	require.NoError(t, err)

	n, err := counter.Incr(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	v, _, err := counter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestSimple_DecodeErrorIsSurfaced(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)

	text := simpleKey(t, s, "k")
	_, err := text.Set(ctx, "not a number")
	require.NoError(t, err)

	number, err := NewSimple(s, "k", codec.Int64)
	require.NoError(t, err)

	_, found, err := number.Get(ctx)
	assert.False(t, found)

	var decodeErr *codec.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, []byte("not a number"), decodeErr.Data)
}

func TestSimple_WrongKind(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)

	members := setKey(t, s, "k")
	_, err := members.Add(ctx, "x")
	require.NoError(t, err)

	k := simpleKey(t, s, "k")
	_, _, err = k.Get(ctx)
	assert.ErrorIs(t, err, executor.ErrWrongKind)

	_, err = k.Incr(ctx)
	assert.ErrorIs(t, err, executor.ErrWrongKind)
}

func TestSimple_Numbers(t *testing.T) {
	ctx := context.Background()
	k, err := NewSimple(newSpace(t), "n", codec.Int64)
	require.NoError(t, err)

	n, err := k.IncrBy(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	n, _ = k.DecrBy(ctx, 3)
	assert.Equal(t, int64(7), n)

	n, _ = k.Decr(ctx)
	assert.Equal(t, int64(6), n)

	f, err := k.IncrByFloat(ctx, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 6.5, f)

	_, err = k.Incr(ctx)
	assert.ErrorIs(t, err, executor.ErrNotInteger)
}

func TestSimple_Strings(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "greeting")

	n, err := k.Append(ctx, "Hello")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	n, _ = k.Append(ctx, " World")
	assert.Equal(t, int64(11), n)

	length, _ := k.StrLen(ctx)
	assert.Equal(t, int64(11), length)

	part, err := k.GetRange(ctx, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(part))

	n, err = k.SetRange(ctx, 6, []byte("Redis"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	old, found, err := k.GetSet(ctx, "bye")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Hello Redis", old)

	ok, err := k.SetNX(ctx, "again")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSimple_Bits(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "bits")

	prev, err := k.SetBit(ctx, 3, true)
	require.NoError(t, err)
	assert.False(t, prev)

	bit, _ := k.GetBit(ctx, 3)
	assert.True(t, bit)

	count, _ := k.BitCount(ctx)
	assert.Equal(t, int64(1), count)

	pos, _ := k.BitPos(ctx, true)
	assert.Equal(t, int64(3), pos)
}

func TestSimple_SetEX(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "k")

	require.NoError(t, k.SetEX(ctx, "v", time.Minute))
	ttl, _ := k.TTL(ctx)
	assert.Equal(t, ExpiresIn, ttl.State)

	require.NoError(t, k.PSetEX(ctx, "v", 1500*time.Millisecond))
	pttl, _ := k.PTTL(ctx)
	assert.Equal(t, ExpiresIn, pttl.State)
	assert.LessOrEqual(t, pttl.Remaining, 1500*time.Millisecond)
}
