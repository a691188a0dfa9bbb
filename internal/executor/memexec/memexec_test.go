package memexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalApril/keyspace/internal/executor"
)

func TestValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()

	value := []byte("hello")
	_, err := e.Set(ctx, []byte("k"), value, executor.SetArgs{})
	require.NoError(t, err)
	value[0] = 'J'

	got, ok, err := e.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", string(got))

	got[0] = 'Y'
	again, _, _ := e.Get(ctx, []byte("k"))
	assert.Equal(t, "hello", string(again))
}

func TestSetArgs(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()
	key := []byte("k")

	ok, err := e.Set(ctx, key, []byte("1"), executor.SetArgs{Condition: executor.IfPresent})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = e.Set(ctx, key, []byte("1"), executor.SetArgs{Condition: executor.IfAbsent, TTL: time.Minute})
	assert.True(t, ok)

	ok, _ = e.SetNX(ctx, key, []byte("2"))
	assert.False(t, ok)

	ttl, _ := e.TTL(ctx, key)
	assert.Equal(t, int64(60), ttl)

	_, err = e.Set(ctx, key, []byte("3"), executor.SetArgs{KeepTTL: true, TTL: time.Second})
	assert.ErrorIs(t, err, executor.ErrSyntax)
	assert.ErrorIs(t, e.SetEX(ctx, key, []byte("3"), 0), executor.ErrSyntax)
}

func TestTTLReplies(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()

	ttl, err := e.TTL(ctx, []byte("missing"))
	require.NoError(t, err)
	assert.Equal(t, executor.TTLNoKey, ttl)

	_, _ = e.Set(ctx, []byte("k"), []byte("v"), executor.SetArgs{})
	ttl, _ = e.PTTL(ctx, []byte("k"))
	assert.Equal(t, executor.TTLNoExpiry, ttl)

	require.NoError(t, e.PSetEX(ctx, []byte("k"), []byte("v"), 1500*time.Millisecond))
	pttl, _ := e.PTTL(ctx, []byte("k"))
	assert.InDelta(t, 1500, pttl, 50)
	ttl, _ = e.TTL(ctx, []byte("k"))
	assert.Equal(t, int64(1), ttl)

	ok, _ := e.Expire(ctx, []byte("k"), -time.Second)
	assert.True(t, ok)
	n, _ := e.Exists(ctx, []byte("k"))
	assert.Equal(t, int64(0), n)
}

func TestExpireSecondResolution(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()
	key := []byte("k")

	tests := []struct {
		name     string
		expire   func() (bool, error)
		min, max int64
	}{
		{"sub-second rounds up", func() (bool, error) { return e.Expire(ctx, key, 100*time.Millisecond) }, 900, 1000},
		{"fraction truncated", func() (bool, error) { return e.Expire(ctx, key, 2500*time.Millisecond) }, 1900, 2000},
		{"pexpire keeps milliseconds", func() (bool, error) { return e.PExpire(ctx, key, 2500*time.Millisecond) }, 2400, 2500},
		{"setex", func() (bool, error) { return true, e.SetEX(ctx, key, []byte("v"), 1500*time.Millisecond) }, 900, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _ = e.Set(ctx, key, []byte("v"), executor.SetArgs{})

			ok, err := tt.expire()
			require.NoError(t, err)
			assert.True(t, ok)

			pttl, _ := e.PTTL(ctx, key)
			assert.GreaterOrEqual(t, pttl, tt.min)
			assert.LessOrEqual(t, pttl, tt.max)
		})
	}

	_, _ = e.Set(ctx, key, []byte("v"), executor.SetArgs{})
	at := time.Now().Add(90 * time.Second)
	_, _ = e.ExpireAt(ctx, key, at)
	pttl, _ := e.PTTL(ctx, key)
	assert.InDelta(t, time.Until(time.Unix(at.Unix(), 0)).Milliseconds(), pttl, 20)
}

func TestDecrBy(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()

	n, err := e.DecrBy(ctx, []byte("c"), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), n)

	n, _ = e.Decr(ctx, []byte("c"))
	assert.Equal(t, int64(-4), n)

	_, err = e.DecrBy(ctx, []byte("c"), -1<<63)
	assert.ErrorIs(t, err, executor.ErrOverflow)
}

func TestSelectAndMove(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()
	other, err := e.Select(3)
	require.NoError(t, err)
	assert.Equal(t, 3, other.Index())

	_, _ = e.Set(ctx, []byte("k"), []byte("v"), executor.SetArgs{})

	ok, err := e.Move(ctx, []byte("k"), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	_, found, _ := e.Get(ctx, []byte("k"))
	assert.False(t, found)
	v, found, _ := other.Get(ctx, []byte("k"))
	assert.True(t, found)
	assert.Equal(t, "v", string(v))

	size, _ := other.DBSize(ctx)
	assert.Equal(t, int64(1), size)
	require.NoError(t, other.FlushDB(ctx))
	size, _ = other.DBSize(ctx)
	assert.Equal(t, int64(0), size)

	_, err = e.Select(16)
	assert.ErrorIs(t, err, executor.ErrInvalidDB)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewStandalone()

	_, err := e.Set(ctx, []byte("k"), []byte("v"), executor.SetArgs{})
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = e.HGet(ctx, []byte("h"), "f")
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = e.Scan(ctx, 0, executor.ScanArgs{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetAlgebraBytes(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()

	_, _ = e.SAdd(ctx, []byte("a"), []byte("x"), []byte("y"))
	_, _ = e.SAdd(ctx, []byte("b"), []byte("y"))

	diff, err := e.SDiff(ctx, []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x")}, diff)

	n, err := e.SInterStore(ctx, []byte("dst"), []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	members, _ := e.SMembers(ctx, []byte("dst"))
	assert.Equal(t, [][]byte{[]byte("y")}, members)
}

func TestSortedSetBytes(t *testing.T) {
	ctx := context.Background()
	e := NewStandalone()

	n, err := e.ZAdd(ctx, []byte("z"),
		executor.ScoredMember{Member: []byte("b"), Score: 2},
		executor.ScoredMember{Member: []byte("a"), Score: 1},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, _ := e.ZRange(ctx, []byte("z"), 0, -1)
	assert.Equal(t, []executor.ScoredMember{
		{Member: []byte("a"), Score: 1},
		{Member: []byte("b"), Score: 2},
	}, all)
}
