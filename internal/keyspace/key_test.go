package keyspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalApril/keyspace/internal/executor"
)

func TestDel(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "k")

	deleted, err := k.Del(ctx)
	require.NoError(t, err)
	assert.False(t, deleted, "never set")

	_, err = k.Set(ctx, "v")
	require.NoError(t, err)

	deleted, err = k.Del(ctx)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = k.Del(ctx)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSpace_DelExists(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)

	for _, name := range []string{"a", "b"} {
		_, err := simpleKey(t, s, name).Set(ctx, "v")
		require.NoError(t, err)
	}

	n, err := s.Exists(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Del(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestExpire(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)

	tests := []struct {
		name   string
		expire func(k Key) (bool, error)
	}{
		{"expire", func(k Key) (bool, error) { return k.Expire(ctx, time.Second) }},
		{"pexpire", func(k Key) (bool, error) { return k.PExpire(ctx, 100*time.Millisecond) }},
		{"expireat", func(k Key) (bool, error) { return k.ExpireAt(ctx, time.Now().Add(100*time.Millisecond)) }},
		{"pexpireat", func(k Key) (bool, error) { return k.PExpireAt(ctx, time.Now().Add(100*time.Millisecond)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := simpleKey(t, s, tt.name)

			ok, err := tt.expire(k)
			require.NoError(t, err)
			assert.False(t, ok, "absent key")

			_, err = k.Set(ctx, "v")
			require.NoError(t, err)

			ok, err = tt.expire(k)
			require.NoError(t, err)
			assert.True(t, ok)

			assert.Eventually(t, func() bool {
				_, found, err := k.Get(ctx)
				return err == nil && !found
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestPersist(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "k")

	ok, err := k.Persist(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = k.Set(ctx, "v", WithTTL(time.Minute))
	require.NoError(t, err)

	ok, err = k.Persist(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := k.TTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, NoExpiry, ttl.State)
}

func TestTTL_TriState(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "k")

	for _, get := range []func(context.Context) (TTL, error){k.TTL, k.PTTL} {
		ttl, err := get(ctx)
		require.NoError(t, err)
		assert.Equal(t, TTL{State: NoKey}, ttl)
	}

	_, err := k.Set(ctx, "v")
	require.NoError(t, err)
	ttl, err := k.TTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, TTL{State: NoExpiry}, ttl)

	_, err = k.Set(ctx, "v", WithTTL(10*time.Second))
	require.NoError(t, err)

	ttl, err = k.TTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpiresIn, ttl.State)
	assert.LessOrEqual(t, ttl.Remaining, 10*time.Second)
	assert.Greater(t, ttl.Remaining, time.Duration(0))

	pttl, err := k.PTTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpiresIn, pttl.State)
	assert.LessOrEqual(t, pttl.Remaining, 10*time.Second)
	assert.Greater(t, pttl.Remaining, 9*time.Second)
}

func TestShapeTTL(t *testing.T) {
	tests := []struct {
		name   string
		raw    int64
		unit   time.Duration
		legacy bool
		want   TTL
	}{
		{"missing", -2, time.Second, false, TTL{State: NoKey}},
		{"no expiry", -1, time.Second, false, TTL{State: NoExpiry}},
		{"seconds", 5, time.Second, false, TTL{State: ExpiresIn, Remaining: 5 * time.Second}},
		{"milliseconds", 1500, time.Millisecond, false, TTL{State: ExpiresIn, Remaining: 1500 * time.Millisecond}},
		{"zero remaining", 0, time.Second, false, TTL{State: ExpiresIn}},
		{"legacy -1", -1, time.Second, true, TTL{State: NoKey}},
		{"legacy positive", 3, time.Second, true, TTL{State: ExpiresIn, Remaining: 3 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shapeTTL(tt.raw, tt.unit, tt.legacy))
		})
	}
}

func TestLegacyTTL_KeepsExecutorReply(t *testing.T) {
	ctx := context.Background()
	exec := &recordingExecutor{ttl: -1}

	modern := simpleKey(t, newSpaceOn(t, exec, "p:"), "k")
	ttl, err := modern.TTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, NoExpiry, ttl.State)

	legacy := simpleKey(t, newSpaceOn(t, exec, "p:", WithLegacyTTL()), "k")
	ttl, err = legacy.PTTL(ctx)
	require.NoError(t, err)
	assert.Equal(t, NoKey, ttl.State)

	assert.Equal(t, []string{"TTL", "PTTL"}, exec.calls)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)
	src := simpleKey(t, s, "src")
	dst := simpleKey(t, s, "dst")

	err := src.Rename(ctx, dst)
	assert.ErrorIs(t, err, executor.ErrNoSuchKey, "absent source")

	_, err = src.Set(ctx, "value")
	require.NoError(t, err)

	err = src.Rename(ctx, src)
	assert.ErrorIs(t, err, executor.ErrSameKey)

	_, err = dst.Set(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, src.Rename(ctx, dst))

	exists, err := src.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	v, found, err := dst.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", v)
}

func TestRename_SameKeyNeverReachesStore(t *testing.T) {
	// recordingExecutor has no Rename, a call would panic
	k := simpleKey(t, newSpaceOn(t, &recordingExecutor{}, "p:"), "k")

	assert.ErrorIs(t, k.Rename(context.Background(), k), executor.ErrSameKey)
	_, err := k.RenameNX(context.Background(), k)
	assert.ErrorIs(t, err, executor.ErrSameKey)
}

func TestRenameNX_AcrossKinds(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)
	src := setKey(t, s, "members")
	_, err := src.Add(ctx, "a")
	require.NoError(t, err)

	target, err := s.Key("renamed")
	require.NoError(t, err)

	ok, err := src.RenameNX(ctx, target)
	require.NoError(t, err)
	assert.True(t, ok)

	kind, err := target.Type(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindSet, kind)
}

func TestTypeAndObject(t *testing.T) {
	ctx := context.Background()
	s := newSpace(t)
	k := simpleKey(t, s, "k")

	kind, err := k.Type(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindNone, kind)
	assert.False(t, kind.Exists())

	_, err = k.Set(ctx, "12")
	require.NoError(t, err)

	kind, _ = k.Type(ctx)
	assert.Equal(t, KindString, kind)

	enc, ok, err := k.ObjectEncoding(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "int", enc)

	refs, ok, _ := k.ObjectRefCount(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(1), refs)

	_, ok, _ = k.ObjectIdleTime(ctx)
	assert.True(t, ok)

	payload, ok, err := k.Dump(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, payload)
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	k := simpleKey(t, newSpace(t), "k")

	ok, err := k.Move(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = k.Set(ctx, "v")
	require.NoError(t, err)

	ok, err = k.Move(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	exists, _ := k.Exists(ctx)
	assert.False(t, exists)
}
