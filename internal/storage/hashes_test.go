package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalApril/keyspace/internal/executor"
)

func TestHashes(t *testing.T) {
	s := newTestStorage(t, 1)

	created, err := s.HSet("h", "name", []byte("alice"))
	require.NoError(t, err)
	assert.True(t, created)
	created, _ = s.HSet("h", "name", []byte("bob"))
	assert.False(t, created)

	ok, _ := s.HSetNX("h", "name", []byte("carol"))
	assert.False(t, ok)

	require.NoError(t, s.HMSet("h", []executor.FieldValue{
		{Field: "age", Value: []byte("30")},
		{Field: "city", Value: []byte("Paris")},
	}))

	v, ok, _ := s.HGet("h", "name")
	assert.True(t, ok)
	assert.Equal(t, "bob", string(v))

	values, _ := s.HMGet("h", []string{"age", "nope"})
	assert.Equal(t, []byte("30"), values[0])
	assert.Nil(t, values[1])

	keys, _ := s.HKeys("h")
	assert.Equal(t, []string{"age", "city", "name"}, keys)

	all, _ := s.HGetAll("h")
	assert.Len(t, all, 3)

	n, _ := s.HLen("h")
	assert.Equal(t, int64(3), n)

	n, _ = s.HDel("h", []string{"age", "city", "name", "ghost"})
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int64(0), s.Exists("h"))
}

func TestHIncr(t *testing.T) {
	s := newTestStorage(t, 1)

	n, err := s.HIncrBy("h", "n", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	f, err := s.HIncrByFloat("h", "f", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	s.HSet("h", "text", []byte("abc")) //nolint:errcheck
	_, err = s.HIncrBy("h", "text", 1)
	assert.ErrorIs(t, err, executor.ErrNotInteger)

	_, err = s.HIncrByFloat("fresh", "text", 0)
	require.NoError(t, err)
}

func TestHScan(t *testing.T) {
	s := newTestStorage(t, 1)
	for _, f := range []string{"a", "b", "c", "d"} {
		s.HSet("h", f, []byte("v-"+f)) //nolint:errcheck
	}

	got := make(map[string]string)
	cursor := uint64(0)
	for {
		next, pairs, err := s.HScan("h", cursor, "", 1)
		require.NoError(t, err)
		for _, p := range pairs {
			got[p.Field] = string(p.Value)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	assert.Equal(t, map[string]string{"a": "v-a", "b": "v-b", "c": "v-c", "d": "v-d"}, got)
}
