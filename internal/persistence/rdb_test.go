package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/storage"
)

func newDatabases(t *testing.T) *storage.Databases {
	t.Helper()
	dbs, err := storage.NewDatabases(4, 4)
	require.NoError(t, err)
	return dbs
}

func TestRDB_SaveLoad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "dump.rdb")
	rdb := NewRDB(name, zap.NewNop())

	src := newDatabases(t)
	db0, _ := src.DB(0)
	db3, _ := src.DB(3)
	db0.Set("greeting", []byte("hello"), storage.SetOptions{TTL: time.Hour})
	_, err := db3.SAdd("tags", []string{"a", "b"})
	require.NoError(t, err)

	assert.True(t, rdb.LastSave().IsZero())
	require.NoError(t, rdb.Save(src))
	assert.False(t, rdb.LastSave().IsZero())

	_, err = os.Stat(name + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	dst := newDatabases(t)
	require.NoError(t, rdb.Load(dst))

	restored0, _ := dst.DB(0)
	v, ok, err := restored0.Get("greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), v)
	_, status := restored0.Expiry("greeting")
	assert.Equal(t, storage.ExpActive, status)

	restored3, _ := dst.DB(3)
	members, err := restored3.SMembers("tags")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)
}

func TestRDB_LoadMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	rdb := NewRDB(filepath.Join(dir, "missing.rdb"), zap.NewNop())
	assert.NoError(t, rdb.Load(newDatabases(t)))

	empty := filepath.Join(dir, "empty.rdb")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.NoError(t, NewRDB(empty, zap.NewNop()).Load(newDatabases(t)))
}

func TestRDB_BadHeader(t *testing.T) {
	name := filepath.Join(t.TempDir(), "dump.rdb")
	require.NoError(t, os.WriteFile(name, []byte("REDIS0011garbage"), 0o644))

	err := NewRDB(name, zap.NewNop()).Load(newDatabases(t))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestRDB_Background(t *testing.T) {
	name := filepath.Join(t.TempDir(), "dump.rdb")
	rdb := NewRDB(name, zap.NewNop())
	dbs := newDatabases(t)

	done := make(chan error, 1)
	require.NoError(t, rdb.Background(dbs, func(err error) { done <- err }))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("background save never finished")
	}

	assert.Eventually(t, func() bool { return !rdb.Saving() }, time.Second, 5*time.Millisecond)
	_, err := os.Stat(name)
	assert.NoError(t, err)
}

func TestRDB_OneSaveAtATime(t *testing.T) {
	rdb := NewRDB(filepath.Join(t.TempDir(), "dump.rdb"), zap.NewNop())
	rdb.saving.Store(true)

	assert.ErrorIs(t, rdb.Save(newDatabases(t)), ErrSaveInProgress)
	assert.ErrorIs(t, rdb.Background(newDatabases(t), nil), ErrSaveInProgress)
}
