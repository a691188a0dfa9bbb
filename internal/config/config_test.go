package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "6380", cfg.Server.Port)
	assert.Equal(t, uint(32), cfg.Storage.Shards)
	assert.Equal(t, 16, cfg.Storage.Databases)
	assert.Equal(t, 100*time.Millisecond, cfg.GC.Interval)
	assert.Equal(t, 20, cfg.GC.SamplesPerCheck)
	assert.Equal(t, "everysec", cfg.Persistence.AOF.Fsync)
	assert.Equal(t, "@every 5m", cfg.Persistence.RDB.Schedule)
	assert.Equal(t, 2, cfg.Redis.Protocol)
	assert.Equal(t, 3*time.Second, cfg.Redis.ReadTimeout)

	assert.Equal(t, cfg, Default())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := `
server:
  port: "7000"
storage:
  shards: 4
  databases: 2
persistence:
  aof:
    enabled: true
    fsync: always
redis:
  addr: "cache:6379"
  legacy_ttl: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(file), 0o600))
	t.Setenv("KEYSPACE_SERVER_PORT", "7100")
	t.Setenv("KEYSPACE_REDIS_DB", "3")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "7100", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, uint(4), cfg.Storage.Shards)
	assert.Equal(t, 2, cfg.Storage.Databases)
	assert.True(t, cfg.Persistence.AOF.Enabled)
	assert.Equal(t, "always", cfg.Persistence.AOF.Fsync)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Redis.LegacyTTL)
	assert.Equal(t, "0.0.0.0:7100", cfg.Server.Address())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"no shards", map[string]string{"KEYSPACE_STORAGE_SHARDS": "0"}, ErrNoShards},
		{"no databases", map[string]string{"KEYSPACE_STORAGE_DATABASES": "0"}, ErrNoDatabases},
		{"threshold", map[string]string{"KEYSPACE_GC_MATCH_THRESHOLD": "1.5"}, ErrThreshold},
		{"fsync", map[string]string{"KEYSPACE_PERSISTENCE_AOF_FSYNC": "sometimes"}, ErrFsync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(t.TempDir())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
