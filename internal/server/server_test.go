package server

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/config"
	"github.com/eternalApril/keyspace/internal/resp"
	"github.com/eternalApril/keyspace/internal/storage"
)

func aofConfig(t *testing.T) *config.Config {
	cfg := testConfig()
	cfg.Persistence.AOF.Enabled = true
	cfg.Persistence.AOF.Fsync = "always"
	cfg.Persistence.AOF.Filename = filepath.Join(t.TempDir(), "appendonly.aof")
	return cfg
}

func TestAOFReplay(t *testing.T) {
	cfg := aofConfig(t)

	e := newEngine(t, cfg)
	c := newClient(e)
	c.do("SET", "a", "1")
	c.do("SET", "t", "v")
	c.do("EXPIRE", "t", "100")
	c.do("INCRBYFLOAT", "f", "1.5")
	c.do("GET", "a")
	c.do("SET", "bad", "v", "EX", "nope")
	c.do("SELECT", "2")
	c.do("SADD", "s", "x", "y")
	popped := c.do("SPOP", "s")
	require.Equal(t, byte(resp.TypeBulkString), popped.Type)
	e.Shutdown()

	e = newEngine(t, cfg)
	defer e.Shutdown()
	c = newClient(e)

	assert.Equal(t, "1", string(c.do("GET", "a").String))
	assert.Equal(t, "1.5", string(c.do("GET", "f").String))
	assert.InDelta(t, 100, c.do("TTL", "t").Integer, 1)
	assert.Equal(t, int64(0), c.do("EXISTS", "bad").Integer)
	assert.Equal(t, int64(0), c.do("EXISTS", "s").Integer, "set went to db 2")

	c.do("SELECT", "2")
	members := texts(c.do("SMEMBERS", "s"))
	require.Len(t, members, 1)
	assert.NotEqual(t, string(popped.String), members[0])
}

func TestAOFKeepsWriteOrder(t *testing.T) {
	cfg := aofConfig(t)
	cfg.Persistence.AOF.Fsync = "no"

	e := newEngine(t, cfg)

	const workers, rounds = 8, 200
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newClient(e)
			for range rounds {
				c.do("INCRBYFLOAT", "f", "1")
				c.do("SADD", "s", "m")
				c.do("SPOP", "s")
			}
		}()
	}
	wg.Wait()

	c := newClient(e)
	want := string(c.do("GET", "f").String)
	require.Equal(t, strconv.Itoa(workers*rounds), want)
	members := c.do("SCARD", "s").Integer
	e.Shutdown()

	e = newEngine(t, cfg)
	defer e.Shutdown()
	c = newClient(e)

	assert.Equal(t, want, string(c.do("GET", "f").String))
	assert.Equal(t, members, c.do("SCARD", "s").Integer)
}

func TestRDBSavedOnShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Persistence.RDB.Enabled = true
	cfg.Persistence.RDB.Schedule = ""
	cfg.Persistence.RDB.Filename = filepath.Join(t.TempDir(), "dump.rdb")

	e := newEngine(t, cfg)
	c := newClient(e)
	c.do("HSET", "h", "f", "v")
	c.do("SELECT", "3")
	c.do("RPUSH", "l", "a", "b")
	assert.Equal(t, "OK", string(c.do("SAVE").String))
	assert.NotZero(t, c.do("LASTSAVE").Integer)
	c.do("RPUSH", "l", "c")
	e.Shutdown()

	e = newEngine(t, cfg)
	defer e.Shutdown()
	c = newClient(e)

	assert.Equal(t, "v", string(c.do("HGET", "h", "f").String))
	c.do("SELECT", "3")
	assert.Equal(t, []string{"a", "b", "c"}, texts(c.do("LRANGE", "l", "0", "-1")))
}

func TestInvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Persistence.RDB.Enabled = true
	cfg.Persistence.RDB.Schedule = "every now and then"
	cfg.Persistence.RDB.Filename = filepath.Join(t.TempDir(), "dump.rdb")

	dbs, err := storage.NewDatabases(1, 1)
	require.NoError(t, err)

	_, err = NewEngine(dbs, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestGCRemovesExpiredKeys(t *testing.T) {
	cfg := testConfig()
	cfg.GC.Enabled = true
	cfg.GC.Interval = 10 * time.Millisecond

	e := newEngine(t, cfg)
	defer e.Shutdown()
	c := newClient(e)

	for _, k := range []string{"a", "b", "c"} {
		c.do("SET", k, "v", "PX", "20")
	}
	c.do("SET", "keep", "v")

	assert.Eventually(t, func() bool {
		return c.do("DBSIZE").Integer == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func startServer(t *testing.T) (*Server, string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(newEngine(t, testConfig()), zap.NewNop())
	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ln)
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
		assert.ErrorIs(t, <-served, ErrServerClosed)
	})

	return srv, ln.Addr().String()
}

func TestServerWithRedisClient(t *testing.T) {
	_, addr := startServer(t)
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		DB:              1,
		Protocol:        2,
		DisableIdentity: true,
	})
	defer rdb.Close() //nolint:errcheck

	require.NoError(t, rdb.Ping(ctx).Err())
	require.NoError(t, rdb.Set(ctx, "k", "v", time.Minute).Err())

	got, err := rdb.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = rdb.Get(ctx, "missing").Result()
	assert.ErrorIs(t, err, redis.Nil)

	ttl, err := rdb.TTL(ctx, "k").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 1)

	cmds, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, "l", "a", "b")
		p.LLen(ctx, "l")
		p.Incr(ctx, "n")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), cmds[1].(*redis.IntCmd).Val())
	assert.Equal(t, int64(1), cmds[2].(*redis.IntCmd).Val())

	err = rdb.Incr(ctx, "l").Err()
	var rerr redis.Error
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "WRONGTYPE")

	// the client selected db 1 on connect
	other := redis.NewClient(&redis.Options{Addr: addr, Protocol: 2, DisableIdentity: true})
	defer other.Close() //nolint:errcheck
	n, err := other.Exists(ctx, "k").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServeAfterShutdown(t *testing.T) {
	srv := New(newEngine(t, testConfig()), zap.NewNop())
	require.NoError(t, srv.Shutdown(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.ErrorIs(t, srv.Serve(ln), ErrServerClosed)
}
