package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/eternalApril/keyspace/internal/config"
	"github.com/eternalApril/keyspace/internal/logger"
	"github.com/eternalApril/keyspace/internal/resp"
	"github.com/eternalApril/keyspace/internal/storage"
)

// testConfig returns a configuration with every background task and persistence off
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.GC.Enabled = false
	cfg.Persistence.AOF.Enabled = false
	cfg.Persistence.RDB.Enabled = false
	return cfg
}

func newEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()

	dbs, err := storage.NewDatabases(cfg.Storage.Databases, 4)
	if err != nil {
		t.Fatal(err)
	}
	log, err := logger.New("debug", "console")
	if err != nil {
		t.Fatal(err)
	}
	eng, err := NewEngine(dbs, cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

// setupEngine creates a fresh engine with a clean store for each test
func setupEngine(t *testing.T) *Engine {
	eng := newEngine(t, testConfig())
	t.Cleanup(eng.Shutdown)
	return eng
}

// helper to construct a RESP command request
func makeCommand(args ...string) []resp.Value {
	vals := make([]resp.Value, len(args))
	for i, arg := range args {
		vals[i] = resp.MakeBulkString(arg)
	}
	return vals
}

// testClient runs commands on one session
type testClient struct {
	e    *Engine
	sess *Session
}

func newClient(e *Engine) *testClient {
	return &testClient{e: e, sess: NewSession()}
}

func (c *testClient) do(name string, args ...string) resp.Value {
	return c.e.Execute(context.Background(), c.sess, name, makeCommand(args...))
}

func texts(v resp.Value) []string {
	out := make([]string, len(v.Array))
	for i, item := range v.Array {
		out[i] = string(item.String)
	}
	return out
}

func sorted(v resp.Value) []string {
	out := texts(v)
	slices.Sort(out)
	return out
}

func TestPing(t *testing.T) {
	c := newClient(setupEngine(t))

	tests := []struct {
		name     string
		args     []string
		wantType byte
		wantStr  string
	}{
		{"Simple PING", []string{}, resp.TypeSimpleString, "PONG"},
		{"PING with message", []string{"Hello"}, resp.TypeBulkString, "Hello"},
		{"PING too many args", []string{"a", "b"}, resp.TypeError, string(resp.MakeErrorWrongNumberOfArguments("ping").String)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.do("PING", tt.args...)
			if res.Type != tt.wantType {
				t.Errorf("got type %v, want %v", res.Type, tt.wantType)
			}

			got := string(res.String)
			if got != tt.wantStr {
				t.Errorf("got %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestUnknownCommandAndArity(t *testing.T) {
	c := newClient(setupEngine(t))

	res := c.do("NOPE")
	if res.Type != resp.TypeError || string(res.String) != "ERR unknown command 'nope'" {
		t.Errorf("unexpected reply %q", res.String)
	}

	res = c.do("get")
	if string(res.String) != "ERR wrong number of arguments for 'get' command" {
		t.Errorf("unexpected reply %q", res.String)
	}

	res = c.do("get", "k", "extra")
	if res.Type != resp.TypeError {
		t.Errorf("GET with two keys should fail, got %v", res.Type)
	}

	// names are case-insensitive
	if res := c.do("echo", "hi"); string(res.String) != "hi" {
		t.Errorf("echo returned %q", res.String)
	}
}

func TestBasicSetGetDel(t *testing.T) {
	c := newClient(setupEngine(t))

	// GET missing key
	res := c.do("GET", "mykey")
	if res.IsNull != true {
		t.Errorf("expected null for missing key, got %v", res.Type)
	}

	// SET key
	res = c.do("SET", "mykey", "myvalue")
	if string(res.String) != "OK" {
		t.Errorf("expected OK, got %v", res.String)
	}

	// GET key
	res = c.do("GET", "mykey")
	if string(res.String) != "myvalue" {
		t.Errorf("expected myvalue, got %s", res.String)
	}

	// DEL key
	res = c.do("DEL", "mykey", "other")
	if res.Integer != 1 {
		t.Errorf("expected 1 deleted, got %d", res.Integer)
	}

	// GET key again
	res = c.do("GET", "mykey")
	if res.IsNull != true {
		t.Errorf("expected null after delete, got %v", res.Type)
	}
}

func TestSetNX_XX(t *testing.T) {
	c := newClient(setupEngine(t))

	// SET NX on new key -> OK
	res := c.do("SET", "k1", "v1", "NX")
	if string(res.String) != "OK" {
		t.Errorf("SET NX new key failed")
	}

	// SET NX on existing key -> Nil
	res = c.do("SET", "k1", "v2", "NX")
	if res.IsNull != true {
		t.Errorf("SET NX existing key should return nil, got %v", res.Type)
	}
	// Verify value didn't change
	val := c.do("GET", "k1")
	if string(val.String) != "v1" {
		t.Errorf("SET NX changed value despite failure")
	}

	// SET XX on missing key -> Nil
	res = c.do("SET", "k2", "v2", "XX")
	if res.IsNull != true {
		t.Errorf("SET XX missing key should return nil, got %v", res.Type)
	}

	// SET XX on existing key -> OK
	res = c.do("SET", "k1", "v_updated", "XX")
	if string(res.String) != "OK" {
		t.Errorf("SET XX existing key failed")
	}
	val = c.do("GET", "k1")
	if string(val.String) != "v_updated" {
		t.Errorf("SET XX failed to update value")
	}
}

func TestSetTTL(t *testing.T) {
	c := newClient(setupEngine(t))

	// SET EX (Seconds)
	c.do("SET", "k_ex", "val", "EX", "1")

	// Check immediately
	ttl := c.do("TTL", "k_ex")
	if ttl.Integer != 1 {
		t.Errorf("expected TTL 1, got %d", ttl.Integer)
	}

	// Wait for expiration (1.1s)
	time.Sleep(1100 * time.Millisecond)
	res := c.do("GET", "k_ex")
	if res.IsNull != true {
		t.Errorf("key should have expired")
	}

	// SET PX (Milliseconds)
	c.do("SET", "k_px", "val", "PX", "100")

	pttl := c.do("PTTL", "k_px")
	if pttl.Integer <= 0 || pttl.Integer > 100 {
		t.Errorf("expected PTTL ~100ms, got %d", pttl.Integer)
	}

	time.Sleep(150 * time.Millisecond)
	res = c.do("GET", "k_px")
	if res.IsNull != true {
		t.Errorf("key should have expired (PX)")
	}
}

func TestSetKeepTTL(t *testing.T) {
	c := newClient(setupEngine(t))

	// Set key with TTL of 100 seconds
	c.do("SET", "k_keep", "v1", "EX", "100")

	// Update value but Keep TTL
	c.do("SET", "k_keep", "v2", "KEEPTTL")

	val := c.do("GET", "k_keep")
	if string(val.String) != "v2" {
		t.Errorf("KEEPTTL value not updated")
	}

	// Verify TTL is still approx 100
	ttl := c.do("TTL", "k_keep")
	if ttl.Integer < 95 || ttl.Integer > 100 {
		t.Errorf("KEEPTTL removed the expiration, got %d", ttl.Integer)
	}

	// Verify KEEPTTL on new key behaves like persistent key (no TTL)
	c.do("SET", "k_new_keep", "v1", "KEEPTTL")
	ttl = c.do("TTL", "k_new_keep")
	if ttl.Integer != -1 {
		t.Errorf("KEEPTTL on new key should have -1 TTL, got %d", ttl.Integer)
	}
}

func TestSetTimestamps(t *testing.T) {
	c := newClient(setupEngine(t))

	// EXAT: expire 2 seconds in future
	future := time.Now().Add(2 * time.Second).Unix()
	c.do("SET", "k_exat", "v", "EXAT", fmt.Sprintf("%d", future))

	ttl := c.do("TTL", "k_exat")
	// Should be 1 or 2 depending on rounding
	if ttl.Integer < 1 || ttl.Integer > 2 {
		t.Errorf("EXAT failed, expected ~2s TTL, got %d", ttl.Integer)
	}

	// PXAT in the past stores nothing
	past := time.Now().Add(-time.Minute).UnixMilli()
	res := c.do("SET", "k_past", "v", "PXAT", strconv.FormatInt(past, 10))
	if string(res.String) != "OK" {
		t.Errorf("expected OK, got %q", res.String)
	}
	if res := c.do("EXISTS", "k_past"); res.Integer != 0 {
		t.Errorf("key with a past deadline should not exist")
	}
}

func TestTTL_PTTL_Codes(t *testing.T) {
	c := newClient(setupEngine(t))

	// Missing Key -> -2
	res := c.do("TTL", "missing")
	if res.Integer != -2 {
		t.Errorf("expected -2 for missing key, got %d", res.Integer)
	}

	// Persistent Key -> -1
	c.do("SET", "persistent", "val")
	res = c.do("TTL", "persistent")
	if res.Integer != -1 {
		t.Errorf("expected -1 for persistent key, got %d", res.Integer)
	}
	res = c.do("PTTL", "persistent")
	if res.Integer != -1 {
		t.Errorf("expected -1 for persistent key (PTTL), got %d", res.Integer)
	}

	// EXPIRE then PERSIST
	if res := c.do("EXPIRE", "persistent", "100"); res.Integer != 1 {
		t.Errorf("EXPIRE should apply, got %d", res.Integer)
	}
	if res := c.do("TTL", "persistent"); res.Integer != 100 {
		t.Errorf("expected TTL 100, got %d", res.Integer)
	}
	if res := c.do("PERSIST", "persistent"); res.Integer != 1 {
		t.Errorf("PERSIST should apply, got %d", res.Integer)
	}
	if res := c.do("EXPIRE", "missing", "100"); res.Integer != 0 {
		t.Errorf("EXPIRE on missing key should return 0, got %d", res.Integer)
	}
}

func TestSetSyntaxErrors(t *testing.T) {
	c := newClient(setupEngine(t))

	tests := []struct {
		name     string
		args     []string
		expected string // partial error string match
	}{
		{
			"NX and XX together",
			[]string{"k", "v", "NX", "XX"},
			"XX cannot use with NX",
		},
		{
			"XX and NX together",
			[]string{"k", "v", "XX", "NX"},
			"NX cannot use with XX",
		},
		{
			"EX without value",
			[]string{"k", "v", "EX"},
			"syntax error",
		},
		{
			"EX with non-integer",
			[]string{"k", "v", "EX", "abc"},
			"value TTL is not integer",
		},
		{
			"EX zero",
			[]string{"k", "v", "EX", "0"},
			"invalid expire time in 'set' command",
		},
		{
			"Double TTL (EX then PX)",
			[]string{"k", "v", "EX", "10", "PX", "100"},
			"TTL already specified",
		},
		{
			"KEEPTTL with EX",
			[]string{"k", "v", "KEEPTTL", "EX", "10"},
			"TTL already specified",
		},
		{
			"Unknown Argument",
			[]string{"k", "v", "FOOBAR"},
			"syntax error with command argument 'FOOBAR'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.do("SET", tt.args...)
			if res.Type != resp.TypeError {
				t.Errorf("expected error, got %v", res.Type)
			}
			if !strings.Contains(string(res.String), tt.expected) {
				t.Errorf("expected error containing %q, got %q", tt.expected, res.String)
			}
		})
	}
}

func TestWrongType(t *testing.T) {
	c := newClient(setupEngine(t))

	c.do("LPUSH", "l", "a")
	res := c.do("GET", "l")
	if res.Type != resp.TypeError || !strings.HasPrefix(string(res.String), "WRONGTYPE ") {
		t.Errorf("expected WRONGTYPE, got %q", res.String)
	}
	if res := c.do("TYPE", "l"); string(res.String) != "list" {
		t.Errorf("TYPE returned %q", res.String)
	}
}

func TestIncrementsAndStrings(t *testing.T) {
	c := newClient(setupEngine(t))

	if res := c.do("INCR", "n"); res.Integer != 1 {
		t.Errorf("INCR returned %d", res.Integer)
	}
	if res := c.do("INCRBY", "n", "41"); res.Integer != 42 {
		t.Errorf("INCRBY returned %d", res.Integer)
	}
	if res := c.do("DECRBY", "n", "2"); res.Integer != 40 {
		t.Errorf("DECRBY returned %d", res.Integer)
	}
	if res := c.do("INCRBYFLOAT", "n", "0.5"); string(res.String) != "40.5" {
		t.Errorf("INCRBYFLOAT returned %q", res.String)
	}

	c.do("SET", "s", "abc")
	if res := c.do("INCR", "s"); res.Type != resp.TypeError {
		t.Errorf("INCR on text should fail")
	}
	if res := c.do("APPEND", "s", "def"); res.Integer != 6 {
		t.Errorf("APPEND returned %d", res.Integer)
	}
	if res := c.do("GETRANGE", "s", "1", "-2"); string(res.String) != "bcde" {
		t.Errorf("GETRANGE returned %q", res.String)
	}
	if res := c.do("SETRANGE", "s", "6", "!"); res.Integer != 7 {
		t.Errorf("SETRANGE returned %d", res.Integer)
	}
	if res := c.do("STRLEN", "s"); res.Integer != 7 {
		t.Errorf("STRLEN returned %d", res.Integer)
	}

	if res := c.do("SETBIT", "b", "7", "1"); res.Integer != 0 {
		t.Errorf("SETBIT returned %d", res.Integer)
	}
	if res := c.do("GETBIT", "b", "7"); res.Integer != 1 {
		t.Errorf("GETBIT returned %d", res.Integer)
	}
	if res := c.do("BITCOUNT", "b"); res.Integer != 1 {
		t.Errorf("BITCOUNT returned %d", res.Integer)
	}
	if res := c.do("SETBIT", "b", "1", "2"); res.Type != resp.TypeError {
		t.Errorf("SETBIT with 2 should fail")
	}
}

func TestSelectAndMove(t *testing.T) {
	e := setupEngine(t)
	first, second := newClient(e), newClient(e)

	if res := second.do("SELECT", "1"); string(res.String) != "OK" {
		t.Fatalf("SELECT failed: %q", res.String)
	}
	second.do("SET", "k", "v")

	if res := first.do("GET", "k"); !res.IsNull {
		t.Errorf("databases should be isolated")
	}
	if res := first.do("DBSIZE"); res.Integer != 0 {
		t.Errorf("DBSIZE of db 0 is %d", res.Integer)
	}

	if res := second.do("MOVE", "k", "0"); res.Integer != 1 {
		t.Errorf("MOVE returned %d", res.Integer)
	}
	if res := first.do("GET", "k"); string(res.String) != "v" {
		t.Errorf("moved key not found in db 0")
	}

	if res := second.do("SELECT", "16"); res.Type != resp.TypeError {
		t.Errorf("SELECT out of range should fail")
	}
	if second.sess.DB() != 1 {
		t.Errorf("failed SELECT changed the database")
	}

	second.do("SET", "x", "1")
	if res := second.do("FLUSHDB"); string(res.String) != "OK" {
		t.Errorf("FLUSHDB returned %q", res.String)
	}
	if res := second.do("DBSIZE"); res.Integer != 0 {
		t.Errorf("FLUSHDB left %d keys", res.Integer)
	}
}

func TestRenameAndObject(t *testing.T) {
	c := newClient(setupEngine(t))

	c.do("SET", "a", "123")
	if res := c.do("RENAME", "missing", "b"); res.Type != resp.TypeError {
		t.Errorf("RENAME of a missing key should fail")
	}
	if res := c.do("RENAME", "a", "b"); string(res.String) != "OK" {
		t.Errorf("RENAME returned %q", res.String)
	}
	c.do("SET", "c", "x")
	if res := c.do("RENAMENX", "b", "c"); res.Integer != 0 {
		t.Errorf("RENAMENX onto an existing key should return 0")
	}
	if res := c.do("OBJECT", "ENCODING", "b"); string(res.String) != "int" {
		t.Errorf("OBJECT ENCODING returned %q", res.String)
	}
}

func TestScanAllKeys(t *testing.T) {
	c := newClient(setupEngine(t))

	want := make([]string, 0, 50)
	for i := range 50 {
		key := fmt.Sprintf("key:%02d", i)
		want = append(want, key)
		c.do("SET", key, "v")
	}
	c.do("SET", "other", "v")

	var got []string
	cursor := "0"
	for {
		res := c.do("SCAN", cursor, "MATCH", "key:*", "COUNT", "7")
		if res.Type != resp.TypeArray || len(res.Array) != 2 {
			t.Fatalf("unexpected reply %+v", res)
		}
		cursor = string(res.Array[0].String)
		got = append(got, texts(res.Array[1])...)
		if cursor == "0" {
			break
		}
	}

	slices.Sort(got)
	got = slices.Compact(got)
	if !slices.Equal(got, want) {
		t.Errorf("SCAN returned %v", got)
	}
}

func TestHashCommands(t *testing.T) {
	c := newClient(setupEngine(t))

	if res := c.do("HSET", "h", "f1", "v1", "f2", "v2"); res.Integer != 2 {
		t.Errorf("HSET created %d fields", res.Integer)
	}
	if res := c.do("HSET", "h", "f1", "x"); res.Integer != 0 {
		t.Errorf("HSET of an existing field created %d", res.Integer)
	}
	if res := c.do("HSET", "h", "f1"); res.Type != resp.TypeError {
		t.Errorf("HSET without a value should fail")
	}
	if res := c.do("HGETALL", "h"); !slices.Equal(texts(res), []string{"f1", "x", "f2", "v2"}) {
		t.Errorf("HGETALL returned %v", texts(res))
	}
	res := c.do("HMGET", "h", "f2", "nope")
	if len(res.Array) != 2 || string(res.Array[0].String) != "v2" || !res.Array[1].IsNull {
		t.Errorf("HMGET returned %+v", res)
	}
	if res := c.do("HINCRBY", "h", "n", "5"); res.Integer != 5 {
		t.Errorf("HINCRBY returned %d", res.Integer)
	}
	if res := c.do("HDEL", "h", "f1", "n", "zz"); res.Integer != 2 {
		t.Errorf("HDEL removed %d", res.Integer)
	}
	if res := c.do("HLEN", "h"); res.Integer != 1 {
		t.Errorf("HLEN returned %d", res.Integer)
	}
}

func TestListCommands(t *testing.T) {
	c := newClient(setupEngine(t))

	c.do("RPUSH", "l", "a", "b", "c")
	c.do("LPUSH", "l", "z")
	if res := c.do("LRANGE", "l", "0", "-1"); !slices.Equal(texts(res), []string{"z", "a", "b", "c"}) {
		t.Errorf("LRANGE returned %v", texts(res))
	}
	if res := c.do("LINSERT", "l", "BEFORE", "b", "x"); res.Integer != 5 {
		t.Errorf("LINSERT returned %d", res.Integer)
	}
	if res := c.do("LINDEX", "l", "-1"); string(res.String) != "c" {
		t.Errorf("LINDEX returned %q", res.String)
	}
	if res := c.do("LSET", "l", "99", "q"); res.Type != resp.TypeError {
		t.Errorf("LSET out of range should fail")
	}
	if res := c.do("RPOPLPUSH", "l", "l"); string(res.String) != "c" {
		t.Errorf("RPOPLPUSH returned %q", res.String)
	}
	if res := c.do("LPOP", "l"); string(res.String) != "c" {
		t.Errorf("LPOP returned %q", res.String)
	}
	if res := c.do("RPUSHX", "missing", "a"); res.Integer != 0 {
		t.Errorf("RPUSHX on a missing list returned %d", res.Integer)
	}
}

func TestSetAlgebra(t *testing.T) {
	c := newClient(setupEngine(t))

	c.do("SADD", "A", "b", "c", "d")
	c.do("SADD", "B", "c")
	c.do("SADD", "C", "a", "c", "e")

	if got := sorted(c.do("SDIFF", "A", "B", "C")); !slices.Equal(got, []string{"b", "d"}) {
		t.Errorf("SDIFF returned %v", got)
	}
	if got := sorted(c.do("SINTER", "A", "C")); !slices.Equal(got, []string{"c"}) {
		t.Errorf("SINTER returned %v", got)
	}
	if got := sorted(c.do("SUNION", "A", "B", "C")); !slices.Equal(got, []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("SUNION returned %v", got)
	}
	if res := c.do("SUNIONSTORE", "dst", "A", "B", "C"); res.Integer != 5 {
		t.Errorf("SUNIONSTORE returned %d", res.Integer)
	}
	if res := c.do("SINTERSTORE", "dst", "A", "missing"); res.Integer != 0 {
		t.Errorf("SINTERSTORE returned %d", res.Integer)
	}
	if res := c.do("EXISTS", "dst"); res.Integer != 0 {
		t.Errorf("empty store result should delete the destination")
	}
}

func TestSortedSetCommands(t *testing.T) {
	c := newClient(setupEngine(t))

	if res := c.do("ZADD", "z", "2", "b", "1", "a"); res.Integer != 2 {
		t.Errorf("ZADD returned %d", res.Integer)
	}
	if res := c.do("ZADD", "z", "nan", "a"); res.Type != resp.TypeError {
		t.Errorf("ZADD nan should fail")
	}
	if res := c.do("ZRANGE", "z", "0", "-1", "WITHSCORES"); !slices.Equal(texts(res), []string{"a", "1", "b", "2"}) {
		t.Errorf("ZRANGE returned %v", texts(res))
	}
	if res := c.do("ZINCRBY", "z", "5", "a"); string(res.String) != "6" {
		t.Errorf("ZINCRBY returned %q", res.String)
	}
	if res := c.do("ZRANK", "z", "a"); res.Integer != 1 {
		t.Errorf("ZRANK returned %d", res.Integer)
	}
	if res := c.do("ZSCORE", "z", "missing"); !res.IsNull {
		t.Errorf("ZSCORE of a missing member should be nil")
	}
}

func TestConnectionCommands(t *testing.T) {
	c := newClient(setupEngine(t))

	if res := c.do("HELLO", "3"); res.Type != resp.TypeError || string(res.String) != "NOPROTO unsupported protocol version" {
		t.Errorf("HELLO should be refused, got %q", res.String)
	}

	if res := c.do("CLIENT", "GETNAME"); !res.IsNull {
		t.Errorf("unnamed client should get nil")
	}
	c.do("CLIENT", "SETNAME", "worker")
	if res := c.do("CLIENT", "GETNAME"); string(res.String) != "worker" {
		t.Errorf("CLIENT GETNAME returned %q", res.String)
	}
	if res := c.do("CLIENT", "ID"); res.Integer != c.sess.num {
		t.Errorf("CLIENT ID returned %d", res.Integer)
	}

	if res := c.do("SAVE"); res.Type != resp.TypeError {
		t.Errorf("SAVE without RDB should fail")
	}
	if res := c.do("LASTSAVE"); res.Integer != 0 {
		t.Errorf("LASTSAVE without RDB returned %d", res.Integer)
	}
}

// countingDatabase records the commands that reach the wrapped database
type countingDatabase struct {
	Database
	calls []string
}

func (d *countingDatabase) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	d.calls = append(d.calls, "GET")
	return d.Database.Get(ctx, key)
}

func (d *countingDatabase) DBSize(ctx context.Context) (int64, error) {
	d.calls = append(d.calls, "DBSIZE")
	return d.Database.DBSize(ctx)
}

func TestEngineDispatchesToDatabase(t *testing.T) {
	e := setupEngine(t)
	db := &countingDatabase{Database: e.execs[0]}
	e.execs[0] = db

	c := newClient(e)
	c.do("SET", "k", "v")
	if res := c.do("GET", "k"); string(res.String) != "v" {
		t.Errorf("GET returned %q", res.String)
	}
	if res := c.do("DBSIZE"); res.Integer != 1 {
		t.Errorf("DBSIZE returned %d", res.Integer)
	}

	c.do("SELECT", "1")
	c.do("GET", "k")

	if !slices.Equal(db.calls, []string{"GET", "DBSIZE"}) {
		t.Errorf("database saw %v", db.calls)
	}
}

func TestErrorReplyPrefixes(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("ERR syntax error"), "ERR syntax error"},
		{errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"), "WRONGTYPE Operation against a key holding the wrong kind of value"},
		{errNoProto, "NOPROTO unsupported protocol version"},
		{errors.New("value is not valid"), "ERR value is not valid"},
		{errors.New("NOPROTOCOL"), "ERR NOPROTOCOL"},
	}

	for _, tt := range tests {
		if got := string(errorReply(tt.err).String); got != tt.want {
			t.Errorf("errorReply(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCommandRegistryIsComplete(t *testing.T) {
	e := setupEngine(t)

	for name := range e.commands {
		if _, ok := commandRegistry[name]; !ok {
			t.Errorf("%s has no metadata", name)
		}
		if _, ok := commandDocsRegistry[name]; !ok {
			t.Errorf("%s has no docs", name)
		}
	}
	if len(e.commands) != len(commandRegistry) {
		t.Errorf("%d commands registered, %d described", len(e.commands), len(commandRegistry))
	}

	c := newClient(e)
	if res := c.do("COMMAND", "COUNT"); res.Integer != int64(len(commandRegistry)) {
		t.Errorf("COMMAND COUNT returned %d", res.Integer)
	}

	res := c.do("COMMAND", "INFO", "get", "nope")
	if len(res.Array) != 2 || !res.Array[1].IsNull {
		t.Fatalf("COMMAND INFO returned %+v", res)
	}
	info := res.Array[0].Array
	if string(info[0].String) != "get" || info[1].Integer != 2 {
		t.Errorf("COMMAND INFO get returned %+v", info)
	}

	res = c.do("COMMAND", "DOCS", "set")
	if len(res.Array) != 2 || string(res.Array[0].String) != "set" {
		t.Errorf("COMMAND DOCS returned %+v", res)
	}
}
