// Package redisexec runs the executor command surface against a Redis server through go-redis.
package redisexec

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eternalApril/keyspace/internal/config"
	"github.com/eternalApril/keyspace/internal/executor"
)

// Executor issues every command through a go-redis client.
// Pooling, retries and cluster routing are left to the client
type Executor struct {
	client redis.UniversalClient
}

var _ executor.Executor = (*Executor)(nil)

// New wraps client. The client is not closed by the executor
func New(client redis.UniversalClient) *Executor {
	return &Executor{client: client}
}

// NewClient builds a go-redis client from the redis section of the configuration
func NewClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:           []string{cfg.Addr},
		DB:              cfg.DB,
		Username:        cfg.Username,
		Password:        cfg.Password,
		Protocol:        cfg.Protocol,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		DisableIdentity: true,
	})
}

// Client returns the wrapped client
func (e *Executor) Client() redis.UniversalClient {
	return e.client
}

// translate maps server errors back to the executor sentinels.
// redis.Nil is not an error at this level and must be handled by the caller
func translate(err error) error {
	if err == nil {
		return nil
	}

	var rerr redis.Error
	if errors.As(err, &rerr) {
		if known := executor.FromMessage(rerr.Error()); known != nil {
			return known
		}
	}
	return err
}

// optional folds redis.Nil into found=false
func optional(err error) (found bool, _ error) {
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, translate(err)
	}
	return true, nil
}

func str(key []byte) string {
	return string(key)
}

func strs(keys [][]byte) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func args(values [][]byte) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func raws(values []string) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out
}

func bytesOrAbsent(cmd *redis.StringCmd) ([]byte, bool, error) {
	b, err := cmd.Bytes()
	found, err := optional(err)
	if !found {
		return nil, false, err
	}
	return b, true, nil
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Del implements executor.KeyCommands
func (e *Executor) Del(ctx context.Context, keys ...[]byte) (int64, error) {
	n, err := e.client.Del(ctx, strs(keys)...).Result()
	return n, translate(err)
}

// Dump implements executor.KeyCommands
func (e *Executor) Dump(ctx context.Context, key []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.Dump(ctx, str(key)))
}

// Exists implements executor.KeyCommands
func (e *Executor) Exists(ctx context.Context, keys ...[]byte) (int64, error) {
	n, err := e.client.Exists(ctx, strs(keys)...).Result()
	return n, translate(err)
}

// Expire implements executor.KeyCommands. The server works in whole seconds
func (e *Executor) Expire(ctx context.Context, key []byte, ttl time.Duration) (bool, error) {
	ok, err := e.client.Expire(ctx, str(key), ttl).Result()
	return ok, translate(err)
}

// ExpireAt implements executor.KeyCommands
func (e *Executor) ExpireAt(ctx context.Context, key []byte, at time.Time) (bool, error) {
	ok, err := e.client.ExpireAt(ctx, str(key), at).Result()
	return ok, translate(err)
}

// PExpire implements executor.KeyCommands
func (e *Executor) PExpire(ctx context.Context, key []byte, ttl time.Duration) (bool, error) {
	ok, err := e.client.PExpire(ctx, str(key), ttl).Result()
	return ok, translate(err)
}

// PExpireAt implements executor.KeyCommands
func (e *Executor) PExpireAt(ctx context.Context, key []byte, at time.Time) (bool, error) {
	ok, err := e.client.PExpireAt(ctx, str(key), at).Result()
	return ok, translate(err)
}

// Move implements executor.KeyCommands
func (e *Executor) Move(ctx context.Context, key []byte, db int) (bool, error) {
	ok, err := e.client.Move(ctx, str(key), db).Result()
	return ok, translate(err)
}

// ObjectRefCount implements executor.KeyCommands
func (e *Executor) ObjectRefCount(ctx context.Context, key []byte) (int64, bool, error) {
	n, err := e.client.ObjectRefCount(ctx, str(key)).Result()
	found, err := optional(err)
	return n, found, err
}

// ObjectEncoding implements executor.KeyCommands
func (e *Executor) ObjectEncoding(ctx context.Context, key []byte) (string, bool, error) {
	enc, err := e.client.ObjectEncoding(ctx, str(key)).Result()
	found, err := optional(err)
	return enc, found, err
}

// ObjectIdleTime implements executor.KeyCommands
func (e *Executor) ObjectIdleTime(ctx context.Context, key []byte) (time.Duration, bool, error) {
	d, err := e.client.ObjectIdleTime(ctx, str(key)).Result()
	found, err := optional(err)
	return d, found, err
}

// Persist implements executor.KeyCommands
func (e *Executor) Persist(ctx context.Context, key []byte) (bool, error) {
	ok, err := e.client.Persist(ctx, str(key)).Result()
	return ok, translate(err)
}

// PTTL implements executor.KeyCommands. The raw integer reply is kept,
// go-redis would turn the negative codes into durations
func (e *Executor) PTTL(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.Do(ctx, "pttl", str(key)).Int64()
	return n, translate(err)
}

// TTL implements executor.KeyCommands
func (e *Executor) TTL(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.Do(ctx, "ttl", str(key)).Int64()
	return n, translate(err)
}

// Rename implements executor.KeyCommands
func (e *Executor) Rename(ctx context.Context, key, newKey []byte) error {
	return translate(e.client.Rename(ctx, str(key), str(newKey)).Err())
}

// RenameNX implements executor.KeyCommands
func (e *Executor) RenameNX(ctx context.Context, key, newKey []byte) (bool, error) {
	ok, err := e.client.RenameNX(ctx, str(key), str(newKey)).Result()
	return ok, translate(err)
}

// Type implements executor.KeyCommands
func (e *Executor) Type(ctx context.Context, key []byte) (string, error) {
	t, err := e.client.Type(ctx, str(key)).Result()
	return t, translate(err)
}

// Scan implements executor.KeyCommands
func (e *Executor) Scan(ctx context.Context, cursor uint64, a executor.ScanArgs) (uint64, [][]byte, error) {
	keys, next, err := e.client.Scan(ctx, cursor, a.Match, a.Count).Result()
	if err != nil {
		return 0, nil, translate(err)
	}
	return next, raws(keys), nil
}

// Append implements executor.StringCommands
func (e *Executor) Append(ctx context.Context, key, value []byte) (int64, error) {
	n, err := e.client.Append(ctx, str(key), string(value)).Result()
	return n, translate(err)
}

// BitCount implements executor.StringCommands
func (e *Executor) BitCount(ctx context.Context, key []byte, pos ...int64) (int64, error) {
	var bc *redis.BitCount
	switch len(pos) {
	case 0:
	case 2:
		bc = &redis.BitCount{Start: pos[0], End: pos[1]}
	default:
		return 0, executor.ErrSyntax
	}

	n, err := e.client.BitCount(ctx, str(key), bc).Result()
	return n, translate(err)
}

// BitPos implements executor.StringCommands
func (e *Executor) BitPos(ctx context.Context, key []byte, b bool, pos ...int64) (int64, error) {
	if len(pos) > 2 {
		return 0, executor.ErrSyntax
	}
	n, err := e.client.BitPos(ctx, str(key), int64(bit(b)), pos...).Result()
	return n, translate(err)
}

// Decr implements executor.StringCommands
func (e *Executor) Decr(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.Decr(ctx, str(key)).Result()
	return n, translate(err)
}

// DecrBy implements executor.StringCommands
func (e *Executor) DecrBy(ctx context.Context, key []byte, decrement int64) (int64, error) {
	n, err := e.client.DecrBy(ctx, str(key), decrement).Result()
	return n, translate(err)
}

// Get implements executor.StringCommands
func (e *Executor) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.Get(ctx, str(key)))
}

// GetBit implements executor.StringCommands
func (e *Executor) GetBit(ctx context.Context, key []byte, offset int64) (bool, error) {
	n, err := e.client.GetBit(ctx, str(key), offset).Result()
	return n == 1, translate(err)
}

// GetRange implements executor.StringCommands
func (e *Executor) GetRange(ctx context.Context, key []byte, start, end int64) ([]byte, error) {
	b, err := e.client.GetRange(ctx, str(key), start, end).Bytes()
	return b, translate(err)
}

// GetSet implements executor.StringCommands
func (e *Executor) GetSet(ctx context.Context, key, value []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.GetSet(ctx, str(key), value))
}

// Incr implements executor.StringCommands
func (e *Executor) Incr(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.Incr(ctx, str(key)).Result()
	return n, translate(err)
}

// IncrBy implements executor.StringCommands
func (e *Executor) IncrBy(ctx context.Context, key []byte, increment int64) (int64, error) {
	n, err := e.client.IncrBy(ctx, str(key), increment).Result()
	return n, translate(err)
}

// IncrByFloat implements executor.StringCommands
func (e *Executor) IncrByFloat(ctx context.Context, key []byte, increment float64) (float64, error) {
	f, err := e.client.IncrByFloat(ctx, str(key), increment).Result()
	return f, translate(err)
}

// PSetEX implements executor.StringCommands
func (e *Executor) PSetEX(ctx context.Context, key, value []byte, ttl time.Duration) error {
	ms := strconv.FormatInt(ttl.Milliseconds(), 10)
	return translate(e.client.Do(ctx, "psetex", str(key), ms, value).Err())
}

// Set implements executor.StringCommands
func (e *Executor) Set(ctx context.Context, key, value []byte, a executor.SetArgs) (bool, error) {
	if a.TTL < 0 || (a.KeepTTL && a.TTL > 0) {
		return false, executor.ErrSyntax
	}

	sa := redis.SetArgs{TTL: a.TTL, KeepTTL: a.KeepTTL}
	switch a.Condition {
	case executor.IfAbsent:
		sa.Mode = "NX"
	case executor.IfPresent:
		sa.Mode = "XX"
	}

	// a condition that is not met comes back as a nil reply
	return optional(e.client.SetArgs(ctx, str(key), value, sa).Err())
}

// SetBit implements executor.StringCommands
func (e *Executor) SetBit(ctx context.Context, key []byte, offset int64, b bool) (bool, error) {
	prev, err := e.client.SetBit(ctx, str(key), offset, bit(b)).Result()
	return prev == 1, translate(err)
}

// SetEX implements executor.StringCommands
func (e *Executor) SetEX(ctx context.Context, key, value []byte, ttl time.Duration) error {
	return translate(e.client.SetEx(ctx, str(key), value, ttl).Err())
}

// SetNX implements executor.StringCommands
func (e *Executor) SetNX(ctx context.Context, key, value []byte) (bool, error) {
	ok, err := e.client.SetNX(ctx, str(key), value, 0).Result()
	return ok, translate(err)
}

// SetRange implements executor.StringCommands
func (e *Executor) SetRange(ctx context.Context, key []byte, offset int64, value []byte) (int64, error) {
	n, err := e.client.SetRange(ctx, str(key), offset, string(value)).Result()
	return n, translate(err)
}

// StrLen implements executor.StringCommands
func (e *Executor) StrLen(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.StrLen(ctx, str(key)).Result()
	return n, translate(err)
}
