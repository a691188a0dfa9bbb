package redisexec

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/eternalApril/keyspace/internal/executor"
)

// HDel implements executor.HashCommands
func (e *Executor) HDel(ctx context.Context, key []byte, fields ...string) (int64, error) {
	n, err := e.client.HDel(ctx, str(key), fields...).Result()
	return n, translate(err)
}

// HExists implements executor.HashCommands
func (e *Executor) HExists(ctx context.Context, key []byte, field string) (bool, error) {
	ok, err := e.client.HExists(ctx, str(key), field).Result()
	return ok, translate(err)
}

// HGet implements executor.HashCommands
func (e *Executor) HGet(ctx context.Context, key []byte, field string) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.HGet(ctx, str(key), field))
}

// HGetAll implements executor.HashCommands
func (e *Executor) HGetAll(ctx context.Context, key []byte) (map[string][]byte, error) {
	all, err := e.client.HGetAll(ctx, str(key)).Result()
	if err != nil {
		return nil, translate(err)
	}

	out := make(map[string][]byte, len(all))
	for f, v := range all {
		out[f] = []byte(v)
	}
	return out, nil
}

// HIncrBy implements executor.HashCommands
func (e *Executor) HIncrBy(ctx context.Context, key []byte, field string, increment int64) (int64, error) {
	n, err := e.client.HIncrBy(ctx, str(key), field, increment).Result()
	return n, translate(err)
}

// HIncrByFloat implements executor.HashCommands
func (e *Executor) HIncrByFloat(ctx context.Context, key []byte, field string, increment float64) (float64, error) {
	f, err := e.client.HIncrByFloat(ctx, str(key), field, increment).Result()
	return f, translate(err)
}

// HKeys implements executor.HashCommands
func (e *Executor) HKeys(ctx context.Context, key []byte) ([]string, error) {
	fields, err := e.client.HKeys(ctx, str(key)).Result()
	return fields, translate(err)
}

// HLen implements executor.HashCommands
func (e *Executor) HLen(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.HLen(ctx, str(key)).Result()
	return n, translate(err)
}

// HMGet implements executor.HashCommands
func (e *Executor) HMGet(ctx context.Context, key []byte, fields ...string) ([][]byte, error) {
	vals, err := e.client.HMGet(ctx, str(key), fields...).Result()
	if err != nil {
		return nil, translate(err)
	}

	out := make([][]byte, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = []byte(s)
		}
	}
	return out, nil
}

// HMSet implements executor.HashCommands
func (e *Executor) HMSet(ctx context.Context, key []byte, values ...executor.FieldValue) error {
	if len(values) == 0 {
		return executor.ErrSyntax
	}

	pairs := make([]any, 0, 2*len(values))
	for _, fv := range values {
		pairs = append(pairs, fv.Field, fv.Value)
	}
	return translate(e.client.HMSet(ctx, str(key), pairs...).Err())
}

// HScan implements executor.HashCommands
func (e *Executor) HScan(ctx context.Context, key []byte, cursor uint64, a executor.ScanArgs) (uint64, []executor.FieldValue, error) {
	flat, next, err := e.client.HScan(ctx, str(key), cursor, a.Match, a.Count).Result()
	if err != nil {
		return 0, nil, translate(err)
	}

	out := make([]executor.FieldValue, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out = append(out, executor.FieldValue{Field: flat[i], Value: []byte(flat[i+1])})
	}
	return next, out, nil
}

// HSet implements executor.HashCommands
func (e *Executor) HSet(ctx context.Context, key []byte, field string, value []byte) (bool, error) {
	n, err := e.client.HSet(ctx, str(key), field, value).Result()
	return n == 1, translate(err)
}

// HSetNX implements executor.HashCommands
func (e *Executor) HSetNX(ctx context.Context, key []byte, field string, value []byte) (bool, error) {
	ok, err := e.client.HSetNX(ctx, str(key), field, value).Result()
	return ok, translate(err)
}

// HVals implements executor.HashCommands
func (e *Executor) HVals(ctx context.Context, key []byte) ([][]byte, error) {
	vals, err := e.client.HVals(ctx, str(key)).Result()
	return raws(vals), translate(err)
}

// LIndex implements executor.ListCommands
func (e *Executor) LIndex(ctx context.Context, key []byte, index int64) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.LIndex(ctx, str(key), index))
}

// LInsert implements executor.ListCommands
func (e *Executor) LInsert(ctx context.Context, key []byte, before bool, pivot, value []byte) (int64, error) {
	op := "AFTER"
	if before {
		op = "BEFORE"
	}
	n, err := e.client.LInsert(ctx, str(key), op, pivot, value).Result()
	return n, translate(err)
}

// LLen implements executor.ListCommands
func (e *Executor) LLen(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.LLen(ctx, str(key)).Result()
	return n, translate(err)
}

// LPop implements executor.ListCommands
func (e *Executor) LPop(ctx context.Context, key []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.LPop(ctx, str(key)))
}

// LPush implements executor.ListCommands
func (e *Executor) LPush(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	n, err := e.client.LPush(ctx, str(key), args(values)...).Result()
	return n, translate(err)
}

// LPushX implements executor.ListCommands
func (e *Executor) LPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	n, err := e.client.LPushX(ctx, str(key), args(values)...).Result()
	return n, translate(err)
}

// LRange implements executor.ListCommands
func (e *Executor) LRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	vals, err := e.client.LRange(ctx, str(key), start, stop).Result()
	return raws(vals), translate(err)
}

// LRem implements executor.ListCommands
func (e *Executor) LRem(ctx context.Context, key []byte, count int64, value []byte) (int64, error) {
	n, err := e.client.LRem(ctx, str(key), count, value).Result()
	return n, translate(err)
}

// LSet implements executor.ListCommands
func (e *Executor) LSet(ctx context.Context, key []byte, index int64, value []byte) error {
	return translate(e.client.LSet(ctx, str(key), index, value).Err())
}

// LTrim implements executor.ListCommands
func (e *Executor) LTrim(ctx context.Context, key []byte, start, stop int64) error {
	return translate(e.client.LTrim(ctx, str(key), start, stop).Err())
}

// RPop implements executor.ListCommands
func (e *Executor) RPop(ctx context.Context, key []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.RPop(ctx, str(key)))
}

// RPopLPush implements executor.ListCommands
func (e *Executor) RPopLPush(ctx context.Context, source, destination []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.RPopLPush(ctx, str(source), str(destination)))
}

// RPush implements executor.ListCommands
func (e *Executor) RPush(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	n, err := e.client.RPush(ctx, str(key), args(values)...).Result()
	return n, translate(err)
}

// RPushX implements executor.ListCommands
func (e *Executor) RPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	n, err := e.client.RPushX(ctx, str(key), args(values)...).Result()
	return n, translate(err)
}

// SAdd implements executor.SetCommands
func (e *Executor) SAdd(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	n, err := e.client.SAdd(ctx, str(key), args(members)...).Result()
	return n, translate(err)
}

// SCard implements executor.SetCommands
func (e *Executor) SCard(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.SCard(ctx, str(key)).Result()
	return n, translate(err)
}

func members(cmd *redis.StringSliceCmd) ([][]byte, error) {
	vals, err := cmd.Result()
	if err != nil {
		return nil, translate(err)
	}
	return raws(vals), nil
}

// SDiff implements executor.SetCommands
func (e *Executor) SDiff(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return members(e.client.SDiff(ctx, strs(keys)...))
}

// SDiffStore implements executor.SetCommands
func (e *Executor) SDiffStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error) {
	n, err := e.client.SDiffStore(ctx, str(destination), strs(keys)...).Result()
	return n, translate(err)
}

// SInter implements executor.SetCommands
func (e *Executor) SInter(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return members(e.client.SInter(ctx, strs(keys)...))
}

// SInterStore implements executor.SetCommands
func (e *Executor) SInterStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error) {
	n, err := e.client.SInterStore(ctx, str(destination), strs(keys)...).Result()
	return n, translate(err)
}

// SIsMember implements executor.SetCommands
func (e *Executor) SIsMember(ctx context.Context, key, member []byte) (bool, error) {
	ok, err := e.client.SIsMember(ctx, str(key), member).Result()
	return ok, translate(err)
}

// SMembers implements executor.SetCommands
func (e *Executor) SMembers(ctx context.Context, key []byte) ([][]byte, error) {
	return members(e.client.SMembers(ctx, str(key)))
}

// SMove implements executor.SetCommands
func (e *Executor) SMove(ctx context.Context, source, destination, member []byte) (bool, error) {
	ok, err := e.client.SMove(ctx, str(source), str(destination), member).Result()
	return ok, translate(err)
}

// SPop implements executor.SetCommands
func (e *Executor) SPop(ctx context.Context, key []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.SPop(ctx, str(key)))
}

// SRandMember implements executor.SetCommands
func (e *Executor) SRandMember(ctx context.Context, key []byte) ([]byte, bool, error) {
	return bytesOrAbsent(e.client.SRandMember(ctx, str(key)))
}

// SRandMembers implements executor.SetCommands
func (e *Executor) SRandMembers(ctx context.Context, key []byte, count int64) ([][]byte, error) {
	return members(e.client.SRandMemberN(ctx, str(key), count))
}

// SRem implements executor.SetCommands
func (e *Executor) SRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	n, err := e.client.SRem(ctx, str(key), args(members)...).Result()
	return n, translate(err)
}

// SScan implements executor.SetCommands
func (e *Executor) SScan(ctx context.Context, key []byte, cursor uint64, a executor.ScanArgs) (uint64, [][]byte, error) {
	vals, next, err := e.client.SScan(ctx, str(key), cursor, a.Match, a.Count).Result()
	if err != nil {
		return 0, nil, translate(err)
	}
	return next, raws(vals), nil
}

// SUnion implements executor.SetCommands
func (e *Executor) SUnion(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return members(e.client.SUnion(ctx, strs(keys)...))
}

// SUnionStore implements executor.SetCommands
func (e *Executor) SUnionStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error) {
	n, err := e.client.SUnionStore(ctx, str(destination), strs(keys)...).Result()
	return n, translate(err)
}

// ZAdd implements executor.SortedSetCommands
func (e *Executor) ZAdd(ctx context.Context, key []byte, members ...executor.ScoredMember) (int64, error) {
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Score: m.Score, Member: m.Member}
	}
	n, err := e.client.ZAdd(ctx, str(key), zs...).Result()
	return n, translate(err)
}

// ZCard implements executor.SortedSetCommands
func (e *Executor) ZCard(ctx context.Context, key []byte) (int64, error) {
	n, err := e.client.ZCard(ctx, str(key)).Result()
	return n, translate(err)
}

// ZIncrBy implements executor.SortedSetCommands
func (e *Executor) ZIncrBy(ctx context.Context, key []byte, increment float64, member []byte) (float64, error) {
	f, err := e.client.ZIncrBy(ctx, str(key), increment, string(member)).Result()
	return f, translate(err)
}

// ZRange implements executor.SortedSetCommands
func (e *Executor) ZRange(ctx context.Context, key []byte, start, stop int64) ([]executor.ScoredMember, error) {
	zs, err := e.client.ZRangeWithScores(ctx, str(key), start, stop).Result()
	if err != nil {
		return nil, translate(err)
	}

	out := make([]executor.ScoredMember, len(zs))
	for i, z := range zs {
		m, _ := z.Member.(string)
		out[i] = executor.ScoredMember{Member: []byte(m), Score: z.Score}
	}
	return out, nil
}

// ZRank implements executor.SortedSetCommands
func (e *Executor) ZRank(ctx context.Context, key []byte, member []byte) (int64, bool, error) {
	n, err := e.client.ZRank(ctx, str(key), string(member)).Result()
	found, err := optional(err)
	return n, found, err
}

// ZRem implements executor.SortedSetCommands
func (e *Executor) ZRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	n, err := e.client.ZRem(ctx, str(key), args(members)...).Result()
	return n, translate(err)
}

// ZScore implements executor.SortedSetCommands
func (e *Executor) ZScore(ctx context.Context, key []byte, member []byte) (float64, bool, error) {
	f, err := e.client.ZScore(ctx, str(key), string(member)).Result()
	found, err := optional(err)
	return f, found, err
}
