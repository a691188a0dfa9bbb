package memexec

import (
	"context"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/storage"
)

// HDel implements executor.HashCommands
func (e *Executor) HDel(ctx context.Context, key []byte, fields ...string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.HDel(string(key), fields)
}

// HExists implements executor.HashCommands
func (e *Executor) HExists(ctx context.Context, key []byte, field string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.HExists(string(key), field)
}

// HGet implements executor.HashCommands
func (e *Executor) HGet(ctx context.Context, key []byte, field string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok, err := e.db.HGet(string(key), field)
	return clone(v), ok, err
}

// HGetAll implements executor.HashCommands
func (e *Executor) HGetAll(ctx context.Context, key []byte) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields, err := e.db.HGetAll(string(key))
	if err != nil {
		return nil, err
	}
	for f, v := range fields {
		fields[f] = clone(v)
	}
	return fields, nil
}

// HIncrBy implements executor.HashCommands
func (e *Executor) HIncrBy(ctx context.Context, key []byte, field string, increment int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.HIncrBy(string(key), field, increment)
}

// HIncrByFloat implements executor.HashCommands
func (e *Executor) HIncrByFloat(ctx context.Context, key []byte, field string, increment float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.HIncrByFloat(string(key), field, increment)
}

// HKeys implements executor.HashCommands
func (e *Executor) HKeys(ctx context.Context, key []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.db.HKeys(string(key))
}

// HLen implements executor.HashCommands
func (e *Executor) HLen(ctx context.Context, key []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.HLen(string(key))
}

// HMGet implements executor.HashCommands
func (e *Executor) HMGet(ctx context.Context, key []byte, fields ...string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values, err := e.db.HMGet(string(key), fields)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = clone(v)
	}
	return values, nil
}

// HMSet implements executor.HashCommands
func (e *Executor) HMSet(ctx context.Context, key []byte, values ...executor.FieldValue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	owned := make([]executor.FieldValue, len(values))
	for i, fv := range values {
		owned[i] = executor.FieldValue{Field: fv.Field, Value: clone(fv.Value)}
	}
	return e.db.HMSet(string(key), owned)
}

// HScan implements executor.HashCommands
func (e *Executor) HScan(ctx context.Context, key []byte, cursor uint64, args executor.ScanArgs) (uint64, []executor.FieldValue, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	next, pairs, err := e.db.HScan(string(key), cursor, args.Match, args.Count)
	for i := range pairs {
		pairs[i].Value = clone(pairs[i].Value)
	}
	return next, pairs, err
}

// HSet implements executor.HashCommands
func (e *Executor) HSet(ctx context.Context, key []byte, field string, value []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.HSet(string(key), field, clone(value))
}

// HSetNX implements executor.HashCommands
func (e *Executor) HSetNX(ctx context.Context, key []byte, field string, value []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.HSetNX(string(key), field, clone(value))
}

// HVals implements executor.HashCommands
func (e *Executor) HVals(ctx context.Context, key []byte) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values, err := e.db.HVals(string(key))
	if err != nil {
		return nil, err
	}
	return cloneAll(values), nil
}

// LIndex implements executor.ListCommands
func (e *Executor) LIndex(ctx context.Context, key []byte, index int64) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok, err := e.db.LIndex(string(key), index)
	return clone(v), ok, err
}

// LInsert implements executor.ListCommands
func (e *Executor) LInsert(ctx context.Context, key []byte, before bool, pivot, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.LInsert(string(key), before, pivot, clone(value))
}

// LLen implements executor.ListCommands
func (e *Executor) LLen(ctx context.Context, key []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.LLen(string(key))
}

// LPop implements executor.ListCommands
func (e *Executor) LPop(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return e.db.LPop(string(key))
}

// LPush implements executor.ListCommands
func (e *Executor) LPush(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.LPush(string(key), cloneAll(values), false)
}

// LPushX implements executor.ListCommands
func (e *Executor) LPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.LPush(string(key), cloneAll(values), true)
}

// LRange implements executor.ListCommands
func (e *Executor) LRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := e.db.LRange(string(key), start, stop)
	if err != nil {
		return nil, err
	}
	return cloneAll(items), nil
}

// LRem implements executor.ListCommands
func (e *Executor) LRem(ctx context.Context, key []byte, count int64, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.LRem(string(key), count, value)
}

// LSet implements executor.ListCommands
func (e *Executor) LSet(ctx context.Context, key []byte, index int64, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.LSet(string(key), index, clone(value))
}

// LTrim implements executor.ListCommands
func (e *Executor) LTrim(ctx context.Context, key []byte, start, stop int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.LTrim(string(key), start, stop)
}

// RPop implements executor.ListCommands
func (e *Executor) RPop(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return e.db.RPop(string(key))
}

// RPopLPush implements executor.ListCommands
func (e *Executor) RPopLPush(ctx context.Context, source, destination []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok, err := e.db.RPopLPush(string(source), string(destination))
	return clone(v), ok, err
}

// RPush implements executor.ListCommands
func (e *Executor) RPush(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.RPush(string(key), cloneAll(values), false)
}

// RPushX implements executor.ListCommands
func (e *Executor) RPushX(ctx context.Context, key []byte, values ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.RPush(string(key), cloneAll(values), true)
}

// SAdd implements executor.SetCommands
func (e *Executor) SAdd(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.SAdd(string(key), strs(members))
}

// SCard implements executor.SetCommands
func (e *Executor) SCard(ctx context.Context, key []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.SCard(string(key))
}

func (e *Executor) members(ctx context.Context, op func(...string) ([]string, error), keys [][]byte) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	members, err := op(strs(keys)...)
	if err != nil {
		return nil, err
	}
	return raws(members), nil
}

func (e *Executor) store(ctx context.Context, op func(string, ...string) (int64, error), destination []byte, keys [][]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return op(string(destination), strs(keys)...)
}

// SDiff implements executor.SetCommands
func (e *Executor) SDiff(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return e.members(ctx, e.db.SDiff, keys)
}

// SDiffStore implements executor.SetCommands
func (e *Executor) SDiffStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error) {
	return e.store(ctx, e.db.SDiffStore, destination, keys)
}

// SInter implements executor.SetCommands
func (e *Executor) SInter(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return e.members(ctx, e.db.SInter, keys)
}

// SInterStore implements executor.SetCommands
func (e *Executor) SInterStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error) {
	return e.store(ctx, e.db.SInterStore, destination, keys)
}

// SIsMember implements executor.SetCommands
func (e *Executor) SIsMember(ctx context.Context, key, member []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.SIsMember(string(key), string(member))
}

// SMembers implements executor.SetCommands
func (e *Executor) SMembers(ctx context.Context, key []byte) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	members, err := e.db.SMembers(string(key))
	if err != nil {
		return nil, err
	}
	return raws(members), nil
}

// SMove implements executor.SetCommands
func (e *Executor) SMove(ctx context.Context, source, destination, member []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.SMove(string(source), string(destination), string(member))
}

// SPop implements executor.SetCommands
func (e *Executor) SPop(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m, ok, err := e.db.SPop(string(key))
	if !ok {
		return nil, false, err
	}
	return []byte(m), true, err
}

// SRandMember implements executor.SetCommands
func (e *Executor) SRandMember(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m, ok, err := e.db.SRandMember(string(key))
	if !ok {
		return nil, false, err
	}
	return []byte(m), true, err
}

// SRandMembers implements executor.SetCommands
func (e *Executor) SRandMembers(ctx context.Context, key []byte, count int64) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	members, err := e.db.SRandMembers(string(key), count)
	if err != nil {
		return nil, err
	}
	return raws(members), nil
}

// SRem implements executor.SetCommands
func (e *Executor) SRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.SRem(string(key), strs(members))
}

// SScan implements executor.SetCommands
func (e *Executor) SScan(ctx context.Context, key []byte, cursor uint64, args executor.ScanArgs) (uint64, [][]byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	next, members, err := e.db.SScan(string(key), cursor, args.Match, args.Count)
	if err != nil {
		return 0, nil, err
	}
	return next, raws(members), nil
}

// SUnion implements executor.SetCommands
func (e *Executor) SUnion(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	return e.members(ctx, e.db.SUnion, keys)
}

// SUnionStore implements executor.SetCommands
func (e *Executor) SUnionStore(ctx context.Context, destination []byte, keys ...[]byte) (int64, error) {
	return e.store(ctx, e.db.SUnionStore, destination, keys)
}

// ZAdd implements executor.SortedSetCommands
func (e *Executor) ZAdd(ctx context.Context, key []byte, members ...executor.ScoredMember) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	scored := make([]storage.ScoredMember, len(members))
	for i, sm := range members {
		scored[i] = storage.ScoredMember{Member: string(sm.Member), Score: sm.Score}
	}
	return e.db.ZAdd(string(key), scored)
}

// ZCard implements executor.SortedSetCommands
func (e *Executor) ZCard(ctx context.Context, key []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.ZCard(string(key))
}

// ZIncrBy implements executor.SortedSetCommands
func (e *Executor) ZIncrBy(ctx context.Context, key []byte, increment float64, member []byte) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.ZIncrBy(string(key), increment, string(member))
}

// ZRange implements executor.SortedSetCommands
func (e *Executor) ZRange(ctx context.Context, key []byte, start, stop int64) ([]executor.ScoredMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scored, err := e.db.ZRange(string(key), start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]executor.ScoredMember, len(scored))
	for i, sm := range scored {
		out[i] = executor.ScoredMember{Member: []byte(sm.Member), Score: sm.Score}
	}
	return out, nil
}

// ZRank implements executor.SortedSetCommands
func (e *Executor) ZRank(ctx context.Context, key []byte, member []byte) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	return e.db.ZRank(string(key), string(member))
}

// ZRem implements executor.SortedSetCommands
func (e *Executor) ZRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.ZRem(string(key), strs(members))
}

// ZScore implements executor.SortedSetCommands
func (e *Executor) ZScore(ctx context.Context, key []byte, member []byte) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	return e.db.ZScore(string(key), string(member))
}
