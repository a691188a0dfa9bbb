package memexec

import (
	"context"
	"time"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/storage"
)

// Append implements executor.StringCommands
func (e *Executor) Append(ctx context.Context, key, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.Append(string(key), value)
}

// BitCount implements executor.StringCommands
func (e *Executor) BitCount(ctx context.Context, key []byte, pos ...int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.BitCount(string(key), pos...)
}

// BitPos implements executor.StringCommands
func (e *Executor) BitPos(ctx context.Context, key []byte, bit bool, pos ...int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.BitPos(string(key), bit, pos...)
}

// Decr implements executor.StringCommands
func (e *Executor) Decr(ctx context.Context, key []byte) (int64, error) {
	return e.IncrBy(ctx, key, -1)
}

// DecrBy implements executor.StringCommands
func (e *Executor) DecrBy(ctx context.Context, key []byte, decrement int64) (int64, error) {
	if decrement == -decrement && decrement != 0 {
		// math.MinInt64 cannot be negated
		return 0, executor.ErrOverflow
	}
	return e.IncrBy(ctx, key, -decrement)
}

// Get implements executor.StringCommands
func (e *Executor) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok, err := e.db.Get(string(key))
	return clone(v), ok, err
}

// GetBit implements executor.StringCommands
func (e *Executor) GetBit(ctx context.Context, key []byte, offset int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.GetBit(string(key), offset)
}

// GetRange implements executor.StringCommands
func (e *Executor) GetRange(ctx context.Context, key []byte, start, end int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.db.GetRange(string(key), start, end)
}

// GetSet implements executor.StringCommands
func (e *Executor) GetSet(ctx context.Context, key, value []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	old, ok, err := e.db.GetSet(string(key), clone(value))
	return clone(old), ok, err
}

// Incr implements executor.StringCommands
func (e *Executor) Incr(ctx context.Context, key []byte) (int64, error) {
	return e.IncrBy(ctx, key, 1)
}

// IncrBy implements executor.StringCommands
func (e *Executor) IncrBy(ctx context.Context, key []byte, increment int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.IncrBy(string(key), increment)
}

// IncrByFloat implements executor.StringCommands
func (e *Executor) IncrByFloat(ctx context.Context, key []byte, increment float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.IncrByFloat(string(key), increment)
}

// PSetEX implements executor.StringCommands
func (e *Executor) PSetEX(ctx context.Context, key, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return executor.ErrSyntax
	}
	_, err := e.Set(ctx, key, value, executor.SetArgs{TTL: roundTTL(ttl, time.Millisecond)})
	return err
}

// Set implements executor.StringCommands
func (e *Executor) Set(ctx context.Context, key, value []byte, args executor.SetArgs) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if args.TTL < 0 || (args.KeepTTL && args.TTL != 0) {
		return false, executor.ErrSyntax
	}

	options := storage.SetOptions{
		TTL:     args.TTL,
		KeepTTL: args.KeepTTL,
		NX:      args.Condition == executor.IfAbsent,
		XX:      args.Condition == executor.IfPresent,
	}
	return e.db.Set(string(key), clone(value), options), nil
}

// SetBit implements executor.StringCommands
func (e *Executor) SetBit(ctx context.Context, key []byte, offset int64, bit bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.db.SetBit(string(key), offset, bit)
}

// SetEX implements executor.StringCommands
func (e *Executor) SetEX(ctx context.Context, key, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return executor.ErrSyntax
	}
	_, err := e.Set(ctx, key, value, executor.SetArgs{TTL: roundTTL(ttl, time.Second)})
	return err
}

// SetNX implements executor.StringCommands
func (e *Executor) SetNX(ctx context.Context, key, value []byte) (bool, error) {
	return e.Set(ctx, key, value, executor.SetArgs{Condition: executor.IfAbsent})
}

// SetRange implements executor.StringCommands
func (e *Executor) SetRange(ctx context.Context, key []byte, offset int64, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.SetRange(string(key), offset, value)
}

// StrLen implements executor.StringCommands
func (e *Executor) StrLen(ctx context.Context, key []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.db.StrLen(string(key))
}
