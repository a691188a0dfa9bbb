package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/config"
	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/executor/memexec"
	"github.com/eternalApril/keyspace/internal/persistence"
	"github.com/eternalApril/keyspace/internal/resp"
	"github.com/eternalApril/keyspace/internal/storage"
)

// maxGCRounds bounds how many sampling passes one GC tick may run back to back
const maxGCRounds = 16

// Database is the executor of one logical database. Besides the key commands
// the server needs DBSIZE and FLUSHDB
type Database interface {
	executor.Executor
	DBSize(ctx context.Context) (int64, error)
	FlushDB(ctx context.Context) error
}

var _ Database = (*memexec.Executor)(nil)

// Engine coordinates the execution of commands and manages the background tasks of the repository
type Engine struct {
	commands map[string]command // Registry of available commands (the key is the command name in uppercase)
	dbs      *storage.Databases // Logical databases selected by SELECT
	execs    []Database         // One executor per database, indexed like dbs
	cfg      *config.Config     // Configuration engine
	aof      *persistence.AOF   // AOF instance, nil when disabled
	rdb      *persistence.RDB   // RDB instance, nil when disabled
	cron     *cron.Cron         // Scheduled RDB saves
	stop     chan struct{}      // Closed to stop background tasks
	bg       sync.WaitGroup     // Background goroutines
	stopOnce sync.Once          // Ensures that the stop happens only once
	writeMu  sync.Mutex         // Keeps logged writes in the order they were applied
	logger   *zap.Logger
}

// NewEngine initializes the engine, registers the commands, restores the
// dataset from disk and starts the background tasks enabled in cfg
func NewEngine(dbs *storage.Databases, cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	e := &Engine{
		commands: make(map[string]command),
		dbs:      dbs,
		execs:    make([]Database, dbs.Len()),
		cfg:      cfg,
		stop:     make(chan struct{}),
		logger:   logger,
	}
	for i := range e.execs {
		exec, err := memexec.New(dbs, i)
		if err != nil {
			return nil, err
		}
		e.execs[i] = exec
	}
	e.registerCommands()

	if cfg.Persistence.RDB.Enabled {
		e.rdb = persistence.NewRDB(cfg.Persistence.RDB.Filename, logger)
	}

	if cfg.Persistence.AOF.Enabled {
		aof, err := persistence.OpenAOF(cfg.Persistence.AOF, logger)
		if err != nil {
			return nil, err
		}
		// the log is the more complete source when both are on
		if err := e.restoreAOF(aof); err != nil {
			aof.Close() //nolint:errcheck
			return nil, err
		}
		e.aof = aof
	} else if e.rdb != nil {
		if err := e.rdb.Load(dbs); err != nil {
			return nil, err
		}
	}

	if e.rdb != nil && cfg.Persistence.RDB.Schedule != "" {
		if err := e.startAutoSave(cfg.Persistence.RDB.Schedule); err != nil {
			e.closeAOF()
			return nil, err
		}
	}

	if cfg.GC.Enabled {
		e.bg.Add(1)
		go e.startGCLoop()
	}

	return e, nil
}

// cronLogger routes the scheduler's own logging to zap
type cronLogger struct {
	log *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

func (e *Engine) startAutoSave(schedule string) error {
	c := cron.New(cron.WithLogger(cronLogger{log: e.logger.Sugar()}))

	_, err := c.AddFunc(schedule, func() {
		err := e.rdb.Background(e.dbs, func(err error) {
			if err != nil {
				e.logger.Error("Auto-save RDB failed", zap.Error(err))
			}
		})
		if errors.Is(err, persistence.ErrSaveInProgress) {
			e.logger.Debug("Auto-save skipped, a save is running")
		}
	})
	if err != nil {
		return err
	}

	e.cron = c
	c.Start()
	return nil
}

func (e *Engine) restoreAOF(aof *persistence.AOF) error {
	e.logger.Info("Restoring AOF...")

	sess := NewSession()
	sess.replay = true

	n, err := aof.Load(func(cmd resp.Value) error {
		if cmd.Type != resp.TypeArray || len(cmd.Array) == 0 {
			return nil
		}

		name := string(cmd.Array[0].String)
		res := e.Execute(context.Background(), sess, name, cmd.Array[1:])
		if res.Type == resp.TypeError {
			e.logger.Warn("AOF command failed on replay",
				zap.String("cmd", name),
				zap.String("error", string(res.String)),
			)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("AOF restore finished", zap.Int("commands", n))
	return nil
}

// startGCLoop triggers the active expiration mechanism
func (e *Engine) startGCLoop() {
	defer e.bg.Done()

	ticker := time.NewTicker(e.cfg.GC.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.expireCycle()
		case <-e.stop:
			e.logger.Info("GC stopped")
			return
		}
	}
}

// expireCycle samples again right away while the expired share stays above the threshold
func (e *Engine) expireCycle() {
	for range maxGCRounds {
		ratio := e.dbs.DeleteExpired(e.cfg.GC.SamplesPerCheck)
		if ratio > 0 {
			e.logger.Debug("GC delete expired", zap.Float64("expired_ratio", ratio))
		}
		if ratio <= e.cfg.GC.MatchThreshold {
			return
		}
	}
}

// register adds a new command to the engine. The command name is uppercase
func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// registerCommands fills the registry
func (e *Engine) registerCommands() {
	// generic
	e.register("DEL", commandFunc(del))
	e.register("EXISTS", commandFunc(exists))
	e.register("EXPIRE", relativeExpire(time.Second))
	e.register("PEXPIRE", relativeExpire(time.Millisecond))
	e.register("EXPIREAT", commandFunc(expireAt))
	e.register("PEXPIREAT", commandFunc(pexpireAt))
	e.register("MOVE", commandFunc(move))
	e.register("DUMP", commandFunc(dump))
	e.register("OBJECT", commandFunc(object))
	e.register("PERSIST", commandFunc(persist))
	e.register("TTL", commandFunc(ttl))
	e.register("PTTL", commandFunc(pttl))
	e.register("RENAME", commandFunc(rename))
	e.register("RENAMENX", commandFunc(renameNX))
	e.register("TYPE", commandFunc(typeOf))
	e.register("SCAN", commandFunc(scan))

	// string
	e.register("APPEND", commandFunc(appendValue))
	e.register("BITCOUNT", commandFunc(bitCount))
	e.register("BITPOS", commandFunc(bitPos))
	e.register("DECR", commandFunc(decr))
	e.register("DECRBY", commandFunc(decrBy))
	e.register("GET", commandFunc(get))
	e.register("GETBIT", commandFunc(getBit))
	e.register("GETRANGE", commandFunc(getRange))
	e.register("GETSET", commandFunc(getSet))
	e.register("INCR", commandFunc(incr))
	e.register("INCRBY", commandFunc(incrBy))
	e.register("INCRBYFLOAT", commandFunc(incrByFloat))
	e.register("PSETEX", setEX(time.Millisecond, "psetex"))
	e.register("SET", commandFunc(set))
	e.register("SETBIT", commandFunc(setBit))
	e.register("SETEX", setEX(time.Second, "setex"))
	e.register("SETNX", commandFunc(setNX))
	e.register("SETRANGE", commandFunc(setRange))
	e.register("STRLEN", commandFunc(strLen))

	// hash
	e.register("HDEL", commandFunc(hdel))
	e.register("HEXISTS", commandFunc(hexists))
	e.register("HGET", commandFunc(hget))
	e.register("HGETALL", commandFunc(hgetAll))
	e.register("HINCRBY", commandFunc(hincrBy))
	e.register("HINCRBYFLOAT", commandFunc(hincrByFloat))
	e.register("HKEYS", commandFunc(hkeys))
	e.register("HLEN", commandFunc(hlen))
	e.register("HMGET", commandFunc(hmget))
	e.register("HMSET", commandFunc(hmset))
	e.register("HSCAN", commandFunc(hscan))
	e.register("HSET", commandFunc(hset))
	e.register("HSETNX", commandFunc(hsetNX))
	e.register("HVALS", commandFunc(hvals))

	// list
	e.register("LINDEX", commandFunc(lindex))
	e.register("LINSERT", commandFunc(linsert))
	e.register("LLEN", commandFunc(llen))
	e.register("LPOP", commandFunc(lpop))
	e.register("LPUSH", commandFunc(lpush))
	e.register("LPUSHX", commandFunc(lpushX))
	e.register("LRANGE", commandFunc(lrange))
	e.register("LREM", commandFunc(lrem))
	e.register("LSET", commandFunc(lset))
	e.register("LTRIM", commandFunc(ltrim))
	e.register("RPOP", commandFunc(rpop))
	e.register("RPOPLPUSH", commandFunc(rpopLPush))
	e.register("RPUSH", commandFunc(rpush))
	e.register("RPUSHX", commandFunc(rpushX))

	// set
	e.register("SADD", commandFunc(sadd))
	e.register("SCARD", commandFunc(scard))
	e.register("SDIFF", commandFunc(sdiff))
	e.register("SDIFFSTORE", commandFunc(sdiffStore))
	e.register("SINTER", commandFunc(sinter))
	e.register("SINTERSTORE", commandFunc(sinterStore))
	e.register("SISMEMBER", commandFunc(sisMember))
	e.register("SMEMBERS", commandFunc(smembers))
	e.register("SMOVE", commandFunc(smove))
	e.register("SPOP", commandFunc(spop))
	e.register("SRANDMEMBER", commandFunc(srandMember))
	e.register("SREM", commandFunc(srem))
	e.register("SSCAN", commandFunc(sscan))
	e.register("SUNION", commandFunc(sunion))
	e.register("SUNIONSTORE", commandFunc(sunionStore))

	// sorted set
	e.register("ZADD", commandFunc(zadd))
	e.register("ZCARD", commandFunc(zcard))
	e.register("ZINCRBY", commandFunc(zincrBy))
	e.register("ZRANGE", commandFunc(zrange))
	e.register("ZRANK", commandFunc(zrank))
	e.register("ZREM", commandFunc(zrem))
	e.register("ZSCORE", commandFunc(zscore))

	// connection and server
	e.register("PING", commandFunc(ping))
	e.register("ECHO", commandFunc(echo))
	e.register("SELECT", commandFunc(selectDB))
	e.register("HELLO", commandFunc(hello))
	e.register("CLIENT", commandFunc(client))
	e.register("DBSIZE", commandFunc(dbSize))
	e.register("FLUSHDB", commandFunc(flushDB))
	e.register("COMMAND", commandFunc(cmd))
	e.register("SAVE", commandFunc(save))
	e.register("BGSAVE", commandFunc(bgsave))
	e.register("LASTSAVE", commandFunc(lastSave))
}

// Execute finds the command by name and executes it with the passed arguments
// on the database selected by sess. Failures are returned as RESP errors
func (e *Engine) Execute(ctx context.Context, sess *Session, name string, args []resp.Value) resp.Value {
	name = strings.ToUpper(name)

	if e.logger.Core().Enabled(zap.DebugLevel) {
		// Log the command name and number of args
		e.logger.Debug("executing command",
			zap.String("cmd", name),
			zap.Int("args_count", len(args)),
			zap.Int("db", sess.db),
		)
	}

	cmd, ok := e.commands[name]
	if !ok {
		return resp.MakeError("ERR unknown command '" + strings.ToLower(name) + "'")
	}

	meta := commandRegistry[name]
	if !meta.arityOK(len(args)) {
		return resp.MakeErrorWrongNumberOfArguments(strings.ToLower(name))
	}

	db := sess.db
	r := &request{
		ctx:     ctx,
		args:    args,
		exec:    e.execs[db],
		session: sess,
		engine:  e,
	}

	if e.aof == nil || sess.replay || !meta.isWrite() {
		return cmd.execute(r)
	}

	// rewrites log absolute results, so records follow the order writes were applied
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	res := cmd.execute(r)
	if res.Type != resp.TypeError {
		e.appendAOF(db, name, args, r.rewrite)
	}
	return res
}

// appendAOF logs a successful write, or its rewrite when the handler set one
func (e *Engine) appendAOF(db int, name string, args, rewrite []resp.Value) {
	if rewrite != nil {
		name, args = string(rewrite[0].String), rewrite[1:]
	}
	if err := e.aof.Append(db, name, args); err != nil {
		e.logger.Error("Failed to append command to AOF", zap.String("cmd", name), zap.Error(err))
	}
}

// Databases returns the number of logical databases
func (e *Engine) Databases() int {
	return len(e.execs)
}

func (e *Engine) closeAOF() {
	if e.aof == nil {
		return
	}
	if err := e.aof.Close(); err != nil {
		e.logger.Error("Failed to close AOF", zap.Error(err))
	}
}

// Shutdown stops the background tasks, writes a final snapshot when RDB is
// enabled and closes the AOF. Safe to call more than once
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		close(e.stop)
		e.bg.Wait()

		if e.cron != nil {
			<-e.cron.Stop().Done()
		}

		if e.rdb != nil {
			if err := e.rdb.Save(e.dbs); err != nil {
				e.logger.Error("Final RDB save failed", zap.Error(err))
			}
		}

		e.closeAOF()
		e.logger.Info("Engine stopped")
	})
}
