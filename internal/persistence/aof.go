package persistence

import (
	"bufio"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/config"
	"github.com/eternalApril/keyspace/internal/resp"
)

// FsyncPolicy says how often the log is forced to disk
type FsyncPolicy string

const (
	FsyncAlways   FsyncPolicy = "always"
	FsyncEverySec FsyncPolicy = "everysec"
	FsyncNo       FsyncPolicy = "no" // leave it to the OS, flush on close
)

// ErrClosed is returned when appending to a closed log
var ErrClosed = errors.New("aof is closed")

// AOF Append Only File persistence.
// Commands are written in RESP, a SELECT is logged whenever the database changes
type AOF struct {
	file     *os.File
	writer   *bufio.Writer
	filename string
	policy   FsyncPolicy

	mu     sync.Mutex // orders appends and guards db and closed
	db     int        // database the log is positioned on, -1 before the first append
	closed bool

	commands chan []byte
	stop     chan struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// OpenAOF opens the log for appending, creating it when missing
func OpenAOF(cfg config.AOFConfig, logger *zap.Logger) (*AOF, error) {
	f, err := os.OpenFile(cfg.Filename, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	policy := FsyncPolicy(cfg.Fsync)
	switch policy {
	case FsyncAlways, FsyncEverySec, FsyncNo:
	default:
		policy = FsyncEverySec
	}

	aof := &AOF{
		file:     f,
		writer:   bufio.NewWriter(f),
		filename: cfg.Filename,
		policy:   policy,
		db:       -1,
		commands: make(chan []byte, 10000), // buffer for burst writes
		stop:     make(chan struct{}),
		logger:   logger,
	}

	// background disk writer
	aof.wg.Add(1)
	go aof.listen()

	return aof, nil
}

// Append logs a command executed against database db.
// If the channel is full this blocks, providing backpressure
func (a *AOF) Append(db int, name string, args []resp.Value) error {
	payload, err := resp.SerializeCommand(name, args)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	if db != a.db {
		selectCmd, err := resp.SerializeCommand("SELECT", []resp.Value{resp.MakeBulkString(strconv.Itoa(db))})
		if err != nil {
			return err
		}
		a.commands <- selectCmd
		a.db = db
	}

	a.commands <- payload
	return nil
}

func (a *AOF) listen() {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case p := <-a.commands:
			a.write(p)
			if a.policy == FsyncAlways {
				a.sync()
			}

		case <-ticker.C:
			if a.policy == FsyncEverySec {
				a.sync()
			}

		case <-a.stop:
			// appends are rejected by now, drain what is queued
			for {
				select {
				case p := <-a.commands:
					a.write(p)
				default:
					a.sync()
					return
				}
			}
		}
	}
}

func (a *AOF) write(p []byte) {
	if _, err := a.writer.Write(p); err != nil {
		a.logger.Error("AOF write error", zap.Error(err))
	}
}

func (a *AOF) sync() {
	if err := a.writer.Flush(); err != nil {
		a.logger.Error("AOF flush error", zap.Error(err))
		return
	}
	if a.policy == FsyncNo {
		return
	}
	if err := a.file.Sync(); err != nil {
		a.logger.Error("AOF fsync error", zap.Error(err))
	}
}

// Close flushes every queued command and closes the file
func (a *AOF) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.stop)
	a.wg.Wait() // wait for background routine to finish last flush

	if a.policy == FsyncNo {
		if err := a.file.Sync(); err != nil {
			a.logger.Warn("AOF fsync on close failed", zap.Error(err))
		}
	}
	return a.file.Close()
}
