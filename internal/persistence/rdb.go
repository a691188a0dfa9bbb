package persistence

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/storage"
)

const rdbMagic = "KSPCRDB1"

var (
	ErrSaveInProgress = errors.New("ERR Background save already in progress")
	ErrBadHeader      = errors.New("rdb: unknown file header")
)

// RDB writes point-in-time snapshots of every database to a single file
type RDB struct {
	filename string
	logger   *zap.Logger

	saving   atomic.Bool
	mu       sync.Mutex // serializes writers of the temporary file
	lastSave atomic.Int64
}

// NewRDB returns a snapshotter writing to filename
func NewRDB(filename string, logger *zap.Logger) *RDB {
	return &RDB{
		filename: filename,
		logger:   logger,
	}
}

// Save performs an atomic save operation: the snapshot goes to a temporary
// file which then replaces the previous one
func (r *RDB) Save(dbs storage.Storage) error {
	if !r.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer r.saving.Store(false)

	return r.save(dbs)
}

// Background starts Save in its own goroutine. done, when set, receives its result
func (r *RDB) Background(dbs storage.Storage, done func(error)) error {
	if !r.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}

	go func() {
		defer r.saving.Store(false)

		err := r.save(dbs)
		if err != nil {
			r.logger.Error("Background RDB save failed", zap.Error(err))
		}
		if done != nil {
			done(err)
		}
	}()
	return nil
}

// Saving reports whether a snapshot is being written
func (r *RDB) Saving() bool {
	return r.saving.Load()
}

// LastSave returns when the last successful save finished, zero if none did
func (r *RDB) LastSave() time.Time {
	ns := r.lastSave.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (r *RDB) save(dbs storage.Storage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	tmpFile := r.filename + ".tmp"

	f, err := os.Create(tmpFile)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	writer := bufio.NewWriterSize(f, 4*1024*1024)

	if _, err := writer.WriteString(rdbMagic); err != nil {
		return err
	}
	if err := dbs.Snapshot(writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpFile, r.filename); err != nil {
		return err
	}

	r.lastSave.Store(time.Now().UnixNano())
	r.logger.Info("RDB saved successfully",
		zap.String("file", r.filename),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Load restores the snapshot into dbs. A missing file is not an error
func (r *RDB) Load(dbs storage.Storage) error {
	f, err := os.Open(r.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close() //nolint:errcheck

	reader := bufio.NewReader(f)

	header := make([]byte, len(rdbMagic))
	if _, err := io.ReadFull(reader, header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file
		}
		return err
	}
	if string(header) != rdbMagic {
		return ErrBadHeader
	}

	start := time.Now()
	if err := dbs.Restore(reader); err != nil {
		return err
	}

	r.logger.Info("RDB loaded", zap.Duration("duration", time.Since(start)))
	return nil
}
