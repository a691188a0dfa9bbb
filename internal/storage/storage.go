package storage

import (
	"io"
	"time"
)

type ExpiryStatus int

const (
	// ExpNotFound means that the key does not exist
	ExpNotFound ExpiryStatus = -2
	// ExpNoTimeout means that the key exists, but it does not have a TTL
	ExpNoTimeout ExpiryStatus = -1
	// ExpActive means that the key has an active lifetime
	ExpActive ExpiryStatus = 1
)

type SetOptions struct {
	TTL     time.Duration // key lifetime
	KeepTTL bool          // if true, retain the existing TTL (ignore TTL field)
	NX      bool          // only set if the key does not exist
	XX      bool          // only set if the key already exists
}

// Storage is the part of a store the background services need:
// active expiration and persistence
type Storage interface {
	// DeleteExpired randomly selects a limit of keys from each shard and delete if his TTL has expired
	DeleteExpired(limit int) float64

	// Snapshot writes the entire state of the storage to the writer.
	// Implementation must ensure consistency (or shard-level consistency)
	Snapshot(w io.Writer) error

	// Restore reads the state from the reader and populates the storage
	Restore(r io.Reader) error
}

func now() int64 {
	return time.Now().UnixNano()
}
