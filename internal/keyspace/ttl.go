package keyspace

import (
	"fmt"
	"time"

	"github.com/eternalApril/keyspace/internal/executor"
)

// TTLState tells which of the three TTL outcomes holds
type TTLState int

const (
	// NoKey means the key does not exist
	NoKey TTLState = iota
	// NoExpiry means the key exists and never expires
	NoExpiry
	// ExpiresIn means the key exists and expires after TTL.Remaining
	ExpiresIn
)

func (s TTLState) String() string {
	switch s {
	case NoKey:
		return "NoKey"
	case NoExpiry:
		return "NoExpiry"
	case ExpiresIn:
		return "ExpiresIn"
	}
	return fmt.Sprintf("TTLState(%d)", int(s))
}

// TTL is the remaining lifetime of a key. Remaining is set only for ExpiresIn
// and has the resolution of the command that produced it
type TTL struct {
	State     TTLState
	Remaining time.Duration
}

func (t TTL) String() string {
	if t.State == ExpiresIn {
		return fmt.Sprintf("ExpiresIn(%s)", t.Remaining)
	}
	return t.State.String()
}

// shapeTTL turns a raw TTL or PTTL reply into a TTL.
// In legacy mode the store uses -1 for both missing keys and keys without an expiry
func shapeTTL(raw int64, unit time.Duration, legacy bool) TTL {
	switch {
	case raw == executor.TTLNoKey:
		return TTL{State: NoKey}
	case raw == executor.TTLNoExpiry && legacy:
		return TTL{State: NoKey}
	case raw == executor.TTLNoExpiry:
		return TTL{State: NoExpiry}
	case raw < 0:
		return TTL{State: NoKey}
	}
	return TTL{State: ExpiresIn, Remaining: time.Duration(raw) * unit}
}
