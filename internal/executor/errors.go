package executor

import (
	"errors"
	"strings"
)

// The messages match the replies of a Redis server so they survive a round trip over RESP
var (
	ErrWrongKind  = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNoSuchKey  = errors.New("ERR no such key")
	ErrSameKey    = errors.New("ERR source and destination objects are the same")
	ErrNotInteger = errors.New("ERR value is not an integer or out of range")
	ErrNotFloat   = errors.New("ERR value is not a valid float")
	ErrOverflow   = errors.New("ERR increment or decrement would overflow")
	ErrOutOfRange = errors.New("ERR index out of range")
	ErrBitValue   = errors.New("ERR bit is not an integer or out of range")
	ErrBitOffset  = errors.New("ERR bit offset is not an integer or out of range")
	ErrSyntax     = errors.New("ERR syntax error")
	ErrInvalidDB  = errors.New("ERR DB index is out of range")
	ErrNaN        = errors.New("ERR resulting score is not a number (NaN)")
)

var known = []error{
	ErrWrongKind,
	ErrNoSuchKey,
	ErrSameKey,
	ErrNotInteger,
	ErrNotFloat,
	ErrOverflow,
	ErrOutOfRange,
	ErrBitValue,
	ErrBitOffset,
	ErrSyntax,
	ErrInvalidDB,
	ErrNaN,
}

// FromMessage maps a server error message back to its sentinel.
// Unknown messages yield nil.
func FromMessage(msg string) error {
	if strings.HasPrefix(msg, "WRONGTYPE") {
		return ErrWrongKind
	}
	for _, err := range known {
		if msg == err.Error() {
			return err
		}
	}
	return nil
}
