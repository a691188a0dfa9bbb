// Package codec defines how typed values are turned into the raw bytes a
// store keeps and back again.
package codec

import (
	"fmt"
)

// Writer serializes values of type T. Implementations must be deterministic:
// equal inputs always produce byte-identical output.
type Writer[T any] interface {
	Write(v T) ([]byte, error)
}

// Reader parses raw store bytes into a value of type T.
// A failure is reported as a *DecodeError.
type Reader[T any] interface {
	Read(data []byte) (T, error)
}

// Codec is a Writer and a Reader for the same type
type Codec[T any] interface {
	Writer[T]
	Reader[T]
}

// DecodeError reports stored bytes that could not be parsed into the requested type
type DecodeError struct {
	Type string // name of the target type
	Data []byte // offending payload
	Err  error  // underlying cause, may be nil
}

func (e *DecodeError) Error() string {
	const maxShown = 64

	shown := e.Data
	suffix := ""
	if len(shown) > maxShown {
		shown = shown[:maxShown]
		suffix = "..."
	}

	if e.Err != nil {
		return fmt.Sprintf("codec: cannot decode %q%s as %s: %v", shown, suffix, e.Type, e.Err)
	}
	return fmt.Sprintf("codec: cannot decode %q%s as %s", shown, suffix, e.Type)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// decodeError copies data so the error does not alias a buffer owned by the caller
func decodeError(typ string, data []byte, err error) *DecodeError {
	return &DecodeError{
		Type: typ,
		Data: append([]byte(nil), data...),
		Err:  err,
	}
}

// ReadAll decodes every element of raw with r and stops at the first failure
func ReadAll[T any](r Reader[T], raw [][]byte) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, b := range raw {
		v, err := r.Read(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteAll encodes every element of values with w
func WriteAll[T any](w Writer[T], values []T) ([][]byte, error) {
	out := make([][]byte, 0, len(values))
	for _, v := range values {
		b, err := w.Write(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
