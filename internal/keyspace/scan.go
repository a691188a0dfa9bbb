package keyspace

import (
	"context"
	"fmt"
	"iter"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/executor"
)

// Cursors of the three scan families. Zero starts a scan and a returned zero
// ends it. A cursor is only meaningful to the family that produced it
type (
	KeyCursor    uint64
	FieldCursor  uint64
	MemberCursor uint64
)

// Cursor is implemented by the cursor types
type Cursor interface {
	~uint64
}

// ScanOption adjusts a scan call
type ScanOption func(*executor.ScanArgs)

// Match keeps only elements matching the glob pattern. The store applies it
func Match(pattern string) ScanOption {
	return func(a *executor.ScanArgs) {
		a.Match = pattern
	}
}

// Count hints how many elements the store should visit per call
func Count(n int64) ScanOption {
	return func(a *executor.ScanArgs) {
		a.Count = n
	}
}

func scanArgs(opts []ScanOption) executor.ScanArgs {
	var args executor.ScanArgs
	for _, opt := range opts {
		opt(&args)
	}
	return args
}

// ScanState is the progress of a Scanner
type ScanState int

const (
	// ScanStart means no call was issued yet
	ScanStart ScanState = iota
	// ScanInProgress means the last call returned a non-zero cursor
	ScanInProgress
	// ScanDone means the last call returned cursor zero
	ScanDone
)

func (s ScanState) String() string {
	switch s {
	case ScanStart:
		return "Start"
	case ScanInProgress:
		return "InProgress"
	case ScanDone:
		return "Done"
	}
	return fmt.Sprintf("ScanState(%d)", int(s))
}

// StepFunc issues one scan call from cursor
type StepFunc[C Cursor, T any] func(ctx context.Context, cursor C) (C, []T, error)

// Scanner drives a scan family call by call. It holds only the cursor,
// so it may be dropped at any point
type Scanner[C Cursor, T any] struct {
	step   StepFunc[C, T]
	cursor C
	state  ScanState
	batch  []T
	err    error
}

// NewScanner returns a scanner in the Start state
func NewScanner[C Cursor, T any](step StepFunc[C, T]) *Scanner[C, T] {
	return &Scanner[C, T]{step: step}
}

// Next issues the next call. It returns false once the scan is done or failed;
// a true result may come with an empty batch
func (s *Scanner[C, T]) Next(ctx context.Context) bool {
	if s.state == ScanDone || s.err != nil {
		return false
	}

	next, batch, err := s.step(ctx, s.cursor)
	if err != nil {
		s.err = err
		s.batch = nil
		return false
	}

	s.cursor = next
	s.batch = batch
	if next == 0 {
		s.state = ScanDone
	} else {
		s.state = ScanInProgress
	}
	return true
}

// Batch returns the elements of the last call
func (s *Scanner[C, T]) Batch() []T {
	return s.batch
}

// Cursor returns the cursor the next call starts from
func (s *Scanner[C, T]) Cursor() C {
	return s.cursor
}

// State returns the progress of the scan
func (s *Scanner[C, T]) State() ScanState {
	return s.state
}

// Err returns the error that stopped the scan
func (s *Scanner[C, T]) Err() error {
	return s.err
}

// All yields every element until the scan is done. A failure is yielded once
// with a zero element, after which iteration stops
func (s *Scanner[C, T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for s.Next(ctx) {
			for _, v := range s.batch {
				if !yield(v, nil) {
					return
				}
			}
		}
		if s.err != nil {
			var zero T
			yield(zero, s.err)
		}
	}
}

// Scan issues one SCAN call over the whole store. Without Match every key is
// visited, including keys outside the prefix of the space
func (s *Space[P, K]) Scan(ctx context.Context, cursor KeyCursor, opts ...ScanOption) (KeyCursor, [][]byte, error) {
	next, keys, err := s.exec.Scan(ctx, uint64(cursor), scanArgs(opts))
	if err != nil {
		return 0, nil, s.opts.failed("SCAN", nil, err)
	}
	return KeyCursor(next), keys, nil
}

// Scanner returns a scanner over the raw keys of the store
func (s *Space[P, K]) Scanner(opts ...ScanOption) *Scanner[KeyCursor, []byte] {
	return NewScanner[KeyCursor, []byte](func(ctx context.Context, cursor KeyCursor) (KeyCursor, [][]byte, error) {
		return s.Scan(ctx, cursor, opts...)
	})
}

// ScanKeys issues one SCAN call and decodes the keys that belong to the space
// back into values with r. Keys outside the prefix are skipped
func (s *Space[P, K]) ScanKeys(ctx context.Context, r codec.Reader[K], cursor KeyCursor, opts ...ScanOption) (KeyCursor, []K, error) {
	next, keys, err := s.Scan(ctx, cursor, opts...)
	if err != nil {
		return 0, nil, err
	}

	values := make([]K, 0, len(keys))
	for _, raw := range keys {
		if !s.Owns(raw) {
			continue
		}
		v, err := r.Read(raw[len(s.raw):])
		if err != nil {
			return 0, nil, err
		}
		values = append(values, v)
	}
	return next, values, nil
}

// KeyScanner returns a scanner over the decoded keys of the space
func (s *Space[P, K]) KeyScanner(r codec.Reader[K], opts ...ScanOption) *Scanner[KeyCursor, K] {
	return NewScanner[KeyCursor, K](func(ctx context.Context, cursor KeyCursor) (KeyCursor, []K, error) {
		return s.ScanKeys(ctx, r, cursor, opts...)
	})
}
