package keyspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eternalApril/keyspace/internal/codec"
	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/executor/memexec"
)

func newSpace(t *testing.T, opts ...Option) *Space[string, string] {
	t.Helper()
	return newSpaceOn(t, memexec.NewStandalone(), "app:", opts...)
}

func newSpaceOn(t *testing.T, exec executor.Executor, prefix string, opts ...Option) *Space[string, string] {
	t.Helper()
	s, err := NewSpace(exec, codec.String, prefix, codec.String, opts...)
	require.NoError(t, err)
	return s
}

func simpleKey(t *testing.T, s *Space[string, string], name string) *Simple[string] {
	t.Helper()
	k, err := NewSimple(s, name, codec.String)
	require.NoError(t, err)
	return k
}

func setKey(t *testing.T, s *Space[string, string], name string) *Set[string] {
	t.Helper()
	k, err := NewSet(s, name, codec.String)
	require.NoError(t, err)
	return k
}

// recordingExecutor fails the test when a command it does not override is issued
type recordingExecutor struct {
	executor.Executor
	ttl   int64
	calls []string
}

func (r *recordingExecutor) TTL(_ context.Context, _ []byte) (int64, error) {
	r.calls = append(r.calls, "TTL")
	return r.ttl, nil
}

func (r *recordingExecutor) PTTL(_ context.Context, _ []byte) (int64, error) {
	r.calls = append(r.calls, "PTTL")
	return r.ttl, nil
}
