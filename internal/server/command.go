package server

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/resp"
)

// request is everything a command handler may touch while it runs
type request struct {
	ctx     context.Context
	args    []resp.Value // arguments without the command name
	exec    Database
	session *Session
	engine  *Engine

	// rewrite replaces the command in the AOF, name first.
	// Commands with random or relative effects log a deterministic equivalent
	rewrite []resp.Value
}

type command interface {
	execute(r *request) resp.Value
}

type commandFunc func(r *request) resp.Value

func (c commandFunc) execute(r *request) resp.Value {
	return c(r)
}

// errSyntaxWith is the reply to an option the command does not know
func errSyntaxWith(arg []byte) error {
	return errors.New("ERR syntax error with command argument '" + string(arg) + "'")
}

// errorPrefixes are the error codes replies may already start with
var errorPrefixes = []string{"ERR ", "WRONGTYPE ", "NOPROTO "}

// errorReply renders err as a RESP error. Store errors already carry their prefix
func errorReply(err error) resp.Value {
	msg := err.Error()
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(msg, prefix) {
			return resp.MakeError(msg)
		}
	}
	return resp.MakeError("ERR " + msg)
}

func (r *request) arg(i int) []byte {
	return r.args[i].String
}

// word returns argument i in upper case, for option matching
func (r *request) word(i int) string {
	return strings.ToUpper(string(r.args[i].String))
}

func (r *request) keys(from int) [][]byte {
	out := make([][]byte, 0, len(r.args)-from)
	for _, a := range r.args[from:] {
		out = append(out, a.String)
	}
	return out
}

func (r *request) strs(from int) []string {
	out := make([]string, 0, len(r.args)-from)
	for _, a := range r.args[from:] {
		out = append(out, string(a.String))
	}
	return out
}

func (r *request) integerArg(i int) (int64, error) {
	n, err := strconv.ParseInt(string(r.args[i].String), 10, 64)
	if err != nil {
		return 0, executor.ErrNotInteger
	}
	return n, nil
}

func (r *request) floatArg(i int) (float64, error) {
	f, err := strconv.ParseFloat(string(r.args[i].String), 64)
	if err != nil {
		return 0, executor.ErrNotFloat
	}
	return f, nil
}

// scanArgs parses the MATCH and COUNT options starting at argument from
func (r *request) scanArgs(from int) (executor.ScanArgs, error) {
	var a executor.ScanArgs
	for i := from; i < len(r.args); i += 2 {
		if i+1 >= len(r.args) {
			return a, executor.ErrSyntax
		}
		switch r.word(i) {
		case "MATCH":
			a.Match = string(r.arg(i + 1))
		case "COUNT":
			n, err := r.integerArg(i + 1)
			if err != nil {
				return a, err
			}
			if n < 1 {
				return a, executor.ErrSyntax
			}
			a.Count = n
		default:
			return a, executor.ErrSyntax
		}
	}
	return a, nil
}

// cursor parses a SCAN cursor. Cursors travel as decimal bulk strings
func (r *request) cursor(i int) (uint64, error) {
	c, err := strconv.ParseUint(string(r.arg(i)), 10, 64)
	if err != nil {
		return 0, errors.New("ERR invalid cursor")
	}
	return c, nil
}

func scanReply(next uint64, items []resp.Value) resp.Value {
	return resp.MakeArray([]resp.Value{
		resp.MakeBulkString(strconv.FormatUint(next, 10)),
		resp.MakeArray(items),
	})
}

func floatReply(f float64) resp.Value {
	return resp.MakeBulkString(strconv.FormatFloat(f, 'f', -1, 64))
}

func bulkOrNil(b []byte, found bool) resp.Value {
	if !found {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkBytes(b)
}

func intReply(n int64, err error) resp.Value {
	if err != nil {
		return errorReply(err)
	}
	return resp.MakeInteger(n)
}

func boolReply(ok bool, err error) resp.Value {
	if err != nil {
		return errorReply(err)
	}
	return resp.MakeBool(ok)
}

func okReply(err error) resp.Value {
	if err != nil {
		return errorReply(err)
	}
	return resp.MakeOK()
}

func bulkReply(b []byte, found bool, err error) resp.Value {
	if err != nil {
		return errorReply(err)
	}
	return bulkOrNil(b, found)
}

func arrayReply(items [][]byte, err error) resp.Value {
	if err != nil {
		return errorReply(err)
	}
	return resp.MakeBulkArray(items)
}

func cmdline(name string, args ...[]byte) []resp.Value {
	out := make([]resp.Value, 0, len(args)+1)
	out = append(out, resp.MakeBulkString(name))
	for _, a := range args {
		out = append(out, resp.MakeBulkBytes(a))
	}
	return out
}
