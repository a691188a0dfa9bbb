package server

import (
	"errors"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/resp"
)

var (
	errNoProto     = errors.New("NOPROTO unsupported protocol version")
	errRDBDisabled = errors.New("ERR RDB persistence is disabled")
)

func ping(r *request) resp.Value {
	switch len(r.args) {
	case 0:
		return resp.MakeSimpleString("PONG")
	case 1:
		return resp.MakeBulkBytes(r.arg(0))
	}
	return resp.MakeErrorWrongNumberOfArguments("ping")
}

func echo(r *request) resp.Value {
	return resp.MakeBulkBytes(r.arg(0))
}

func selectDB(r *request) resp.Value {
	n, err := r.integerArg(0)
	if err != nil {
		return errorReply(err)
	}
	if n < 0 || n >= int64(len(r.engine.execs)) {
		return errorReply(executor.ErrInvalidDB)
	}

	r.session.db = int(n)
	return resp.MakeOK()
}

func dbSize(r *request) resp.Value {
	return intReply(r.exec.DBSize(r.ctx))
}

func flushDB(r *request) resp.Value {
	if len(r.args) > 1 {
		return errorReply(executor.ErrSyntax)
	}
	if len(r.args) == 1 {
		if w := r.word(0); w != "ASYNC" && w != "SYNC" {
			return errorReply(executor.ErrSyntax)
		}
	}
	return okReply(r.exec.FlushDB(r.ctx))
}

// hello is refused so that clients fall back to RESP2
func hello(*request) resp.Value {
	return errorReply(errNoProto)
}

func client(r *request) resp.Value {
	switch r.word(0) {
	case "SETNAME":
		if len(r.args) != 2 {
			return resp.MakeErrorWrongNumberOfArguments("client|setname")
		}
		r.session.name = string(r.arg(1))
		return resp.MakeOK()

	case "GETNAME":
		return bulkOrNil([]byte(r.session.name), r.session.name != "")

	case "ID":
		return resp.MakeInteger(r.session.num)
	}

	// SETINFO and friends are accepted and ignored
	return resp.MakeOK()
}

func save(r *request) resp.Value {
	if r.engine.rdb == nil {
		return errorReply(errRDBDisabled)
	}
	return okReply(r.engine.rdb.Save(r.engine.dbs))
}

func bgsave(r *request) resp.Value {
	if r.engine.rdb == nil {
		return errorReply(errRDBDisabled)
	}
	if err := r.engine.rdb.Background(r.engine.dbs, nil); err != nil {
		return errorReply(err)
	}
	return resp.MakeSimpleString("Background saving started")
}

func lastSave(r *request) resp.Value {
	if r.engine.rdb == nil {
		return resp.MakeInteger(0)
	}
	at := r.engine.rdb.LastSave()
	if at.IsZero() {
		return resp.MakeInteger(0)
	}
	return resp.MakeInteger(at.Unix())
}

func cmd(r *request) resp.Value {
	if len(r.args) == 0 {
		return getCommandsInfo(nil)
	}

	switch r.word(0) {
	case "COUNT":
		return resp.MakeInteger(int64(len(commandRegistry)))
	case "INFO":
		return getCommandsInfo(r.args[1:])
	case "DOCS":
		return getCommandsDocs(r.args[1:])
	}
	return resp.MakeError("ERR unknown subcommand '" + string(r.arg(0)) + "'. Try COMMAND HELP.")
}
