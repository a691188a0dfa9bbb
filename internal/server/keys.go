package server

import (
	"strconv"
	"time"

	"github.com/eternalApril/keyspace/internal/resp"
)

func del(r *request) resp.Value {
	return intReply(r.exec.Del(r.ctx, r.keys(0)...))
}

func exists(r *request) resp.Value {
	return intReply(r.exec.Exists(r.ctx, r.keys(0)...))
}

// relativeExpire builds EXPIRE and PEXPIRE. The AOF gets the absolute PEXPIREAT
// so that replaying the log later does not extend the lifetime
func relativeExpire(unit time.Duration) commandFunc {
	return func(r *request) resp.Value {
		n, err := r.integerArg(1)
		if err != nil {
			return errorReply(err)
		}

		ttl := time.Duration(n) * unit
		applied, err := r.exec.PExpire(r.ctx, r.arg(0), ttl)
		if err != nil {
			return errorReply(err)
		}

		at := time.Now().Add(ttl).UnixMilli()
		r.rewrite = cmdline("PEXPIREAT", r.arg(0), []byte(strconv.FormatInt(at, 10)))
		return resp.MakeBool(applied)
	}
}

func expireAt(r *request) resp.Value {
	n, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return boolReply(r.exec.ExpireAt(r.ctx, r.arg(0), time.Unix(n, 0)))
}

func pexpireAt(r *request) resp.Value {
	n, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return boolReply(r.exec.PExpireAt(r.ctx, r.arg(0), time.UnixMilli(n)))
}

func move(r *request) resp.Value {
	db, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return boolReply(r.exec.Move(r.ctx, r.arg(0), int(db)))
}

func dump(r *request) resp.Value {
	return bulkReply(r.exec.Dump(r.ctx, r.arg(0)))
}

func object(r *request) resp.Value {
	if len(r.args) != 2 {
		return resp.MakeErrorWrongNumberOfArguments("object|" + string(r.arg(0)))
	}
	key := r.arg(1)

	switch r.word(0) {
	case "REFCOUNT":
		n, found, err := r.exec.ObjectRefCount(r.ctx, key)
		if err != nil {
			return errorReply(err)
		}
		if !found {
			return resp.MakeNilBulkString()
		}
		return resp.MakeInteger(n)

	case "ENCODING":
		enc, found, err := r.exec.ObjectEncoding(r.ctx, key)
		if err != nil {
			return errorReply(err)
		}
		return bulkOrNil([]byte(enc), found)

	case "IDLETIME":
		idle, found, err := r.exec.ObjectIdleTime(r.ctx, key)
		if err != nil {
			return errorReply(err)
		}
		if !found {
			return resp.MakeNilBulkString()
		}
		return resp.MakeInteger(int64(idle / time.Second))
	}

	return resp.MakeError("ERR unknown subcommand '" + string(r.arg(0)) + "'. Try OBJECT HELP.")
}

func persist(r *request) resp.Value {
	return boolReply(r.exec.Persist(r.ctx, r.arg(0)))
}

func ttl(r *request) resp.Value {
	return intReply(r.exec.TTL(r.ctx, r.arg(0)))
}

func pttl(r *request) resp.Value {
	return intReply(r.exec.PTTL(r.ctx, r.arg(0)))
}

func rename(r *request) resp.Value {
	return okReply(r.exec.Rename(r.ctx, r.arg(0), r.arg(1)))
}

func renameNX(r *request) resp.Value {
	return boolReply(r.exec.RenameNX(r.ctx, r.arg(0), r.arg(1)))
}

func typeOf(r *request) resp.Value {
	kind, err := r.exec.Type(r.ctx, r.arg(0))
	if err != nil {
		return errorReply(err)
	}
	return resp.MakeSimpleString(kind)
}

func scan(r *request) resp.Value {
	cursor, err := r.cursor(0)
	if err != nil {
		return errorReply(err)
	}
	args, err := r.scanArgs(1)
	if err != nil {
		return errorReply(err)
	}

	next, keys, err := r.exec.Scan(r.ctx, cursor, args)
	if err != nil {
		return errorReply(err)
	}
	return scanReply(next, resp.MakeBulkArray(keys).Array)
}
