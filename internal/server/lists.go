package server

import (
	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/resp"
)

func lindex(r *request) resp.Value {
	index, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return bulkReply(r.exec.LIndex(r.ctx, r.arg(0), index))
}

func linsert(r *request) resp.Value {
	var before bool
	switch r.word(1) {
	case "BEFORE":
		before = true
	case "AFTER":
	default:
		return errorReply(executor.ErrSyntax)
	}
	return intReply(r.exec.LInsert(r.ctx, r.arg(0), before, r.arg(2), r.arg(3)))
}

func llen(r *request) resp.Value {
	return intReply(r.exec.LLen(r.ctx, r.arg(0)))
}

func lpop(r *request) resp.Value {
	return bulkReply(r.exec.LPop(r.ctx, r.arg(0)))
}

func rpop(r *request) resp.Value {
	return bulkReply(r.exec.RPop(r.ctx, r.arg(0)))
}

func lpush(r *request) resp.Value {
	return intReply(r.exec.LPush(r.ctx, r.arg(0), r.keys(1)...))
}

func lpushX(r *request) resp.Value {
	return intReply(r.exec.LPushX(r.ctx, r.arg(0), r.keys(1)...))
}

func rpush(r *request) resp.Value {
	return intReply(r.exec.RPush(r.ctx, r.arg(0), r.keys(1)...))
}

func rpushX(r *request) resp.Value {
	return intReply(r.exec.RPushX(r.ctx, r.arg(0), r.keys(1)...))
}

func lrange(r *request) resp.Value {
	pos, err := r.positions(1)
	if err != nil {
		return errorReply(err)
	}
	return arrayReply(r.exec.LRange(r.ctx, r.arg(0), pos[0], pos[1]))
}

func lrem(r *request) resp.Value {
	count, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return intReply(r.exec.LRem(r.ctx, r.arg(0), count, r.arg(2)))
}

func lset(r *request) resp.Value {
	index, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return okReply(r.exec.LSet(r.ctx, r.arg(0), index, r.arg(2)))
}

func ltrim(r *request) resp.Value {
	pos, err := r.positions(1)
	if err != nil {
		return errorReply(err)
	}
	return okReply(r.exec.LTrim(r.ctx, r.arg(0), pos[0], pos[1]))
}

func rpopLPush(r *request) resp.Value {
	return bulkReply(r.exec.RPopLPush(r.ctx, r.arg(0), r.arg(1)))
}
