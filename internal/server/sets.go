package server

import (
	"github.com/eternalApril/keyspace/internal/resp"
)

func sadd(r *request) resp.Value {
	return intReply(r.exec.SAdd(r.ctx, r.arg(0), r.keys(1)...))
}

func scard(r *request) resp.Value {
	return intReply(r.exec.SCard(r.ctx, r.arg(0)))
}

func sdiff(r *request) resp.Value {
	return arrayReply(r.exec.SDiff(r.ctx, r.keys(0)...))
}

func sdiffStore(r *request) resp.Value {
	return intReply(r.exec.SDiffStore(r.ctx, r.arg(0), r.keys(1)...))
}

func sinter(r *request) resp.Value {
	return arrayReply(r.exec.SInter(r.ctx, r.keys(0)...))
}

func sinterStore(r *request) resp.Value {
	return intReply(r.exec.SInterStore(r.ctx, r.arg(0), r.keys(1)...))
}

func sunion(r *request) resp.Value {
	return arrayReply(r.exec.SUnion(r.ctx, r.keys(0)...))
}

func sunionStore(r *request) resp.Value {
	return intReply(r.exec.SUnionStore(r.ctx, r.arg(0), r.keys(1)...))
}

func sisMember(r *request) resp.Value {
	return boolReply(r.exec.SIsMember(r.ctx, r.arg(0), r.arg(1)))
}

func smembers(r *request) resp.Value {
	return arrayReply(r.exec.SMembers(r.ctx, r.arg(0)))
}

func smove(r *request) resp.Value {
	return boolReply(r.exec.SMove(r.ctx, r.arg(0), r.arg(1), r.arg(2)))
}

// spop is logged as the SREM of the member it picked
func spop(r *request) resp.Value {
	member, found, err := r.exec.SPop(r.ctx, r.arg(0))
	if err != nil {
		return errorReply(err)
	}
	if found {
		r.rewrite = cmdline("SREM", r.arg(0), member)
	}
	return bulkOrNil(member, found)
}

func srandMember(r *request) resp.Value {
	switch len(r.args) {
	case 1:
		return bulkReply(r.exec.SRandMember(r.ctx, r.arg(0)))
	case 2:
		count, err := r.integerArg(1)
		if err != nil {
			return errorReply(err)
		}
		return arrayReply(r.exec.SRandMembers(r.ctx, r.arg(0), count))
	}
	return resp.MakeErrorWrongNumberOfArguments("srandmember")
}

func srem(r *request) resp.Value {
	return intReply(r.exec.SRem(r.ctx, r.arg(0), r.keys(1)...))
}

func sscan(r *request) resp.Value {
	cursor, err := r.cursor(1)
	if err != nil {
		return errorReply(err)
	}
	args, err := r.scanArgs(2)
	if err != nil {
		return errorReply(err)
	}

	next, members, err := r.exec.SScan(r.ctx, r.arg(0), cursor, args)
	if err != nil {
		return errorReply(err)
	}
	return scanReply(next, resp.MakeBulkArray(members).Array)
}
