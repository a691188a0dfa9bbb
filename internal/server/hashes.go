package server

import (
	"slices"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/resp"
)

func hdel(r *request) resp.Value {
	return intReply(r.exec.HDel(r.ctx, r.arg(0), r.strs(1)...))
}

func hexists(r *request) resp.Value {
	return boolReply(r.exec.HExists(r.ctx, r.arg(0), string(r.arg(1))))
}

func hget(r *request) resp.Value {
	return bulkReply(r.exec.HGet(r.ctx, r.arg(0), string(r.arg(1))))
}

func hgetAll(r *request) resp.Value {
	all, err := r.exec.HGetAll(r.ctx, r.arg(0))
	if err != nil {
		return errorReply(err)
	}

	fields := make([]string, 0, len(all))
	for f := range all {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	items := make([]resp.Value, 0, 2*len(fields))
	for _, f := range fields {
		items = append(items, resp.MakeBulkString(f), resp.MakeBulkBytes(all[f]))
	}
	return resp.MakeArray(items)
}

func hincrBy(r *request) resp.Value {
	n, err := r.integerArg(2)
	if err != nil {
		return errorReply(err)
	}
	return intReply(r.exec.HIncrBy(r.ctx, r.arg(0), string(r.arg(1)), n))
}

// hincrByFloat is logged as the HSET of its result
func hincrByFloat(r *request) resp.Value {
	f, err := r.floatArg(2)
	if err != nil {
		return errorReply(err)
	}

	n, err := r.exec.HIncrByFloat(r.ctx, r.arg(0), string(r.arg(1)), f)
	if err != nil {
		return errorReply(err)
	}

	reply := floatReply(n)
	r.rewrite = cmdline("HSET", r.arg(0), r.arg(1), reply.String)
	return reply
}

func hkeys(r *request) resp.Value {
	fields, err := r.exec.HKeys(r.ctx, r.arg(0))
	if err != nil {
		return errorReply(err)
	}

	items := make([]resp.Value, len(fields))
	for i, f := range fields {
		items[i] = resp.MakeBulkString(f)
	}
	return resp.MakeArray(items)
}

func hlen(r *request) resp.Value {
	return intReply(r.exec.HLen(r.ctx, r.arg(0)))
}

func hmget(r *request) resp.Value {
	values, err := r.exec.HMGet(r.ctx, r.arg(0), r.strs(1)...)
	if err != nil {
		return errorReply(err)
	}

	items := make([]resp.Value, len(values))
	for i, v := range values {
		items[i] = bulkOrNil(v, v != nil)
	}
	return resp.MakeArray(items)
}

// pairs reads field value pairs starting at argument from
func (r *request) pairs(from int) ([]executor.FieldValue, bool) {
	if (len(r.args)-from)%2 != 0 {
		return nil, false
	}

	out := make([]executor.FieldValue, 0, (len(r.args)-from)/2)
	for i := from; i < len(r.args); i += 2 {
		out = append(out, executor.FieldValue{Field: string(r.arg(i)), Value: r.arg(i + 1)})
	}
	return out, true
}

func hmset(r *request) resp.Value {
	pairs, ok := r.pairs(1)
	if !ok {
		return resp.MakeErrorWrongNumberOfArguments("hmset")
	}
	return okReply(r.exec.HMSet(r.ctx, r.arg(0), pairs...))
}

func hset(r *request) resp.Value {
	pairs, ok := r.pairs(1)
	if !ok {
		return resp.MakeErrorWrongNumberOfArguments("hset")
	}

	var created int64
	for _, p := range pairs {
		isNew, err := r.exec.HSet(r.ctx, r.arg(0), p.Field, p.Value)
		if err != nil {
			return errorReply(err)
		}
		if isNew {
			created++
		}
	}
	return resp.MakeInteger(created)
}

func hsetNX(r *request) resp.Value {
	return boolReply(r.exec.HSetNX(r.ctx, r.arg(0), string(r.arg(1)), r.arg(2)))
}

func hvals(r *request) resp.Value {
	return arrayReply(r.exec.HVals(r.ctx, r.arg(0)))
}

func hscan(r *request) resp.Value {
	cursor, err := r.cursor(1)
	if err != nil {
		return errorReply(err)
	}
	args, err := r.scanArgs(2)
	if err != nil {
		return errorReply(err)
	}

	next, pairs, err := r.exec.HScan(r.ctx, r.arg(0), cursor, args)
	if err != nil {
		return errorReply(err)
	}

	items := make([]resp.Value, 0, 2*len(pairs))
	for _, p := range pairs {
		items = append(items, resp.MakeBulkString(p.Field), resp.MakeBulkBytes(p.Value))
	}
	return scanReply(next, items)
}
