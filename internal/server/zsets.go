package server

import (
	"math"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/resp"
)

func zadd(r *request) resp.Value {
	if (len(r.args)-1)%2 != 0 {
		return errorReply(executor.ErrSyntax)
	}

	members := make([]executor.ScoredMember, 0, (len(r.args)-1)/2)
	for i := 1; i < len(r.args); i += 2 {
		score, err := r.floatArg(i)
		if err != nil || math.IsNaN(score) {
			return errorReply(executor.ErrNotFloat)
		}
		members = append(members, executor.ScoredMember{Member: r.arg(i + 1), Score: score})
	}
	return intReply(r.exec.ZAdd(r.ctx, r.arg(0), members...))
}

func zcard(r *request) resp.Value {
	return intReply(r.exec.ZCard(r.ctx, r.arg(0)))
}

func zincrBy(r *request) resp.Value {
	increment, err := r.floatArg(1)
	if err != nil {
		return errorReply(err)
	}

	score, err := r.exec.ZIncrBy(r.ctx, r.arg(0), increment, r.arg(2))
	if err != nil {
		return errorReply(err)
	}
	return floatReply(score)
}

func zrange(r *request) resp.Value {
	withScores := false
	switch len(r.args) {
	case 3:
	case 4:
		if r.word(3) != "WITHSCORES" {
			return errorReply(executor.ErrSyntax)
		}
		withScores = true
	default:
		return errorReply(executor.ErrSyntax)
	}

	start, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	stop, err := r.integerArg(2)
	if err != nil {
		return errorReply(err)
	}

	members, err := r.exec.ZRange(r.ctx, r.arg(0), start, stop)
	if err != nil {
		return errorReply(err)
	}

	items := make([]resp.Value, 0, 2*len(members))
	for _, m := range members {
		items = append(items, resp.MakeBulkBytes(m.Member))
		if withScores {
			items = append(items, floatReply(m.Score))
		}
	}
	return resp.MakeArray(items)
}

func zrank(r *request) resp.Value {
	rank, found, err := r.exec.ZRank(r.ctx, r.arg(0), r.arg(1))
	if err != nil {
		return errorReply(err)
	}
	if !found {
		return resp.MakeNilBulkString()
	}
	return resp.MakeInteger(rank)
}

func zrem(r *request) resp.Value {
	return intReply(r.exec.ZRem(r.ctx, r.arg(0), r.keys(1)...))
}

func zscore(r *request) resp.Value {
	score, found, err := r.exec.ZScore(r.ctx, r.arg(0), r.arg(1))
	if err != nil {
		return errorReply(err)
	}
	if !found {
		return resp.MakeNilBulkString()
	}
	return floatReply(score)
}
