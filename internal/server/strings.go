package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/resp"
)

var (
	errNXWithXX      = errors.New("ERR NX cannot use with XX")
	errXXWithNX      = errors.New("ERR XX cannot use with NX")
	errTTLSpecified  = errors.New("ERR TTL already specified")
	errTTLNotInteger = errors.New("ERR value TTL is not integer")
	errBitArgument   = errors.New("ERR The bit argument must be 1 or 0.")
	errOffsetRange   = errors.New("ERR offset is out of range")
)

func errInvalidExpire(cmd string) error {
	return errors.New("ERR invalid expire time in '" + cmd + "' command")
}

func get(r *request) resp.Value {
	return bulkReply(r.exec.Get(r.ctx, r.arg(0)))
}

// setOptions is the parsed tail of a SET command
type setOptions struct {
	args     executor.SetArgs
	deadline time.Time // absolute expiry, zero when none was given
	logged   []resp.Value
}

func parseSet(r *request) (setOptions, error) {
	var o setOptions
	o.logged = cmdline("SET", r.arg(0), r.arg(1))

	hasTTL := false
	for i := 2; i < len(r.args); i++ {
		switch opt := r.word(i); opt {
		case "NX":
			if o.args.Condition == executor.IfPresent {
				return o, errNXWithXX
			}
			o.args.Condition = executor.IfAbsent
			o.logged = append(o.logged, r.args[i])

		case "XX":
			if o.args.Condition == executor.IfAbsent {
				return o, errXXWithNX
			}
			o.args.Condition = executor.IfPresent
			o.logged = append(o.logged, r.args[i])

		case "KEEPTTL":
			if hasTTL {
				return o, errTTLSpecified
			}
			o.args.KeepTTL = true
			o.logged = append(o.logged, r.args[i])

		case "EX", "PX", "EXAT", "PXAT":
			if hasTTL || o.args.KeepTTL {
				return o, errTTLSpecified
			}
			if i+1 >= len(r.args) {
				return o, executor.ErrSyntax
			}
			i++
			n, err := strconv.ParseInt(string(r.arg(i)), 10, 64)
			if err != nil {
				return o, errTTLNotInteger
			}
			if n <= 0 {
				return o, errInvalidExpire("set")
			}
			hasTTL = true

			switch opt {
			case "EX":
				o.deadline = time.Now().Add(time.Duration(n) * time.Second)
			case "PX":
				o.deadline = time.Now().Add(time.Duration(n) * time.Millisecond)
			case "EXAT":
				o.deadline = time.Unix(n, 0)
			case "PXAT":
				o.deadline = time.UnixMilli(n)
			}

		default:
			return o, errSyntaxWith(r.arg(i))
		}
	}

	if hasTTL {
		o.logged = append(o.logged,
			resp.MakeBulkString("PXAT"),
			resp.MakeBulkString(strconv.FormatInt(o.deadline.UnixMilli(), 10)),
		)
	}
	return o, nil
}

func set(r *request) resp.Value {
	o, err := parseSet(r)
	if err != nil {
		return errorReply(err)
	}

	key := r.arg(0)
	expired := false
	if !o.deadline.IsZero() {
		o.args.TTL = time.Until(o.deadline)
		if o.args.TTL <= 0 {
			// an absolute time in the past: write, then expire at once
			o.args.TTL = 0
			expired = true
		}
	}

	applied, err := r.exec.Set(r.ctx, key, r.arg(1), o.args)
	if err != nil {
		return errorReply(err)
	}
	if !applied {
		r.rewrite = o.logged
		return resp.MakeNilBulkString()
	}

	if expired {
		if _, err := r.exec.Del(r.ctx, key); err != nil {
			return errorReply(err)
		}
		r.rewrite = cmdline("DEL", key)
		return resp.MakeOK()
	}

	r.rewrite = o.logged
	return resp.MakeOK()
}

func getSet(r *request) resp.Value {
	return bulkReply(r.exec.GetSet(r.ctx, r.arg(0), r.arg(1)))
}

func setNX(r *request) resp.Value {
	return boolReply(r.exec.SetNX(r.ctx, r.arg(0), r.arg(1)))
}

func setEX(unit time.Duration, name string) commandFunc {
	return func(r *request) resp.Value {
		n, err := r.integerArg(1)
		if err != nil {
			return errorReply(err)
		}
		if n <= 0 {
			return errorReply(errInvalidExpire(name))
		}

		ttl := time.Duration(n) * unit
		if unit == time.Second {
			err = r.exec.SetEX(r.ctx, r.arg(0), r.arg(2), ttl)
		} else {
			err = r.exec.PSetEX(r.ctx, r.arg(0), r.arg(2), ttl)
		}
		if err != nil {
			return errorReply(err)
		}

		at := time.Now().Add(ttl).UnixMilli()
		r.rewrite = cmdline("SET", r.arg(0), r.arg(2), []byte("PXAT"), []byte(strconv.FormatInt(at, 10)))
		return resp.MakeOK()
	}
}

func appendValue(r *request) resp.Value {
	return intReply(r.exec.Append(r.ctx, r.arg(0), r.arg(1)))
}

func strLen(r *request) resp.Value {
	return intReply(r.exec.StrLen(r.ctx, r.arg(0)))
}

func incr(r *request) resp.Value {
	return intReply(r.exec.Incr(r.ctx, r.arg(0)))
}

func decr(r *request) resp.Value {
	return intReply(r.exec.Decr(r.ctx, r.arg(0)))
}

func incrBy(r *request) resp.Value {
	n, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return intReply(r.exec.IncrBy(r.ctx, r.arg(0), n))
}

func decrBy(r *request) resp.Value {
	n, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	return intReply(r.exec.DecrBy(r.ctx, r.arg(0), n))
}

// incrByFloat is logged as the SET of its result, float arithmetic may differ on replay
func incrByFloat(r *request) resp.Value {
	f, err := r.floatArg(1)
	if err != nil {
		return errorReply(err)
	}

	n, err := r.exec.IncrByFloat(r.ctx, r.arg(0), f)
	if err != nil {
		return errorReply(err)
	}

	reply := floatReply(n)
	r.rewrite = cmdline("SET", r.arg(0), reply.String, []byte("KEEPTTL"))
	return reply
}

func (r *request) bitOffset(i int) (int64, error) {
	n, err := r.integerArg(i)
	if err != nil || n < 0 {
		return 0, executor.ErrBitOffset
	}
	return n, nil
}

func getBit(r *request) resp.Value {
	offset, err := r.bitOffset(1)
	if err != nil {
		return errorReply(err)
	}
	return boolReply(r.exec.GetBit(r.ctx, r.arg(0), offset))
}

func setBit(r *request) resp.Value {
	offset, err := r.bitOffset(1)
	if err != nil {
		return errorReply(err)
	}

	var bit bool
	switch string(r.arg(2)) {
	case "1":
		bit = true
	case "0":
	default:
		return errorReply(executor.ErrBitValue)
	}
	return boolReply(r.exec.SetBit(r.ctx, r.arg(0), offset, bit))
}

func (r *request) positions(from int) ([]int64, error) {
	pos := make([]int64, 0, len(r.args)-from)
	for i := from; i < len(r.args); i++ {
		n, err := r.integerArg(i)
		if err != nil {
			return nil, err
		}
		pos = append(pos, n)
	}
	return pos, nil
}

func bitCount(r *request) resp.Value {
	if len(r.args) != 1 && len(r.args) != 3 {
		return errorReply(executor.ErrSyntax)
	}
	pos, err := r.positions(1)
	if err != nil {
		return errorReply(err)
	}
	return intReply(r.exec.BitCount(r.ctx, r.arg(0), pos...))
}

func bitPos(r *request) resp.Value {
	var bit bool
	switch string(r.arg(1)) {
	case "1":
		bit = true
	case "0":
	default:
		return errorReply(errBitArgument)
	}

	if len(r.args) > 4 {
		return errorReply(executor.ErrSyntax)
	}
	pos, err := r.positions(2)
	if err != nil {
		return errorReply(err)
	}
	return intReply(r.exec.BitPos(r.ctx, r.arg(0), bit, pos...))
}

func getRange(r *request) resp.Value {
	pos, err := r.positions(1)
	if err != nil {
		return errorReply(err)
	}

	b, err := r.exec.GetRange(r.ctx, r.arg(0), pos[0], pos[1])
	if err != nil {
		return errorReply(err)
	}
	return resp.MakeBulkBytes(b)
}

func setRange(r *request) resp.Value {
	offset, err := r.integerArg(1)
	if err != nil {
		return errorReply(err)
	}
	if offset < 0 {
		return errorReply(errOffsetRange)
	}
	return intReply(r.exec.SetRange(r.ctx, r.arg(0), offset, r.arg(2)))
}
