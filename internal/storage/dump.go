package storage

import (
	"errors"
	"strconv"

	"github.com/eternalApril/keyspace/internal/resp"
)

// ErrCorruptPayload is returned when a dumped value or snapshot record cannot be decoded
var ErrCorruptPayload = errors.New("storage: corrupt payload")

// encodeEntity renders e as a RESP array: the type name followed by its elements
func encodeEntity(e *Entity) resp.Value {
	items := []resp.Value{resp.MakeBulkString(e.Type.String())}

	switch e.Type {
	case TypeString:
		items = append(items, resp.MakeBulkBytes(e.str()))
	case TypeList:
		for _, v := range e.list() {
			items = append(items, resp.MakeBulkBytes(v))
		}
	case TypeSet:
		for _, m := range sortedKeys(e.set()) {
			items = append(items, resp.MakeBulkString(m))
		}
	case TypeHash:
		fields := e.hash()
		for _, f := range sortedKeys(fields) {
			items = append(items, resp.MakeBulkString(f), resp.MakeBulkBytes(fields[f]))
		}
	case TypeZSet:
		scores := e.zset()
		for _, m := range sortedKeys(scores) {
			items = append(items, resp.MakeBulkString(m), resp.MakeBulkBytes(formatFloat(scores[m])))
		}
	}

	return resp.MakeArray(items)
}

// decodeEntity is the inverse of encodeEntity
func decodeEntity(v resp.Value) (*Entity, error) {
	if v.Type != resp.TypeArray || len(v.Array) == 0 {
		return nil, ErrCorruptPayload
	}

	items := v.Array[1:]
	for _, it := range items {
		if it.Type != resp.TypeBulkString || it.IsNull {
			return nil, ErrCorruptPayload
		}
	}

	switch string(v.Array[0].String) {
	case "string":
		if len(items) != 1 {
			return nil, ErrCorruptPayload
		}
		return newString(items[0].String), nil

	case "list":
		values := make([][]byte, len(items))
		for i, it := range items {
			values[i] = it.String
		}
		return &Entity{Type: TypeList, Value: values}, nil

	case "set":
		e := newSet()
		for _, it := range items {
			e.set()[string(it.String)] = struct{}{}
		}
		return e, nil

	case "hash":
		if len(items)%2 != 0 {
			return nil, ErrCorruptPayload
		}
		e := newHash()
		for i := 0; i < len(items); i += 2 {
			e.hash()[string(items[i].String)] = items[i+1].String
		}
		return e, nil

	case "zset":
		if len(items)%2 != 0 {
			return nil, ErrCorruptPayload
		}
		e := newZSet()
		for i := 0; i < len(items); i += 2 {
			score, err := strconv.ParseFloat(string(items[i+1].String), 64)
			if err != nil {
				return nil, ErrCorruptPayload
			}
			e.zset()[string(items[i].String)] = score
		}
		return e, nil
	}

	return nil, ErrCorruptPayload
}

// dumpEntity serializes e into the opaque payload returned by DUMP
func dumpEntity(e *Entity) ([]byte, error) {
	return resp.Marshal(encodeEntity(e))
}
