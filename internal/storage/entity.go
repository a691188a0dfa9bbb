package storage

import (
	"math"
	"strconv"
)

type DataType byte

const (
	TypeString DataType = iota + 1
	TypeList
	TypeSet
	TypeHash
	TypeZSet
)

// String returns the name reported by the TYPE command
func (t DataType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeSet:
		return "set"
	case TypeHash:
		return "hash"
	case TypeZSet:
		return "zset"
	}
	return "none"
}

// Entity generic container for value.
// Value holds []byte, [][]byte, map[string]struct{}, map[string][]byte or map[string]float64
// depending on Type
type Entity struct {
	Type       DataType
	Value      interface{}
	LastAccess int64 // Unix nanoseconds of the last read or write
}

func newString(v []byte) *Entity {
	return &Entity{Type: TypeString, Value: v}
}

func newList() *Entity {
	return &Entity{Type: TypeList, Value: [][]byte(nil)}
}

func newSet() *Entity {
	return &Entity{Type: TypeSet, Value: make(map[string]struct{})}
}

func newHash() *Entity {
	return &Entity{Type: TypeHash, Value: make(map[string][]byte)}
}

func newZSet() *Entity {
	return &Entity{Type: TypeZSet, Value: make(map[string]float64)}
}

func (e *Entity) str() []byte              { return e.Value.([]byte) }
func (e *Entity) list() [][]byte           { return e.Value.([][]byte) }
func (e *Entity) set() map[string]struct{} { return e.Value.(map[string]struct{}) }
func (e *Entity) hash() map[string][]byte  { return e.Value.(map[string][]byte) }
func (e *Entity) zset() map[string]float64 { return e.Value.(map[string]float64) }

// size returns the number of elements of a collection, or the byte length of a string
func (e *Entity) size() int {
	switch e.Type {
	case TypeString:
		return len(e.str())
	case TypeList:
		return len(e.list())
	case TypeSet:
		return len(e.set())
	case TypeHash:
		return len(e.hash())
	case TypeZSet:
		return len(e.zset())
	}
	return 0
}

// Encoding thresholds mirror the defaults of a Redis server
const (
	maxEmbeddedString = 44
	maxListpackItems  = 128
	maxListpackValue  = 64
	maxIntsetItems    = 512
)

// Encoding returns the name reported by OBJECT ENCODING
func (e *Entity) Encoding() string {
	switch e.Type {
	case TypeString:
		v := e.str()
		if len(v) <= 20 {
			if _, err := strconv.ParseInt(string(v), 10, 64); err == nil {
				return "int"
			}
		}
		if len(v) <= maxEmbeddedString {
			return "embstr"
		}
		return "raw"
	case TypeList:
		if len(e.list()) <= maxListpackItems {
			return "listpack"
		}
		return "quicklist"
	case TypeSet:
		members := e.set()
		if len(members) <= maxIntsetItems && allIntegers(members) {
			return "intset"
		}
		if len(members) <= maxListpackItems {
			return "listpack"
		}
		return "hashtable"
	case TypeHash:
		fields := e.hash()
		if len(fields) > maxListpackItems {
			return "hashtable"
		}
		for f, v := range fields {
			if len(f) > maxListpackValue || len(v) > maxListpackValue {
				return "hashtable"
			}
		}
		return "listpack"
	case TypeZSet:
		if len(e.zset()) <= maxListpackItems {
			return "listpack"
		}
		return "skiplist"
	}
	return ""
}

func allIntegers(members map[string]struct{}) bool {
	for m := range members {
		if _, err := strconv.ParseInt(m, 10, 64); err != nil {
			return false
		}
	}
	return true
}

// clone returns a deep copy, used when a value is moved between databases or snapshotted
func (e *Entity) clone() *Entity {
	c := &Entity{Type: e.Type, LastAccess: e.LastAccess}
	switch e.Type {
	case TypeString:
		c.Value = append([]byte(nil), e.str()...)
	case TypeList:
		src := e.list()
		dst := make([][]byte, len(src))
		for i, v := range src {
			dst[i] = append([]byte(nil), v...)
		}
		c.Value = dst
	case TypeSet:
		dst := make(map[string]struct{}, len(e.set()))
		for m := range e.set() {
			dst[m] = struct{}{}
		}
		c.Value = dst
	case TypeHash:
		dst := make(map[string][]byte, len(e.hash()))
		for f, v := range e.hash() {
			dst[f] = append([]byte(nil), v...)
		}
		c.Value = dst
	case TypeZSet:
		dst := make(map[string]float64, len(e.zset()))
		for m, s := range e.zset() {
			dst[m] = s
		}
		c.Value = dst
	}
	return c
}

func formatFloat(f float64) []byte {
	return strconv.AppendFloat(nil, f, 'f', -1, 64)
}

func parseFloat(b []byte) (float64, bool) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
