package keyspace

// Kind is the kind of value held by a key, as reported by TYPE
type Kind string

const (
	KindNone      Kind = "none"
	KindString    Kind = "string"
	KindHash      Kind = "hash"
	KindList      Kind = "list"
	KindSet       Kind = "set"
	KindSortedSet Kind = "zset"
)

// Exists reports whether the kind describes a present key
func (k Kind) Exists() bool {
	return k != KindNone && k != ""
}
