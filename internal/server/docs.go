package server

import (
	"slices"
	"strings"

	"github.com/eternalApril/keyspace/internal/resp"
)

type commandMetadata struct {
	arity    int      // Arity includes the command name itself, negative means at least -arity
	flags    []string // write, readonly, fast, denyoom, etc
	firstKey int      // 1-based index of the first key
	lastKey  int      // 1-based index of the last key
	step     int      // Step count for finding keys
}

var (
	rFast = []string{"readonly", "fast"}
	read  = []string{"readonly"}
	wFast = []string{"write", "fast"}
	write = []string{"write"}
	wOOM  = []string{"write", "denyoom"}
	wOOMF = []string{"write", "denyoom", "fast"}
	conn  = []string{"fast", "stale", "loading"}
)

var commandRegistry = map[string]commandMetadata{
	// generic
	"DEL":       {-2, write, 1, -1, 1},
	"EXISTS":    {-2, rFast, 1, -1, 1},
	"EXPIRE":    {3, wFast, 1, 1, 1},
	"EXPIREAT":  {3, wFast, 1, 1, 1},
	"PEXPIRE":   {3, wFast, 1, 1, 1},
	"PEXPIREAT": {3, wFast, 1, 1, 1},
	"MOVE":      {3, wFast, 1, 1, 1},
	"DUMP":      {2, read, 1, 1, 1},
	"OBJECT":    {-2, read, 2, 2, 1},
	"PERSIST":   {2, wFast, 1, 1, 1},
	"TTL":       {2, rFast, 1, 1, 1},
	"PTTL":      {2, rFast, 1, 1, 1},
	"RENAME":    {3, write, 1, 2, 1},
	"RENAMENX":  {3, wFast, 1, 2, 1},
	"TYPE":      {2, rFast, 1, 1, 1},
	"SCAN":      {-2, read, 0, 0, 0},

	// string
	"APPEND":      {3, wOOMF, 1, 1, 1},
	"BITCOUNT":    {-2, read, 1, 1, 1},
	"BITPOS":      {-3, read, 1, 1, 1},
	"DECR":        {2, wOOMF, 1, 1, 1},
	"DECRBY":      {3, wOOMF, 1, 1, 1},
	"GET":         {2, rFast, 1, 1, 1},
	"GETBIT":      {3, rFast, 1, 1, 1},
	"GETRANGE":    {4, read, 1, 1, 1},
	"GETSET":      {3, wOOMF, 1, 1, 1},
	"INCR":        {2, wOOMF, 1, 1, 1},
	"INCRBY":      {3, wOOMF, 1, 1, 1},
	"INCRBYFLOAT": {3, wOOMF, 1, 1, 1},
	"PSETEX":      {4, wOOM, 1, 1, 1},
	"SET":         {-3, wOOM, 1, 1, 1},
	"SETBIT":      {4, wOOM, 1, 1, 1},
	"SETEX":       {4, wOOM, 1, 1, 1},
	"SETNX":       {3, wOOMF, 1, 1, 1},
	"SETRANGE":    {4, wOOM, 1, 1, 1},
	"STRLEN":      {2, rFast, 1, 1, 1},

	// hash
	"HDEL":         {-3, wFast, 1, 1, 1},
	"HEXISTS":      {3, rFast, 1, 1, 1},
	"HGET":         {3, rFast, 1, 1, 1},
	"HGETALL":      {2, read, 1, 1, 1},
	"HINCRBY":      {4, wOOMF, 1, 1, 1},
	"HINCRBYFLOAT": {4, wOOMF, 1, 1, 1},
	"HKEYS":        {2, read, 1, 1, 1},
	"HLEN":         {2, rFast, 1, 1, 1},
	"HMGET":        {-3, rFast, 1, 1, 1},
	"HMSET":        {-4, wOOMF, 1, 1, 1},
	"HSCAN":        {-3, read, 1, 1, 1},
	"HSET":         {-4, wOOMF, 1, 1, 1},
	"HSETNX":       {4, wOOMF, 1, 1, 1},
	"HVALS":        {2, read, 1, 1, 1},

	// list
	"LINDEX":    {3, read, 1, 1, 1},
	"LINSERT":   {5, wOOM, 1, 1, 1},
	"LLEN":      {2, rFast, 1, 1, 1},
	"LPOP":      {2, wFast, 1, 1, 1},
	"LPUSH":     {-3, wOOMF, 1, 1, 1},
	"LPUSHX":    {-3, wOOMF, 1, 1, 1},
	"LRANGE":    {4, read, 1, 1, 1},
	"LREM":      {4, write, 1, 1, 1},
	"LSET":      {4, wOOM, 1, 1, 1},
	"LTRIM":     {4, write, 1, 1, 1},
	"RPOP":      {2, wFast, 1, 1, 1},
	"RPOPLPUSH": {3, wOOM, 1, 2, 1},
	"RPUSH":     {-3, wOOMF, 1, 1, 1},
	"RPUSHX":    {-3, wOOMF, 1, 1, 1},

	// set
	"SADD":        {-3, wOOMF, 1, 1, 1},
	"SCARD":       {2, rFast, 1, 1, 1},
	"SDIFF":       {-2, read, 1, -1, 1},
	"SDIFFSTORE":  {-3, wOOM, 1, -1, 1},
	"SINTER":      {-2, read, 1, -1, 1},
	"SINTERSTORE": {-3, wOOM, 1, -1, 1},
	"SISMEMBER":   {3, rFast, 1, 1, 1},
	"SMEMBERS":    {2, read, 1, 1, 1},
	"SMOVE":       {4, wFast, 1, 2, 1},
	"SPOP":        {2, wFast, 1, 1, 1},
	"SRANDMEMBER": {-2, read, 1, 1, 1},
	"SREM":        {-3, wFast, 1, 1, 1},
	"SSCAN":       {-3, read, 1, 1, 1},
	"SUNION":      {-2, read, 1, -1, 1},
	"SUNIONSTORE": {-3, wOOM, 1, -1, 1},

	// sorted set
	"ZADD":    {-4, wOOMF, 1, 1, 1},
	"ZCARD":   {2, rFast, 1, 1, 1},
	"ZINCRBY": {4, wOOMF, 1, 1, 1},
	"ZRANGE":  {-4, read, 1, 1, 1},
	"ZRANK":   {3, rFast, 1, 1, 1},
	"ZREM":    {-3, wFast, 1, 1, 1},
	"ZSCORE":  {3, rFast, 1, 1, 1},

	// connection and server
	"PING":     {-1, conn, 0, 0, 0},
	"ECHO":     {2, conn, 0, 0, 0},
	"SELECT":   {2, conn, 0, 0, 0},
	"HELLO":    {-1, conn, 0, 0, 0},
	"CLIENT":   {-2, conn, 0, 0, 0},
	"DBSIZE":   {1, rFast, 0, 0, 0},
	"FLUSHDB":  {-1, write, 0, 0, 0},
	"COMMAND":  {-1, []string{"random", "loading", "stale"}, 0, 0, 0},
	"SAVE":     {1, []string{"admin", "noscript"}, 0, 0, 0},
	"BGSAVE":   {-1, []string{"admin", "noscript"}, 0, 0, 0},
	"LASTSAVE": {1, []string{"random", "loading", "stale", "fast"}, 0, 0, 0},
}

// isWrite reports whether the command changes the dataset and goes to the AOF
func (m commandMetadata) isWrite() bool {
	return slices.Contains(m.flags, "write")
}

// arityOK checks the argument count, name excluded
func (m commandMetadata) arityOK(args int) bool {
	n := args + 1
	if m.arity < 0 {
		return n >= -m.arity
	}
	return n == m.arity
}

// commandDoc stores a description for the command
type commandDoc struct {
	summary    string
	complexity string
	group      string
	since      string
}

// commandDocsRegistry documentation registry
var commandDocsRegistry = map[string]commandDoc{
	"DEL":       {"Deletes one or more keys.", "O(N) where N is the number of keys that will be removed.", "generic", "1.0.0"},
	"EXISTS":    {"Determines whether one or more keys exist.", "O(N) where N is the number of keys to check.", "generic", "1.0.0"},
	"EXPIRE":    {"Sets the expiration time of a key in seconds.", "O(1)", "generic", "1.0.0"},
	"EXPIREAT":  {"Sets the expiration time of a key to a Unix timestamp.", "O(1)", "generic", "1.2.0"},
	"PEXPIRE":   {"Sets the expiration time of a key in milliseconds.", "O(1)", "generic", "2.6.0"},
	"PEXPIREAT": {"Sets the expiration time of a key to a Unix milliseconds timestamp.", "O(1)", "generic", "2.6.0"},
	"MOVE":      {"Moves a key to another database.", "O(1)", "generic", "1.0.0"},
	"DUMP":      {"Returns a serialized representation of the value stored at a key.", "O(1) to access the key and additional O(N*M) to serialize it.", "generic", "2.6.0"},
	"OBJECT":    {"Inspects the internals of a key: REFCOUNT, ENCODING or IDLETIME.", "O(1)", "generic", "2.2.3"},
	"PERSIST":   {"Removes the expiration time of a key.", "O(1)", "generic", "2.2.0"},
	"TTL":       {"Returns the expiration time in seconds of a key.", "O(1)", "generic", "1.0.0"},
	"PTTL":      {"Returns the expiration time in milliseconds of a key.", "O(1)", "generic", "2.6.0"},
	"RENAME":    {"Renames a key and overwrites the destination.", "O(1)", "generic", "1.0.0"},
	"RENAMENX":  {"Renames a key only when the target key name doesn't exist.", "O(1)", "generic", "1.0.0"},
	"TYPE":      {"Determines the type of value stored at a key.", "O(1)", "generic", "1.0.0"},
	"SCAN":      {"Iterates over the key names in the database.", "O(1) for every call. O(N) for a complete iteration.", "generic", "2.8.0"},

	"APPEND":      {"Appends a string to the value of a key. Creates the key if it doesn't exist.", "O(1)", "string", "2.0.0"},
	"BITCOUNT":    {"Counts the number of set bits (population counting) in a string.", "O(N)", "bitmap", "2.6.0"},
	"BITPOS":      {"Finds the first set (1) or clear (0) bit in a string.", "O(N)", "bitmap", "2.8.7"},
	"DECR":        {"Decrements the integer value of a key by one.", "O(1)", "string", "1.0.0"},
	"DECRBY":      {"Decrements a number from the integer value of a key.", "O(1)", "string", "1.0.0"},
	"GET":         {"Returns the string value of a key.", "O(1)", "string", "1.0.0"},
	"GETBIT":      {"Returns a bit value by offset.", "O(1)", "bitmap", "2.2.0"},
	"GETRANGE":    {"Returns a substring of the string stored at a key.", "O(N) where N is the length of the returned string.", "string", "2.4.0"},
	"GETSET":      {"Returns the previous string value of a key after setting it to a new value.", "O(1)", "string", "1.0.0"},
	"INCR":        {"Increments the integer value of a key by one.", "O(1)", "string", "1.0.0"},
	"INCRBY":      {"Increments the integer value of a key by a number.", "O(1)", "string", "1.0.0"},
	"INCRBYFLOAT": {"Increment the floating point value of a key by a number.", "O(1)", "string", "2.6.0"},
	"PSETEX":      {"Sets both string value and expiration time in milliseconds of a key.", "O(1)", "string", "2.6.0"},
	"SET":         {"Sets the string value of a key, ignoring its type.", "O(1)", "string", "1.0.0"},
	"SETBIT":      {"Sets or clears the bit at offset of the string value.", "O(1)", "bitmap", "2.2.0"},
	"SETEX":       {"Sets the string value and expiration time of a key.", "O(1)", "string", "2.0.0"},
	"SETNX":       {"Set the string value of a key only when the key doesn't exist.", "O(1)", "string", "1.0.0"},
	"SETRANGE":    {"Overwrites a part of a string value with another by an offset.", "O(1), not counting the time taken to copy the new string in place.", "string", "2.2.0"},
	"STRLEN":      {"Returns the length of a string value.", "O(1)", "string", "2.2.0"},

	"HDEL":         {"Deletes one or more fields and their values from a hash.", "O(N) where N is the number of fields to be removed.", "hash", "2.0.0"},
	"HEXISTS":      {"Determines whether a field exists in a hash.", "O(1)", "hash", "2.0.0"},
	"HGET":         {"Returns the value of a field in a hash.", "O(1)", "hash", "2.0.0"},
	"HGETALL":      {"Returns all fields and values in a hash.", "O(N) where N is the size of the hash.", "hash", "2.0.0"},
	"HINCRBY":      {"Increments the integer value of a field in a hash by a number.", "O(1)", "hash", "2.0.0"},
	"HINCRBYFLOAT": {"Increments the floating point value of a field by a number.", "O(1)", "hash", "2.6.0"},
	"HKEYS":        {"Returns all fields in a hash.", "O(N) where N is the size of the hash.", "hash", "2.0.0"},
	"HLEN":         {"Returns the number of fields in a hash.", "O(1)", "hash", "2.0.0"},
	"HMGET":        {"Returns the values of all fields in a hash.", "O(N) where N is the number of fields being requested.", "hash", "2.0.0"},
	"HMSET":        {"Sets the values of multiple fields.", "O(N) where N is the number of fields being set.", "hash", "2.0.0"},
	"HSCAN":        {"Iterates over fields and values of a hash.", "O(1) for every call. O(N) for a complete iteration.", "hash", "2.8.0"},
	"HSET":         {"Creates or modifies the value of a field in a hash.", "O(1) for each field/value pair added.", "hash", "2.0.0"},
	"HSETNX":       {"Sets the value of a field in a hash only when the field doesn't exist.", "O(1)", "hash", "2.0.0"},
	"HVALS":        {"Returns all values in a hash.", "O(N) where N is the size of the hash.", "hash", "2.0.0"},

	"LINDEX":    {"Returns an element from a list by its index.", "O(N) where N is the number of elements to traverse.", "list", "1.0.0"},
	"LINSERT":   {"Inserts an element before or after another element in a list.", "O(N) where N is the number of elements to traverse.", "list", "2.2.0"},
	"LLEN":      {"Returns the length of a list.", "O(1)", "list", "1.0.0"},
	"LPOP":      {"Returns the first element in a list after removing it.", "O(1)", "list", "1.0.0"},
	"LPUSH":     {"Prepends one or more elements to a list. Creates the key if it doesn't exist.", "O(1) for each element added.", "list", "1.0.0"},
	"LPUSHX":    {"Prepends one or more elements to a list only when the list exists.", "O(1) for each element added.", "list", "2.2.0"},
	"LRANGE":    {"Returns a range of elements from a list.", "O(S+N) where S is the start offset and N the number of elements.", "list", "1.0.0"},
	"LREM":      {"Removes elements from a list.", "O(N+M) where N is the length of the list and M the number of removed elements.", "list", "1.0.0"},
	"LSET":      {"Sets the value of an element in a list by its index.", "O(N) where N is the length of the list.", "list", "1.0.0"},
	"LTRIM":     {"Removes elements from both ends a list.", "O(N) where N is the number of elements removed.", "list", "1.0.0"},
	"RPOP":      {"Returns and removes the last element of a list.", "O(1)", "list", "1.0.0"},
	"RPOPLPUSH": {"Returns the last element of a list after removing and pushing it to another list.", "O(1)", "list", "1.2.0"},
	"RPUSH":     {"Appends one or more elements to a list. Creates the key if it doesn't exist.", "O(1) for each element added.", "list", "1.0.0"},
	"RPUSHX":    {"Appends an element to a list only when the list exists.", "O(1) for each element added.", "list", "2.2.0"},

	"SADD":        {"Adds one or more members to a set. Creates the key if it doesn't exist.", "O(1) for each element added.", "set", "1.0.0"},
	"SCARD":       {"Returns the number of members in a set.", "O(1)", "set", "1.0.0"},
	"SDIFF":       {"Returns the difference of multiple sets.", "O(N) where N is the total number of elements in all given sets.", "set", "1.0.0"},
	"SDIFFSTORE":  {"Stores the difference of multiple sets in a key.", "O(N) where N is the total number of elements in all given sets.", "set", "1.0.0"},
	"SINTER":      {"Returns the intersect of multiple sets.", "O(N*M) worst case where N is the smallest set and M the number of sets.", "set", "1.0.0"},
	"SINTERSTORE": {"Stores the intersect of multiple sets in a key.", "O(N*M) worst case where N is the smallest set and M the number of sets.", "set", "1.0.0"},
	"SISMEMBER":   {"Determines whether a member belongs to a set.", "O(1)", "set", "1.0.0"},
	"SMEMBERS":    {"Returns all members of a set.", "O(N) where N is the set cardinality.", "set", "1.0.0"},
	"SMOVE":       {"Moves a member from one set to another.", "O(1)", "set", "1.0.0"},
	"SPOP":        {"Returns a random member from a set after removing it.", "O(1)", "set", "1.0.0"},
	"SRANDMEMBER": {"Get one or multiple random members from a set.", "Without the count argument O(1), otherwise O(N) where N is the absolute value of count.", "set", "1.0.0"},
	"SREM":        {"Removes one or more members from a set.", "O(N) where N is the number of members to be removed.", "set", "1.0.0"},
	"SSCAN":       {"Iterates over members of a set.", "O(1) for every call. O(N) for a complete iteration.", "set", "2.8.0"},
	"SUNION":      {"Returns the union of multiple sets.", "O(N) where N is the total number of elements in all given sets.", "set", "1.0.0"},
	"SUNIONSTORE": {"Stores the union of multiple sets in a key.", "O(N) where N is the total number of elements in all given sets.", "set", "1.0.0"},

	"ZADD":    {"Adds one or more members to a sorted set, or updates their scores.", "O(log(N)) for each item added.", "sorted-set", "1.2.0"},
	"ZCARD":   {"Returns the number of members in a sorted set.", "O(1)", "sorted-set", "1.2.0"},
	"ZINCRBY": {"Increments the score of a member in a sorted set.", "O(log(N))", "sorted-set", "1.2.0"},
	"ZRANGE":  {"Returns members in a sorted set within a range of indexes.", "O(log(N)+M) with M the number of elements returned.", "sorted-set", "1.2.0"},
	"ZRANK":   {"Returns the index of a member in a sorted set ordered by ascending scores.", "O(log(N))", "sorted-set", "2.0.0"},
	"ZREM":    {"Removes one or more members from a sorted set.", "O(M*log(N)) with M the number of elements to be removed.", "sorted-set", "1.2.0"},
	"ZSCORE":  {"Returns the score of a member in a sorted set.", "O(1)", "sorted-set", "1.2.0"},

	"PING":     {"Returns the server's liveliness response.", "O(1)", "connection", "1.0.0"},
	"ECHO":     {"Returns the given string.", "O(1)", "connection", "1.0.0"},
	"SELECT":   {"Changes the selected database.", "O(1)", "connection", "1.0.0"},
	"HELLO":    {"Handshakes with the server. Only RESP2 is spoken, so it is refused.", "O(1)", "connection", "6.0.0"},
	"CLIENT":   {"Manages the connection: SETNAME, GETNAME, ID.", "O(1)", "connection", "2.4.0"},
	"DBSIZE":   {"Returns the number of keys in the database.", "O(1)", "server", "1.0.0"},
	"FLUSHDB":  {"Remove all keys from the current database.", "O(N) where N is the number of keys in the selected database.", "server", "1.0.0"},
	"COMMAND":  {"Returns detailed information about all commands.", "O(N) where N is the total number of commands.", "server", "2.8.13"},
	"SAVE":     {"Synchronously saves the database(s) to disk.", "O(N) where N is the total number of keys in all databases.", "server", "1.0.0"},
	"BGSAVE":   {"Asynchronously saves the database(s) to disk.", "O(1)", "server", "1.0.0"},
	"LASTSAVE": {"Returns the Unix timestamp of the last successful save to disk.", "O(1)", "server", "1.0.0"},
}

// sortedNames returns the names of every known command in order
func sortedNames() []string {
	names := make([]string, 0, len(commandRegistry))
	for name := range commandRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// targets upper-cases the requested names, or lists every command when none are given
func targets(args []resp.Value) []string {
	if len(args) == 0 {
		return sortedNames()
	}

	out := make([]string, 0, len(args))
	for _, arg := range args {
		out = append(out, strings.ToUpper(string(arg.String)))
	}
	return out
}

func getCommandsInfo(args []resp.Value) resp.Value {
	names := targets(args)
	result := make([]resp.Value, 0, len(names))

	for _, name := range names {
		meta, ok := commandRegistry[name]
		if !ok {
			result = append(result, resp.MakeNilArray())
			continue
		}

		flags := make([]resp.Value, len(meta.flags))
		for i, f := range meta.flags {
			flags[i] = resp.MakeSimpleString(f)
		}

		result = append(result, resp.MakeArray([]resp.Value{
			resp.MakeBulkString(strings.ToLower(name)),
			resp.MakeInteger(int64(meta.arity)),
			resp.MakeArray(flags),
			resp.MakeInteger(int64(meta.firstKey)),
			resp.MakeInteger(int64(meta.lastKey)),
			resp.MakeInteger(int64(meta.step)),
		}))
	}

	return resp.MakeArray(result)
}

func getCommandsDocs(args []resp.Value) resp.Value {
	names := targets(args)
	result := make([]resp.Value, 0, len(names)*2)

	for _, name := range names {
		doc, ok := commandDocsRegistry[name]
		if !ok {
			continue
		}

		result = append(result, resp.MakeBulkString(strings.ToLower(name)))

		props := []resp.Value{
			resp.MakeBulkString("summary"),
			resp.MakeBulkString(doc.summary),
			resp.MakeBulkString("since"),
			resp.MakeBulkString(doc.since),
			resp.MakeBulkString("group"),
			resp.MakeBulkString(doc.group),
			resp.MakeBulkString("complexity"),
			resp.MakeBulkString(doc.complexity),
		}

		result = append(result, resp.MakeArray(props))
	}

	return resp.MakeArray(result)
}
