package storage

import (
	"errors"
	"io"

	"github.com/eternalApril/keyspace/internal/executor"
	"github.com/eternalApril/keyspace/internal/resp"
)

// Databases is a fixed set of numbered logical databases sharing a process,
// as selected with SELECT and targeted by MOVE
type Databases struct {
	dbs []*ShardedMapStorage
}

var _ Storage = (*Databases)(nil)

// NewDatabases creates count empty databases with shards shards each
func NewDatabases(count int, shards uint) (*Databases, error) {
	if count < 1 {
		return nil, errors.New("at least one database is required")
	}

	d := &Databases{dbs: make([]*ShardedMapStorage, count)}
	for i := range d.dbs {
		s, err := NewShardedMapStorage(shards)
		if err != nil {
			return nil, err
		}
		d.dbs[i] = s
	}

	return d, nil
}

// Len returns the number of databases
func (d *Databases) Len() int {
	return len(d.dbs)
}

// DB returns the database with the given index
func (d *Databases) DB(index int) (*ShardedMapStorage, error) {
	if index < 0 || index >= len(d.dbs) {
		return nil, executor.ErrInvalidDB
	}
	return d.dbs[index], nil
}

// Move transfers key from one database to another.
// Returns false when the key is missing in the source or already present in the target
func (d *Databases) Move(key string, from, to int) (bool, error) {
	src, err := d.DB(from)
	if err != nil {
		return false, err
	}
	dst, err := d.DB(to)
	if err != nil {
		return false, err
	}
	if from == to {
		return false, executor.ErrSameKey
	}

	// lock order: lower database index first
	first, second := src.shard(key), dst.shard(key)
	if to < from {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	now := now()
	srcShard, dstShard := src.shard(key), dst.shard(key)

	e := srcShard.lookup(key, now)
	if e == nil {
		return false, nil
	}
	if dstShard.peek(key, now) != nil {
		return false, nil
	}

	exp, hasExp := srcShard.expires[key]
	srcShard.remove(key)
	dstShard.put(key, e, now)
	if hasExp {
		dstShard.expires[key] = exp
	}
	return true, nil
}

// DeleteExpired runs a sampling pass over every database and returns the mean expired ratio
func (d *Databases) DeleteExpired(limit int) float64 {
	var total float64
	for _, db := range d.dbs {
		total += db.DeleteExpired(limit)
	}
	return total / float64(len(d.dbs))
}

// Snapshot writes every live key of every database as a sequence of RESP records
// [db, key, expireAt, value]. Shards are serialized one at a time to minimize locking time
func (d *Databases) Snapshot(w io.Writer) error {
	enc := resp.NewEncoder(w)

	for index, db := range d.dbs {
		for _, m := range db.shards {
			if err := m.snapshot(enc, index); err != nil {
				return err
			}
		}
	}

	return enc.Flush()
}

// Restore reads the records written by Snapshot, replacing keys with the same name
func (d *Databases) Restore(r io.Reader) error {
	dec := resp.NewDecoder(r)

	for {
		record, err := dec.Read()
		if err == io.EOF {
			return nil // end of stream
		}
		if err != nil {
			return err
		}

		if record.Type != resp.TypeArray || len(record.Array) != 4 {
			return ErrCorruptPayload
		}

		db, err := d.DB(int(record.Array[0].Integer))
		if err != nil {
			return err
		}

		key := string(record.Array[1].String)
		exp := record.Array[2].Integer

		e, err := decodeEntity(record.Array[3])
		if err != nil {
			return err
		}

		m, unlock := db.locked(key)
		m.remove(key)
		m.put(key, e, now())
		if exp > 0 {
			m.expires[key] = exp
		}
		unlock()
	}
}

// snapshot serializes the shard data in the encoder
func (m *MapStorage) snapshot(enc *resp.Encoder, db int) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := now()
	for _, key := range m.liveKeys(now) {
		exp := m.expires[key]

		record := resp.MakeArray([]resp.Value{
			resp.MakeInteger(int64(db)),
			resp.MakeBulkString(key),
			resp.MakeInteger(exp),
			encodeEntity(m.data[key]),
		})
		if err := enc.Write(record); err != nil {
			return err
		}
	}

	return nil
}
