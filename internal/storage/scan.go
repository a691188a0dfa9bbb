package storage

import (
	"hash/fnv"
	"sort"

	"github.com/tidwall/match"
)

const (
	defaultScanCount = 10

	// cursorLive is set on every cursor handed out mid-scan so that
	// position zero of the first shard never collides with the terminal 0
	cursorLive = uint64(1) << 32
)

func scanBudget(count int64) int {
	if count <= 0 {
		return defaultScanCount
	}
	if count > int64(^uint32(0)) {
		return int(^uint32(0))
	}
	return int(count)
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name)) //nolint:errcheck
	return h.Sum32()
}

type hashedName struct {
	hash uint32
	name string
}

// scanHashed visits names in the order of their hash, starting with the first
// hash not below from. At least count names are visited unless fewer remain;
// names sharing a hash are never split across calls. more reports whether
// names remain, next is the position to resume from.
//
// Ordering by a hash of the name keeps the position meaningful while the
// collection changes, so every name present for the whole scan is visited.
func scanHashed(names []string, from uint32, count int) (visited []string, next uint32, more bool) {
	hashed := make([]hashedName, 0, len(names))
	for _, n := range names {
		if h := nameHash(n); h >= from {
			hashed = append(hashed, hashedName{hash: h, name: n})
		}
	}
	sort.Slice(hashed, func(i, j int) bool {
		if hashed[i].hash != hashed[j].hash {
			return hashed[i].hash < hashed[j].hash
		}
		return hashed[i].name < hashed[j].name
	})

	i := 0
	for i < len(hashed) && (i < count || (i > 0 && hashed[i].hash == hashed[i-1].hash)) {
		visited = append(visited, hashed[i].name)
		i++
	}

	if i < len(hashed) {
		return visited, hashed[i].hash, true
	}
	return visited, 0, false
}

// scanCollection runs one step of HSCAN, SSCAN or ZSCAN over the element names of a collection
func scanCollection(names []string, cursor uint64, pattern string, count int64) (uint64, []string) {
	if cursor != 0 && cursor&cursorLive == 0 {
		return 0, nil
	}

	visited, next, more := scanHashed(names, uint32(cursor), scanBudget(count))
	out := appendMatching(nil, visited, pattern)
	if more {
		return cursorLive | uint64(next), out
	}
	return 0, out
}

func appendMatching(dst, names []string, pattern string) []string {
	for _, n := range names {
		if pattern == "" || match.Match(n, pattern) {
			dst = append(dst, n)
		}
	}
	return dst
}
