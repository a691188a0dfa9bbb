package storage

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, s *ShardedMapStorage, match string, count int64) []string {
	t.Helper()

	var all []string
	cursor := uint64(0)
	for calls := 0; ; calls++ {
		require.Less(t, calls, 100000, "scan does not terminate")

		next, batch := s.Scan(cursor, match, count)
		all = append(all, batch...)
		if next == 0 {
			return all
		}
		cursor = next
	}
}

func TestScan_EveryKeyOnce(t *testing.T) {
	s := newTestStorage(t, 8)

	want := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("key:%d", i)
		s.Set(key, []byte("v"), SetOptions{})
		want = append(want, key)
	}

	for _, count := range []int64{0, 1, 7, 100} {
		got := scanAll(t, s, "", count)
		sort.Strings(got)
		sort.Strings(want)
		assert.Equal(t, want, got, "count=%d", count)
	}
}

func TestScan_Match(t *testing.T) {
	s := newTestStorage(t, 4)

	for i := 0; i < 30; i++ {
		s.Set(fmt.Sprintf("user:%d", i), []byte("v"), SetOptions{})
		s.Set(fmt.Sprintf("order:%d", i), []byte("v"), SetOptions{})
	}

	got := scanAll(t, s, "user:*", 5)
	assert.Len(t, got, 30)
	for _, k := range got {
		assert.Regexp(t, `^user:\d+$`, k)
	}

	next, batch := s.Scan(0, "order:?", 1000)
	assert.Equal(t, uint64(0), next, "a large count finishes in one call")
	assert.Len(t, batch, 10)
}

func TestScan_StableUnderMutation(t *testing.T) {
	s := newTestStorage(t, 4)

	stable := make(map[string]bool)
	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("stable:%d", i)
		stable[key] = false
		s.Set(key, []byte("v"), SetOptions{})
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			key := fmt.Sprintf("churn:%d", i%300)
			if i%2 == 0 {
				s.Set(key, []byte("v"), SetOptions{})
			} else {
				s.Del(key)
			}
		}
	}()

	for _, k := range scanAll(t, s, "stable:*", 3) {
		stable[k] = true
	}
	close(stop)
	wg.Wait()

	for k, seen := range stable {
		assert.True(t, seen, "%s present for the whole scan was never returned", k)
	}
}

func TestScan_InvalidCursorEnds(t *testing.T) {
	s := newTestStorage(t, 1)
	s.Set("k", []byte("v"), SetOptions{})

	next, batch := s.Scan(12345, "", 10)
	assert.Equal(t, uint64(0), next)
	assert.Empty(t, batch)
}

func TestScanCollection(t *testing.T) {
	names := make([]string, 0, 64)
	for i := 0; i < 64; i++ {
		names = append(names, fmt.Sprintf("m%d", i))
	}

	var got []string
	cursor := uint64(0)
	for {
		next, batch := scanCollection(names, cursor, "m1*", 5)
		got = append(got, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}

	sort.Strings(got)
	assert.Equal(t, []string{"m1", "m10", "m11", "m12", "m13", "m14", "m15", "m16", "m17", "m18", "m19"}, got)
}
