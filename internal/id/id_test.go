package id

import (
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Format(t *testing.T) {
	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	for i := 0; i < 100; i++ {
		id := UUID()
		assert.Regexp(t, uuidRegex, id)
	}
}

func TestUUID_Concurrent(t *testing.T) {
	const goroutines = 50
	const perGoroutine = 100

	results := make(chan string, goroutines*perGoroutine)
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				results <- UUID()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, goroutines*perGoroutine)
	for id := range results {
		if seen[id] {
			t.Fatalf("UUID() concurrent duplicate: %s", id)
		}
		seen[id] = true
	}
}

func TestShort(t *testing.T) {
	hexRegex := regexp.MustCompile(`^[0-9a-f]{16}$`)
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := Short()
		require.Regexp(t, hexRegex, id)
		require.False(t, seen[id], "duplicate short id %s", id)
		seen[id] = true
	}
}

func TestOrdered_Sortable(t *testing.T) {
	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, Ordered())
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	assert.Equal(t, ids, sorted)
}

func TestTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, ok := Time(Ordered())
	require.True(t, ok)
	assert.True(t, ts.After(before), "timestamp %v should be after %v", ts, before)

	_, ok = Time(UUID())
	assert.False(t, ok, "v4 ids carry no timestamp")

	_, ok = Time("not-an-id")
	assert.False(t, ok)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(UUID()))
	assert.True(t, Valid(Ordered()))
	assert.False(t, Valid(Short()))
	assert.False(t, Valid(""))
}
