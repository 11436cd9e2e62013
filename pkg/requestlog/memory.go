package requestlog

import (
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/mockwire/internal/id"
)

// DefaultMaxEntries is the capacity used when NewMemoryStore is given a
// non-positive size.
const DefaultMaxEntries = 1000

// MemoryStore implements Store, SubscribableStore and ExtendedStore with a
// bounded in-memory buffer. The oldest entry is evicted when it is full.
type MemoryStore struct {
	entries     []*Entry
	maxEntries  int
	mu          sync.RWMutex
	subscribers map[Subscriber]struct{}
	subMu       sync.RWMutex
}

var (
	_ SubscribableStore = (*MemoryStore)(nil)
	_ ExtendedStore     = (*MemoryStore)(nil)
)

// NewMemoryStore creates a MemoryStore holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		entries:     make([]*Entry, 0, min(maxEntries, 64)),
		maxEntries:  maxEntries,
		subscribers: make(map[Subscriber]struct{}),
	}
}

// Log records an entry, assigning an ID and timestamp when missing.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}

	s.mu.Lock()
	if entry.ID == "" {
		entry.ID = id.Ordered()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if len(s.entries) >= s.maxEntries {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	// Notify subscribers without blocking; slow subscribers miss entries.
	s.subMu.RLock()
	for sub := range s.subscribers {
		select {
		case sub <- entry:
		default:
		}
	}
	s.subMu.RUnlock()
}

// Get retrieves an entry by ID.
func (s *MemoryStore) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// List returns entries newest first, optionally filtered.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if filter != nil && !matchesFilter(entry, filter) {
			continue
		}
		result = append(result, entry)
	}

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}
	return result
}

func matchesFilter(entry *Entry, filter *Filter) bool {
	if filter.Outcome != "" && entry.Outcome != filter.Outcome {
		return false
	}
	if filter.Method != "" && !strings.EqualFold(entry.Method, filter.Method) {
		return false
	}
	if filter.Host != "" && !matchGlob(filter.Host, strings.ToLower(entry.Host), false) {
		return false
	}
	if filter.Path != "" && !matchGlob(filter.Path, entry.Path, true) {
		return false
	}
	if filter.MatchedID != "" && entry.MatchedMockID != filter.MatchedID {
		return false
	}
	if filter.StatusCode != 0 && entry.ResponseStatus != filter.StatusCode {
		return false
	}
	if filter.HasError != nil && *filter.HasError != (entry.Error != "") {
		return false
	}
	return true
}

// matchGlob matches value against a doublestar pattern. Patterns without
// wildcards are compared exactly, or as a prefix when prefix is set.
func matchGlob(pattern, value string, prefix bool) bool {
	if !strings.ContainsAny(pattern, "*?[{") {
		if prefix {
			return strings.HasPrefix(value, pattern)
		}
		return strings.EqualFold(value, pattern)
	}
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*Entry, 0, min(s.maxEntries, 64))
}

// Count returns the number of entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ClearByMockID removes all entries matched by the given mock.
func (s *MemoryStore) ClearByMockID(mockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.MatchedMockID != mockID {
			filtered = append(filtered, entry)
		}
	}
	s.entries = filtered
}

// CountByMockID returns the number of entries matched by the given mock.
func (s *MemoryStore) CountByMockID(mockID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, entry := range s.entries {
		if entry.MatchedMockID == mockID {
			count++
		}
	}
	return count
}

// Subscribe registers a subscriber to receive new entries.
// Returns a channel that will receive entries and an unsubscribe function.
func (s *MemoryStore) Subscribe() (Subscriber, func()) {
	ch := make(Subscriber, 100)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}
