package requestlog

// Logger is the minimal interface for recording entries.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for request history storage.
// Store embeds Logger, so any Store implementation can be used where Logger is expected.
type Store interface {
	Logger

	// Get retrieves an entry by ID.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for filtering entries. Zero fields match
// everything.
type Filter struct {
	// Outcome filters by outcome.
	Outcome string

	// Method filters by method, case-insensitively.
	Method string

	// Host filters by host. Glob patterns such as "*.example.com" are
	// supported.
	Host string

	// Path filters by path prefix, or by glob ("/users/**") when the value
	// contains a wildcard.
	Path string

	// MatchedID filters by matched mock ID.
	MatchedID string

	// StatusCode filters by response status code.
	StatusCode int

	// HasError filters by error presence.
	HasError *bool

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

// Subscriber is a channel that receives new entries.
type Subscriber chan *Entry

// SubscribableStore extends Store with subscription support.
type SubscribableStore interface {
	Store

	// Subscribe registers a subscriber to receive new entries.
	// Returns a channel that will receive entries and an unsubscribe function.
	Subscribe() (Subscriber, func())
}

// ExtendedStore provides per-mock queries.
type ExtendedStore interface {
	Store

	// ClearByMockID removes all entries matched by the given mock.
	ClearByMockID(mockID string)

	// CountByMockID returns the number of entries matched by the given mock.
	CountByMockID(mockID string) int
}
