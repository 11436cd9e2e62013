package requestlog

import "time"

// Outcome values describe how the engine resolved a request.
const (
	OutcomeMatched     = "matched"
	OutcomeFiltered    = "filtered"
	OutcomePassthrough = "passthrough"
	OutcomeUnmatched   = "unmatched"
	OutcomeError       = "error"
)

// Entry captures one evaluated request.
type Entry struct {
	// ID is a unique, time ordered identifier.
	ID string `json:"id"`

	// Timestamp is when the request was evaluated.
	Timestamp time.Time `json:"timestamp"`

	Method string `json:"method"`
	URL    string `json:"url"`
	Host   string `json:"host"`
	Path   string `json:"path"`

	// QueryString is the raw query string.
	QueryString string `json:"queryString,omitempty"`

	// Headers are the request headers (multi-value).
	Headers map[string][]string `json:"headers,omitempty"`

	// Body is the request body (truncated if > 10KB).
	Body string `json:"body,omitempty"`

	// BodySize is the original body size in bytes.
	BodySize int `json:"bodySize"`

	// Outcome is one of the Outcome constants.
	Outcome string `json:"outcome"`

	// MatchedMockID is the ID of the mock that matched (empty if none).
	MatchedMockID string `json:"matchedMockId,omitempty"`

	// MatchedMockName is the name of the mock that matched, if it has one.
	MatchedMockName string `json:"matchedMockName,omitempty"`

	// ResponseStatus is the status of the mocked response.
	ResponseStatus int `json:"responseStatus,omitempty"`

	// DurationMs is the evaluation time in milliseconds.
	DurationMs int `json:"durationMs"`

	// Error contains the error message if evaluation failed.
	Error string `json:"error,omitempty"`

	// NearMisses lists the closest mocks for unmatched requests, best first.
	NearMisses []NearMissInfo `json:"nearMisses,omitempty"`
}

// Matched reports whether a mock matched the request.
func (e *Entry) Matched() bool {
	return e.Outcome == OutcomeMatched
}
