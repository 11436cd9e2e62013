package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/mockwire/pkg/mock"
	"github.com/getmockd/mockwire/pkg/request"
)

// ErrNoMatch is matched by *NoMatchError.
var ErrNoMatch = errors.New("no mock matched the request")

// Miss records why one mock rejected a request.
type Miss struct {
	Mock *mock.Mock
	// Reasons holds one line per rejecting matcher, or the expiry notice.
	Reasons []string
	// Filtered is set when a mock filter skipped the mock.
	Filtered bool
	// Expired is set when the mock had no uses left.
	Expired bool
	// MatchPercentage is the share of matchers that accepted the request.
	MatchPercentage int
	// Summary is a one line account of what matched and what did not.
	Summary string
}

func (m Miss) String() string {
	switch {
	case m.Filtered:
		return fmt.Sprintf("%s: skipped by filter", m.Mock)
	case len(m.Reasons) == 0:
		return fmt.Sprintf("%s: did not match", m.Mock)
	case m.Expired:
		return m.Reasons[0]
	default:
		return fmt.Sprintf("%s:\n    %s", m.Mock, strings.Join(m.Reasons, "\n    "))
	}
}

// NoMatchError is returned by Match when no mock accepts a request and real
// networking is not allowed for it. It lists every mock that was tried.
type NoMatchError struct {
	Request *request.Request
	Misses  []Miss
}

func (e *NoMatchError) Error() string {
	var b strings.Builder
	b.WriteString("cannot match any mock for the following request:\n")
	b.WriteString(strings.TrimRight(e.Request.String(), "\n"))
	if len(e.Misses) == 0 {
		b.WriteString("\n\n=> No mocks registered")
		return b.String()
	}
	b.WriteString("\n\n=> Detailed matching errors:")
	for _, miss := range e.Misses {
		b.WriteString("\n  - ")
		b.WriteString(miss.String())
	}
	return b.String()
}

// Is reports ErrNoMatch as a match.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// NetworkFilterError wraps an error returned by a network filter.
type NetworkFilterError struct {
	Request *request.Request
	Err     error
}

func (e *NetworkFilterError) Error() string {
	return fmt.Sprintf("network filter failed for %s %s: %v", e.Request.Method, e.Request.URL, e.Err)
}

func (e *NetworkFilterError) Unwrap() error { return e.Err }
