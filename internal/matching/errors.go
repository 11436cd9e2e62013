package matching

import (
	"errors"
	"fmt"

	"github.com/getmockd/mockwire/internal/textutil"
)

// ErrInvalidExpectation is returned when a matcher is built from an empty
// or unusable expectation.
var ErrInvalidExpectation = errors.New("invalid expectation")

// maxQuoted bounds expected/actual values quoted in explanations.
const maxQuoted = 200

// MismatchError explains why a value failed a comparison.
type MismatchError struct {
	// Subject names what was compared, e.g. "method" or `header "Accept"`.
	Subject  string
	Expected string
	Actual   string
	// Negated is set when the expectation carried the negation token.
	Negated bool
	// Reason replaces the generated message when set.
	Reason string
}

func (e *MismatchError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	subject := e.Subject
	if subject == "" {
		subject = "value"
	}
	expected := textutil.Truncate(e.Expected, maxQuoted)
	actual := textutil.Truncate(e.Actual, maxQuoted)
	if e.Actual == "" {
		return fmt.Sprintf("%s expected %q, but found none", subject, expected)
	}
	if e.Negated {
		return fmt.Sprintf("%s expected not to match %q, got %q", subject, expected, actual)
	}
	return fmt.Sprintf("%s expected %q, got %q", subject, expected, actual)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpectation, fmt.Sprintf(format, args...))
}
