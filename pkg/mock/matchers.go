package mock

import (
	"github.com/getmockd/mockwire/internal/matching"
)

// Matcher decides whether a request satisfies one expectation. Custom
// matchers can be added to a mock with Use.
type Matcher = matching.Matcher

// MatchOption configures a matcher added through the Mock builder.
type MatchOption = matching.Option

// Negate inverts a matcher: the mock then requires the request NOT to
// satisfy it.
func Negate() MatchOption { return matching.Negate() }

// AllowEmpty lets ParamExists and HeaderPresent accept a parameter or
// header sent without a value.
func AllowEmpty() MatchOption { return matching.AllowEmpty() }

// Binary makes Body compare a []byte expectation with the raw request
// body.
func Binary() MatchOption { return matching.Binary() }
