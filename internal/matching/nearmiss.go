package matching

import (
	"fmt"
	"strings"

	"github.com/getmockd/mockwire/pkg/request"
)

// FieldResult describes whether a single matcher accepted the request.
type FieldResult struct {
	Field    string `json:"field"`
	Matched  bool   `json:"matched"`
	Expected string `json:"expected,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// NearMiss is a mock that was evaluated against a request and rejected it.
type NearMiss struct {
	MockID          string        `json:"mockId"`
	MockName        string        `json:"mockName,omitempty"`
	MatchPercentage int           `json:"matchPercentage"`
	Fields          []FieldResult `json:"fields,omitempty"`
	Reasons         []string      `json:"reasons,omitempty"`
	Reason          string        `json:"reason"`
}

// Breakdown evaluates every matcher against req without short-circuiting,
// so that a rejection can report each failing matcher. A panicking matcher
// is recorded as a failure.
func Breakdown(matchers []Matcher, req *request.Request) []FieldResult {
	results := make([]FieldResult, 0, len(matchers))
	for _, m := range matchers {
		ok, err := evaluate(m, req)
		fr := FieldResult{Field: m.Name(), Matched: ok}
		if s, isStringer := m.(fmt.Stringer); isStringer {
			fr.Expected = s.String()
		}
		if !ok {
			fr.Reason = err.Error()
		}
		results = append(results, fr)
	}
	return results
}

func evaluate(m Matcher, req *request.Request) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	return Match(m, req)
}

// AllMatched reports whether every field matched.
func AllMatched(fields []FieldResult) bool {
	for _, f := range fields {
		if !f.Matched {
			return false
		}
	}
	return true
}

// Explanations returns one "<Matcher>: <reason>" line per failed field.
func Explanations(fields []FieldResult) []string {
	var out []string
	for _, f := range fields {
		if !f.Matched {
			out = append(out, f.Field+": "+f.Reason)
		}
	}
	return out
}

// MatchPercentage returns the share of fields that matched.
func MatchPercentage(fields []FieldResult) int {
	if len(fields) == 0 {
		return 0
	}
	n := 0
	for _, f := range fields {
		if f.Matched {
			n++
		}
	}
	return n * 100 / len(fields)
}

// GenerateReason creates a one-line summary of why a mock rejected a
// request, naming what matched before the first mismatch.
func GenerateReason(fields []FieldResult) string {
	if len(fields) == 0 {
		return "no matchers to compare"
	}

	var matched []string
	var firstMismatch *FieldResult

	for i := range fields {
		if fields[i].Matched {
			matched = append(matched, fields[i].Field)
		} else if firstMismatch == nil {
			firstMismatch = &fields[i]
		}
	}

	if firstMismatch == nil {
		return "all matchers matched"
	}

	mismatch := firstMismatch.Field + ": " + firstMismatch.Reason
	if len(matched) == 0 {
		return mismatch
	}
	return joinFields(matched) + " matched, but " + mismatch
}

// joinFields joins field names with commas and "and".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}
