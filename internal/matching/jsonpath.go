package matching

import (
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"

	"github.com/getmockd/mockwire/pkg/request"
)

// JSONPathMatcher evaluates a JSONPath expression against the JSON body.
// The expected value is either compared with the selected values (any
// match passes) or is an existence check of the form {"exists": bool}.
type JSONPathMatcher struct {
	base
	path     jp.Expr
	expected any
	text     *Expectation
}

// NewJSONPath creates a JSONPath matcher. A string expected value is
// compared as text and may be a regex literal; other values are compared
// structurally with numeric coercion.
func NewJSONPath(path string, expected any, opts ...Option) (*JSONPathMatcher, error) {
	if path == "" {
		return nil, invalidf("JSONPath cannot be empty")
	}
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, invalidf("invalid JSONPath expression %q: %v", path, err)
	}
	m := &JSONPathMatcher{path: expr, expected: expected}
	if s, ok := expected.(string); ok {
		e, err := ParseExpectation(s)
		if err != nil {
			return nil, err
		}
		m.text = &e
	}
	o := buildOptions(opts)
	m.base = base{name: "JSONPathMatcher", desc: fmt.Sprintf("%s = %v", path, expected), negate: o.negate}
	return m, nil
}

// Match implements Matcher.
func (m *JSONPathMatcher) Match(req *request.Request) (bool, error) {
	data, err := req.JSON()
	if err != nil {
		return m.result(err)
	}
	return m.result(m.evaluate(data))
}

func (m *JSONPathMatcher) evaluate(data any) error {
	results := m.path.Get(data)

	if isExistenceCheck(m.expected) {
		exists := getExistsValue(m.expected)
		switch {
		case exists && len(results) == 0:
			return fmt.Errorf("JSONPath %s expected to exist", m.path)
		case !exists && len(results) > 0:
			return fmt.Errorf("JSONPath %s expected not to exist", m.path)
		}
		return nil
	}

	if len(results) == 0 {
		return fmt.Errorf("JSONPath %s selected nothing", m.path)
	}

	// For wildcard paths that return multiple results, any match passes.
	for _, result := range results {
		if m.text != nil {
			if s, ok := result.(string); ok && m.text.Test(s) {
				return nil
			}
			continue
		}
		if valuesEqual(result, m.expected) {
			return nil
		}
	}
	return &MismatchError{
		Subject:  "JSONPath " + m.path.String(),
		Expected: fmt.Sprint(m.expected),
		Actual:   fmt.Sprint(results[0]),
	}
}

// isExistenceCheck determines if the expected value is an existence check object.
// An existence check is a map with an "exists" key containing a boolean.
func isExistenceCheck(expected any) bool {
	m, ok := expected.(map[string]any)
	if !ok {
		return false
	}
	_, hasExists := m["exists"]
	return hasExists && len(m) == 1
}

// getExistsValue extracts the boolean value from an existence check.
func getExistsValue(expected any) bool {
	m, ok := expected.(map[string]any)
	if !ok {
		return false
	}
	b, ok := m["exists"].(bool)
	return ok && b
}

// valuesEqual compares two values for equality, handling numeric coercion
// since JSON numbers decode as float64.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	actualNum, actualIsNum := toFloat64(actual)
	expectedNum, expectedIsNum := toFloat64(expected)
	if actualIsNum && expectedIsNum {
		return actualNum == expectedNum
	}
	// Structured values: compare canonical encodings.
	a, errA := canonicalValue(actual)
	e, errE := canonicalValue(expected)
	return errA == nil && errE == nil && a == e
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
