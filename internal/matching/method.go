package matching

import (
	"strings"

	"github.com/getmockd/mockwire/pkg/request"
)

// AnyMethod matches every request method.
const AnyMethod = "*"

// MethodMatcher compares the request method, ignoring case.
type MethodMatcher struct {
	base
	expect Expectation
	any    bool
}

// NewMethod creates a method matcher. "*" matches any method.
func NewMethod(method string, opts ...Option) (*MethodMatcher, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, invalidf("method cannot be empty")
	}
	o := buildOptions(opts)
	m := &MethodMatcher{base: base{name: "MethodMatcher", desc: method, negate: o.negate}}
	if method == AnyMethod {
		m.any = true
		return m, nil
	}
	e, err := ParseExpectation(method)
	if err != nil {
		return nil, err
	}
	m.expect = e.FoldCase()
	return m, nil
}

// Match implements Matcher.
func (m *MethodMatcher) Match(req *request.Request) (bool, error) {
	if m.any {
		return m.result(nil)
	}
	return m.result(m.expect.CompareField("method", req.Method))
}
