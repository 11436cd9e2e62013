package matching

import (
	"github.com/getmockd/mockwire/pkg/request"
)

// PathMatcher compares the URL path only.
type PathMatcher struct {
	base
	expect Expectation
}

// NewPath creates a path matcher from a string, regex literal or
// *regexp.Regexp.
func NewPath(path any, opts ...Option) (*PathMatcher, error) {
	e, err := ParseExpectation(path)
	if err != nil {
		return nil, err
	}
	if e.IsZero() {
		return nil, invalidf("path cannot be empty")
	}
	o := buildOptions(opts)
	return &PathMatcher{
		base:   base{name: "PathMatcher", desc: e.String(), negate: o.negate},
		expect: e,
	}, nil
}

// Match implements Matcher.
func (m *PathMatcher) Match(req *request.Request) (bool, error) {
	return m.result(m.expect.CompareField("path", requestPath(req)))
}

func requestPath(req *request.Request) string {
	if req.URL == nil || req.URL.Path == "" {
		return "/"
	}
	return req.URL.Path
}
