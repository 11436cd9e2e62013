package matching

import (
	"bytes"
	"fmt"

	"github.com/getmockd/mockwire/internal/textutil"
	"github.com/getmockd/mockwire/pkg/request"
)

// BodyMatcher compares the request body as text, or as raw bytes when
// built with Binary and a byte slice expectation.
type BodyMatcher struct {
	base
	expect Expectation
	raw    []byte
}

// NewBody creates a body matcher from a string, []byte, regex literal or
// *regexp.Regexp.
func NewBody(body any, opts ...Option) (*BodyMatcher, error) {
	o := buildOptions(opts)
	if b, ok := body.([]byte); ok && o.binary {
		if len(b) == 0 {
			return nil, invalidf("body cannot be empty")
		}
		return &BodyMatcher{
			base: base{name: "BodyMatcher", desc: fmt.Sprintf("%d bytes", len(b)), negate: o.negate},
			raw:  append([]byte(nil), b...),
		}, nil
	}
	e, err := ParseExpectation(body)
	if err != nil {
		return nil, err
	}
	if e.IsZero() {
		return nil, invalidf("body cannot be empty")
	}
	return &BodyMatcher{
		base:   base{name: "BodyMatcher", desc: textutil.Truncate(e.String(), maxQuoted), negate: o.negate},
		expect: e,
	}, nil
}

// Match implements Matcher.
func (m *BodyMatcher) Match(req *request.Request) (bool, error) {
	if m.raw != nil {
		if bytes.Equal(m.raw, req.Body) {
			return m.result(nil)
		}
		return m.result(fmt.Errorf("body expected %d bytes, got %d bytes that differ", len(m.raw), len(req.Body)))
	}
	return m.result(m.expect.CompareField("body", req.Text()))
}
