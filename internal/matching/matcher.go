package matching

import (
	"errors"
	"fmt"

	"github.com/getmockd/mockwire/pkg/request"
)

// Matcher decides whether a request satisfies one expectation. A false
// result carries an error explaining the mismatch. Matchers are immutable
// after construction and never modify the request.
type Matcher interface {
	// Name identifies the matcher kind in explanations, e.g. "URLMatcher".
	Name() string
	Match(req *request.Request) (bool, error)
}

// Option configures a matcher.
type Option func(*options)

type options struct {
	negate     bool
	allowEmpty bool
	binary     bool
}

// Negate inverts the matcher result.
func Negate() Option {
	return func(o *options) { o.negate = true }
}

// AllowEmpty lets a value-less header or query parameter satisfy an
// existence check.
func AllowEmpty() Option {
	return func(o *options) { o.allowEmpty = true }
}

// Binary compares byte expectations against the raw body without decoding.
func Binary() Option {
	return func(o *options) { o.binary = true }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// base carries the parts every matcher shares.
type base struct {
	name   string
	desc   string
	negate bool
}

// Name implements Matcher.
func (b base) Name() string { return b.name }

// Negated reports whether the matcher result is inverted.
func (b base) Negated() bool { return b.negate }

func (b base) String() string {
	if b.negate {
		return fmt.Sprintf("%s(not %s)", b.name, b.desc)
	}
	return fmt.Sprintf("%s(%s)", b.name, b.desc)
}

// result converts a comparison outcome into the matcher result, applying
// negation. err is nil when the base comparison succeeded.
func (b base) result(err error) (bool, error) {
	if !b.negate {
		return err == nil, err
	}
	if err != nil {
		return true, nil
	}
	return false, fmt.Errorf("expected request not to match %s", b.desc)
}

// Match evaluates m and guarantees a non-nil error on failure, so callers
// always have an explanation to report.
func Match(m Matcher, req *request.Request) (bool, error) {
	ok, err := m.Match(req)
	if ok {
		return true, nil
	}
	if err == nil {
		err = errors.New("did not match")
	}
	return false, err
}
