package matching

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getmockd/mockwire/pkg/request"
)

// ExistsMatcher checks that a name is present in a request collection.
// By default a present entry with no value does not count, which catches
// "?x" being sent where "?x=..." was intended.
type ExistsMatcher struct {
	base
	key        string
	collection string
	allowEmpty bool
	lookup     func(req *request.Request, key string) ([]string, bool)
}

// NewHeaderExists creates a matcher requiring header name to be present.
func NewHeaderExists(name string, opts ...Option) (*ExistsMatcher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("header name cannot be empty")
	}
	return newExists("HeaderExistsMatcher", "headers", http.CanonicalHeaderKey(name), opts,
		func(req *request.Request, key string) ([]string, bool) {
			return headerValues(req.Header, key)
		})
}

// NewQueryExists creates a matcher requiring query parameter name to be
// present.
func NewQueryExists(name string, opts ...Option) (*ExistsMatcher, error) {
	if name == "" {
		return nil, invalidf("query parameter name cannot be empty")
	}
	return newExists("QueryExistsMatcher", "query", name, opts,
		func(req *request.Request, key string) ([]string, bool) {
			vs, ok := req.Query()[key]
			return vs, ok
		})
}

func newExists(name, collection, key string, opts []Option,
	lookup func(*request.Request, string) ([]string, bool)) (*ExistsMatcher, error) {
	o := buildOptions(opts)
	return &ExistsMatcher{
		base:       base{name: name, desc: key, negate: o.negate},
		key:        key,
		collection: collection,
		allowEmpty: o.allowEmpty,
		lookup:     lookup,
	}, nil
}

// Match implements Matcher.
func (m *ExistsMatcher) Match(req *request.Request) (bool, error) {
	values, ok := m.lookup(req, m.key)
	if !ok {
		return m.result(fmt.Errorf("%q not found in request's %s", m.key, m.collection))
	}
	if !m.allowEmpty && !hasValue(values) {
		return m.result(fmt.Errorf("%q present in request's %s but has no value", m.key, m.collection))
	}
	return m.result(nil)
}
