package matching

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/getmockd/mockwire/pkg/request"
)

// QueryMatcher requires every expected query parameter to be present and
// each expected value to match one of the request's values for that key.
type QueryMatcher struct {
	base
	keys   []string
	expect map[string][]Expectation
}

// NewQuery creates a query matcher. params may be a query string,
// url.Values, map[string]string, map[string][]string or map[string]any
// whose values are strings, string slices or *regexp.Regexp.
func NewQuery(params any, opts ...Option) (*QueryMatcher, error) {
	raw, err := toMultiMap(params)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, invalidf("query parameters cannot be empty")
	}
	o := buildOptions(opts)
	m := &QueryMatcher{expect: make(map[string][]Expectation, len(raw))}
	for key, values := range raw {
		for _, v := range values {
			e, err := ParseExpectation(v)
			if err != nil {
				return nil, fmt.Errorf("query param %q: %w", key, err)
			}
			m.expect[key] = append(m.expect[key], e)
		}
		if len(values) == 0 {
			m.expect[key] = nil
		}
		m.keys = append(m.keys, key)
	}
	sort.Strings(m.keys)
	m.base = base{name: "QueryMatcher", desc: m.describe(), negate: o.negate}
	return m, nil
}

// Match implements Matcher. Every expected value is checked and all
// failures are reported together.
func (m *QueryMatcher) Match(req *request.Request) (bool, error) {
	return m.result(m.compare(req.Query()))
}

func (m *QueryMatcher) compare(actual url.Values) error {
	var errs []error
	for _, key := range m.keys {
		values, ok := actual[key]
		if !ok {
			errs = append(errs, fmt.Errorf("query param %q not present", key))
			continue
		}
		for _, e := range m.expect[key] {
			if err := compareAny(e, fmt.Sprintf("query param %q", key), values); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *QueryMatcher) describe() string {
	parts := make([]string, 0, len(m.keys))
	for _, key := range m.keys {
		if len(m.expect[key]) == 0 {
			parts = append(parts, key)
			continue
		}
		for _, e := range m.expect[key] {
			parts = append(parts, key+"="+e.String())
		}
	}
	return strings.Join(parts, "&")
}

// compareAny passes when e matches at least one of values, or, for a
// negated expectation, when it matches none of them. The reported mismatch
// is the first one found.
func compareAny(e Expectation, subject string, values []string) error {
	if len(values) == 0 {
		return e.CompareField(subject, "")
	}
	// A negated expectation fails when any single value matches.
	if e.Negated() {
		for _, v := range values {
			if err := e.CompareField(subject, v); err != nil {
				return err
			}
		}
		return nil
	}
	var first error
	for _, v := range values {
		err := e.CompareField(subject, v)
		if err == nil {
			return nil
		}
		if first == nil {
			first = err
		}
	}
	return first
}

func toMultiMap(params any) (map[string][]any, error) {
	out := make(map[string][]any)
	switch p := params.(type) {
	case nil:
	case string:
		values, err := url.ParseQuery(strings.TrimPrefix(p, "?"))
		if err != nil {
			return nil, invalidf("bad query %q: %v", p, err)
		}
		for k, vs := range values {
			for _, v := range vs {
				out[k] = append(out[k], v)
			}
		}
	case url.Values:
		for k, vs := range p {
			for _, v := range vs {
				out[k] = append(out[k], v)
			}
		}
	case map[string]string:
		for k, v := range p {
			out[k] = []any{v}
		}
	case map[string][]string:
		for k, vs := range p {
			for _, v := range vs {
				out[k] = append(out[k], v)
			}
		}
	case map[string]any:
		for k, v := range p {
			switch vv := v.(type) {
			case []string:
				for _, s := range vv {
					out[k] = append(out[k], s)
				}
			case []any:
				out[k] = append(out[k], vv...)
			case *regexp.Regexp, string, []byte, nil:
				out[k] = append(out[k], vv)
			default:
				out[k] = append(out[k], fmt.Sprint(vv))
			}
		}
	default:
		return nil, invalidf("unsupported query type %T", params)
	}
	return out, nil
}
