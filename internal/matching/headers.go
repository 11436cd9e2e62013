package matching

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/getmockd/mockwire/pkg/request"
)

// HeadersMatcher requires every expected header to be present and, when a
// value is expected, to match it. Names are case-insensitive.
type HeadersMatcher struct {
	base
	names  []string
	expect map[string]*Expectation
}

// NewHeaders creates a headers matcher from an http.Header,
// map[string]string or map[string]any. A nil value in a map[string]any only
// requires the header to be present.
func NewHeaders(headers any, opts ...Option) (*HeadersMatcher, error) {
	raw, err := toHeaderMap(headers)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, invalidf("headers cannot be empty")
	}
	o := buildOptions(opts)
	m := &HeadersMatcher{expect: make(map[string]*Expectation, len(raw))}
	for name, v := range raw {
		name = http.CanonicalHeaderKey(strings.TrimSpace(name))
		if name == "" {
			return nil, invalidf("header name cannot be empty")
		}
		if v != nil {
			e, err := ParseExpectation(v)
			if err != nil {
				return nil, fmt.Errorf("header %q: %w", name, err)
			}
			m.expect[name] = &e
		} else {
			m.expect[name] = nil
		}
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)
	m.base = base{name: "HeadersMatcher", desc: m.describe(), negate: o.negate}
	return m, nil
}

// Match implements Matcher.
func (m *HeadersMatcher) Match(req *request.Request) (bool, error) {
	return m.result(m.compare(req.Header))
}

func (m *HeadersMatcher) compare(header http.Header) error {
	var errs []error
	for _, name := range m.names {
		values, ok := headerValues(header, name)
		if !ok {
			errs = append(errs, fmt.Errorf("header %q not present", name))
			continue
		}
		e := m.expect[name]
		if e == nil || e.IsZero() {
			continue
		}
		subject := fmt.Sprintf("header %q", name)
		if !hasValue(values) {
			errs = append(errs, &MismatchError{
				Reason: fmt.Sprintf("expected a value %q for header %q, but found none", e.String(), name),
			})
			continue
		}
		joined := strings.Join(values, ", ")
		if e.Negated() {
			if err := e.CompareField(subject, joined); err != nil {
				errs = append(errs, err)
				continue
			}
		} else if err := e.CompareField(subject, joined); err == nil {
			continue
		}
		if err := compareAny(*e, subject, values); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *HeadersMatcher) describe() string {
	parts := make([]string, 0, len(m.names))
	for _, name := range m.names {
		if e := m.expect[name]; e != nil {
			parts = append(parts, name+": "+e.String())
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

// headerValues looks name up case-insensitively, tolerating headers that
// were set without canonicalization.
func headerValues(header http.Header, name string) ([]string, bool) {
	if vs, ok := header[http.CanonicalHeaderKey(name)]; ok {
		return vs, true
	}
	for k, vs := range header {
		if strings.EqualFold(k, name) {
			return vs, true
		}
	}
	return nil, false
}

func hasValue(values []string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}

func toHeaderMap(headers any) (map[string]any, error) {
	out := make(map[string]any)
	switch h := headers.(type) {
	case nil:
	case http.Header:
		for k, vs := range h {
			out[k] = strings.Join(vs, ", ")
		}
	case map[string]string:
		for k, v := range h {
			out[k] = v
		}
	case map[string][]string:
		for k, vs := range h {
			out[k] = strings.Join(vs, ", ")
		}
	case map[string]any:
		for k, v := range h {
			switch vv := v.(type) {
			case string, []byte, *regexp.Regexp, nil:
				out[k] = vv
			default:
				out[k] = fmt.Sprint(vv)
			}
		}
	default:
		return nil, invalidf("unsupported headers type %T", headers)
	}
	return out, nil
}
