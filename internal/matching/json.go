package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/getmockd/mockwire/internal/textutil"
	"github.com/getmockd/mockwire/pkg/request"
)

// JSONMatcher compares the request body with a JSON document. Both sides
// are decoded and re-encoded with sorted keys, so object key order is
// irrelevant while array order still matters.
type JSONMatcher struct {
	base
	canonical string
	pattern   *Expectation
}

// NewJSON creates a JSON matcher. doc may be a JSON string or []byte, any
// value that encodes to JSON, or a regex literal matched against the body
// text.
func NewJSON(doc any, opts ...Option) (*JSONMatcher, error) {
	o := buildOptions(opts)
	m := &JSONMatcher{}

	switch d := doc.(type) {
	case nil:
		return nil, invalidf("JSON document cannot be empty")
	case *regexp.Regexp:
		e := Pattern(d)
		m.pattern = &e
	case string:
		if IsRegexLiteral(d) {
			e, err := ParseExpectation(d)
			if err != nil {
				return nil, err
			}
			m.pattern = &e
			break
		}
		c, err := canonicalJSON([]byte(d))
		if err != nil {
			return nil, invalidf("%v", err)
		}
		m.canonical = c
	case []byte:
		c, err := canonicalJSON(d)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		m.canonical = c
	default:
		data, err := json.Marshal(d)
		if err != nil {
			return nil, invalidf("cannot encode JSON expectation: %v", err)
		}
		c, err := canonicalJSON(data)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		m.canonical = c
	}

	desc := m.canonical
	if m.pattern != nil {
		desc = m.pattern.String()
	}
	m.base = base{name: "JSONMatcher", desc: textutil.Truncate(desc, maxQuoted), negate: o.negate}
	return m, nil
}

// Match implements Matcher.
func (m *JSONMatcher) Match(req *request.Request) (bool, error) {
	if m.pattern != nil {
		return m.result(m.pattern.CompareField("JSON body", req.Text()))
	}
	if len(req.Body) == 0 {
		return m.result(errors.New("JSON body expected, but request has no body"))
	}
	actual, err := canonicalJSON([]byte(req.Text()))
	if err != nil {
		return m.result(err)
	}
	if actual != m.canonical {
		return m.result(&MismatchError{Subject: "JSON body", Expected: m.canonical, Actual: actual})
	}
	return m.result(nil)
}

// canonicalJSON decodes data and re-encodes it; encoding/json writes map
// keys in sorted order. Integers keep their exact digits.
func canonicalJSON(data []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return "", errors.New("invalid JSON: unexpected data after top-level value")
	}
	return canonicalValue(normalizeNumbers(v))
}

// normalizeNumbers rewrites non-integer numbers in their shortest float
// form, so 1.0 and 1 compare equal.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		s := x.String()
		if !strings.ContainsAny(s, ".eE") {
			if s == "-0" {
				return json.Number("0")
			}
			return x
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return x
		}
		return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
	case map[string]any:
		for k, item := range x {
			x[k] = normalizeNumbers(item)
		}
	case []any:
		for i, item := range x {
			x[i] = normalizeNumbers(item)
		}
	}
	return v
}

func canonicalValue(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
