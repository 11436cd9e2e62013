package testing

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"

	"github.com/getmockd/mockwire/pkg/requestlog"
)

// RequestLog is an evaluated request, for assertions.
type RequestLog struct {
	// Method is the HTTP method (GET, POST, etc.)
	Method string
	// URL is the full request URL
	URL string
	// Path is the request URL path
	Path string
	// Headers are the request headers
	Headers http.Header
	// Body is the request body, truncated when large
	Body string
	// QueryString is the raw query string
	QueryString string
	// Outcome is how the engine resolved the request
	Outcome string
	// MatchedID is the ID of the mock that matched this request
	MatchedID string
}

func newRequestLog(e *requestlog.Entry) RequestLog {
	return RequestLog{
		Method:      e.Method,
		URL:         e.URL,
		Path:        e.Path,
		Headers:     http.Header(e.Headers).Clone(),
		Body:        e.Body,
		QueryString: e.QueryString,
		Outcome:     e.Outcome,
		MatchedID:   e.MatchedMockID,
	}
}

// Matched reports whether a mock answered the request.
func (r *RequestLog) Matched() bool {
	return r.Outcome == requestlog.OutcomeMatched
}

// AssertJSONBody asserts that the request body is JSON equal to expected.
// The expected value can be a string, []byte, or any value that will be
// JSON encoded.
func (r *RequestLog) AssertJSONBody(t testing.TB, expected any) bool {
	t.Helper()

	var want string
	switch v := expected.(type) {
	case string:
		want = v
	case []byte:
		want = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return false
		}
		want = string(data)
	}
	return assert.JSONEq(t, want, r.Body, "request body does not match expected JSON")
}

// AssertBody asserts that the request body exactly matches the expected string.
func (r *RequestLog) AssertBody(t testing.TB, expected string) {
	t.Helper()

	if r.Body != expected {
		t.Errorf("request body does not match\nexpected: %q\nactual: %q", expected, r.Body)
	}
}

// AssertBodyContains asserts that the request body contains the expected substring.
func (r *RequestLog) AssertBodyContains(t testing.TB, substr string) {
	t.Helper()

	if !strings.Contains(r.Body, substr) {
		t.Errorf("request body does not contain %q\nbody: %s", substr, r.Body)
	}
}

// AssertHeader asserts that the request had the header with the expected value.
func (r *RequestLog) AssertHeader(t testing.TB, key, expected string) {
	t.Helper()

	values, ok := r.Headers[http.CanonicalHeaderKey(key)]
	if !ok {
		t.Errorf("request does not have header %q", key)
		return
	}
	for _, v := range values {
		if v == expected {
			return
		}
	}
	t.Errorf("header %q value mismatch\nexpected: %q\nactual: %q", key, expected, values)
}

// AssertHeaderExists asserts that the request had the header (any value).
func (r *RequestLog) AssertHeaderExists(t testing.TB, key string) {
	t.Helper()

	if _, ok := r.Headers[http.CanonicalHeaderKey(key)]; !ok {
		t.Errorf("request does not have header %q", key)
	}
}

// AssertQueryParam asserts that the request had the query parameter with
// the expected value.
func (r *RequestLog) AssertQueryParam(t testing.TB, key, expected string) {
	t.Helper()

	params, _ := url.ParseQuery(r.QueryString)
	values, ok := params[key]
	if !ok {
		t.Errorf("request does not have query parameter %q", key)
		return
	}
	if values[0] != expected {
		t.Errorf("query parameter %q value mismatch\nexpected: %q\nactual: %q", key, expected, values[0])
	}
}

// AssertMethod asserts that the request used the expected HTTP method.
func (r *RequestLog) AssertMethod(t testing.TB, expected string) {
	t.Helper()

	if !strings.EqualFold(r.Method, expected) {
		t.Errorf("request method mismatch\nexpected: %q\nactual: %q", expected, r.Method)
	}
}

// AssertPath asserts that the request path matches, {name} segments
// matching anything.
func (r *RequestLog) AssertPath(t testing.TB, expected string) {
	t.Helper()

	if !matchesPath(r.Path, expected) {
		t.Errorf("request path mismatch\nexpected: %q\nactual: %q", expected, r.Path)
	}
}

// JSONField extracts a value from the JSON request body. field is a
// JSONPath expression; a leading "$." may be omitted ("user.name").
// Returns nil if the body is not JSON or nothing matches.
func (r *RequestLog) JSONField(field string) any {
	data, err := oj.ParseString(r.Body)
	if err != nil {
		return nil
	}
	if !strings.HasPrefix(field, "$") {
		field = "$." + field
	}
	x, err := jp.ParseString(field)
	if err != nil {
		return nil
	}
	results := x.Get(data)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// AssertJSONField asserts that a JSON field in the request body has the
// expected value. Numbers decode as int64 or float64.
func (r *RequestLog) AssertJSONField(t testing.TB, field string, expected any) {
	t.Helper()

	actual := r.JSONField(field)
	if actual == nil {
		t.Errorf("JSON field %q not found in request body: %s", field, r.Body)
		return
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("JSON field %q mismatch\nexpected: %v (%T)\nactual: %v (%T)",
			field, expected, expected, actual, actual)
	}
}
