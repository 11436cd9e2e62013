package mock

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/mockwire/internal/id"
	"github.com/getmockd/mockwire/internal/matching"
	"github.com/getmockd/mockwire/pkg/request"
)

// FilterFunc decides whether a mock is considered for a request. Returning
// false skips the mock without reporting a mismatch.
type FilterFunc func(req *request.Request, m *Mock) bool

// MapperFunc replaces the request before matchers run. It must not return
// nil.
type MapperFunc func(req *request.Request, m *Mock) *request.Request

// CallbackFunc is invoked after a successful match.
type CallbackFunc func(req *request.Request, m *Mock)

// Mock is one expectation: a set of matchers that must all accept a
// request, the response to reply with, and how many times it may be used.
//
// Mocks are configured with chained calls:
//
//	m := mock.New().Method("POST").URL("http://api.example.com/users").
//		JSON(map[string]any{"name": "ann"}).Times(2)
//	m.Reply(201).JSON(map[string]any{"id": 1})
//
// Configuration errors do not interrupt the chain; the first one is kept
// and returned by Err.
type Mock struct {
	// ID uniquely identifies the mock.
	ID string

	mu        sync.Mutex
	name      string
	matchers  []matching.Matcher
	response  *Response
	times     int
	persist   bool
	matches   int
	calls     []*request.Request
	simErr    error
	delay     time.Duration
	filters   []FilterFunc
	mappers   []MapperFunc
	callbacks []CallbackFunc
	err       error
}

// New creates a mock that may be matched once.
func New() *Mock {
	return &Mock{
		ID:    id.UUID(),
		times: 1,
	}
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (m *Mock) setError(err error) {
	if m.err == nil {
		m.err = err
	}
}

// Err returns the first configuration error, including errors from the
// response.
func (m *Mock) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.response != nil {
		return m.response.Err()
	}
	return nil
}

func (m *Mock) add(matcher matching.Matcher, err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.setError(err)
		return m
	}
	m.matchers = append(m.matchers, matcher)
	return m
}

// Named sets a human readable name used in failure reports.
func (m *Mock) Named(name string) *Mock {
	m.mu.Lock()
	m.name = name
	m.mu.Unlock()
	return m
}

// Name returns the mock name.
func (m *Mock) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// URL matches the request URL. u may be a URL string, a regex literal
// ("re/.../") or a *regexp.Regexp.
func (m *Mock) URL(u any, opts ...MatchOption) *Mock {
	return m.add(matching.NewURL(u, opts...))
}

// Method matches the request method. "*" matches any method.
func (m *Mock) Method(method string, opts ...MatchOption) *Mock {
	return m.add(matching.NewMethod(method, opts...))
}

// Path matches the URL path.
func (m *Mock) Path(path any, opts ...MatchOption) *Mock {
	return m.add(matching.NewPath(path, opts...))
}

// Header matches a single request header value.
func (m *Mock) Header(name string, value any, opts ...MatchOption) *Mock {
	return m.add(matching.NewHeaders(map[string]any{name: value}, opts...))
}

// Headers matches several request headers. See matching.NewHeaders for
// the accepted types.
func (m *Mock) Headers(headers any, opts ...MatchOption) *Mock {
	return m.add(matching.NewHeaders(headers, opts...))
}

// HeaderPresent requires a header to be sent with a value.
func (m *Mock) HeaderPresent(name string, opts ...MatchOption) *Mock {
	return m.add(matching.NewHeaderExists(name, opts...))
}

// HeadersPresent requires every named header to be sent with a value.
func (m *Mock) HeadersPresent(names ...string) *Mock {
	for _, name := range names {
		m.HeaderPresent(name)
	}
	return m
}

// Type matches the request Content-Type. Short aliases such as "json" or
// "form" are expanded.
func (m *Mock) Type(name string) *Mock {
	return m.Header("Content-Type", ContentType(name))
}

// Content is an alias for Type.
func (m *Mock) Content(name string) *Mock {
	return m.Type(name)
}

// Param matches a single query parameter value.
func (m *Mock) Param(name string, value any, opts ...MatchOption) *Mock {
	return m.add(matching.NewQuery(map[string]any{name: value}, opts...))
}

// Params matches several query parameters.
func (m *Mock) Params(params any, opts ...MatchOption) *Mock {
	return m.add(matching.NewQuery(params, opts...))
}

// ParamExists requires a query parameter to be present. Pass AllowEmpty to
// accept "?name" without a value.
func (m *Mock) ParamExists(name string, opts ...MatchOption) *Mock {
	return m.add(matching.NewQueryExists(name, opts...))
}

// Body matches the request body. Pass Binary with a []byte body to compare
// raw bytes.
func (m *Mock) Body(body any, opts ...MatchOption) *Mock {
	return m.add(matching.NewBody(body, opts...))
}

// JSON matches the request body as JSON, ignoring object key order.
func (m *Mock) JSON(doc any, opts ...MatchOption) *Mock {
	return m.add(matching.NewJSON(doc, opts...))
}

// JSONSchema validates the request body against a JSON Schema.
func (m *Mock) JSONSchema(schema any, opts ...MatchOption) *Mock {
	return m.add(matching.NewJSONSchema(schema, opts...))
}

// XML matches the request body as XML, ignoring attribute order and
// formatting.
func (m *Mock) XML(doc any, opts ...MatchOption) *Mock {
	return m.add(matching.NewXML(doc, opts...))
}

// JSONPath matches a value selected from the JSON body.
func (m *Mock) JSONPath(path string, expected any, opts ...MatchOption) *Mock {
	return m.add(matching.NewJSONPath(path, expected, opts...))
}

// XPath matches a value selected from the XML body.
func (m *Mock) XPath(path string, expected any, opts ...MatchOption) *Mock {
	return m.add(matching.NewXPath(path, expected, opts...))
}

// Expr matches requests for which an expr-lang expression is true.
func (m *Mock) Expr(source string, opts ...MatchOption) *Mock {
	return m.add(matching.NewExpr(source, opts...))
}

// MatchFunc matches with a custom predicate reported under name.
func (m *Mock) MatchFunc(name string, fn func(*request.Request) (bool, error), opts ...MatchOption) *Mock {
	return m.add(matching.NewFunc(name, fn, opts...))
}

// Use adds custom matchers.
func (m *Mock) Use(matchers ...Matcher) *Mock {
	for _, matcher := range matchers {
		if matcher == nil {
			m.add(nil, fmt.Errorf("%w: nil matcher", ErrInvalidExpectation))
			continue
		}
		m.add(matcher, nil)
	}
	return m
}

// Times sets how many requests the mock may match.
func (m *Mock) Times(n int) *Mock {
	m.mu.Lock()
	m.times = n
	m.mu.Unlock()
	return m
}

// Persist lets the mock match any number of requests.
func (m *Mock) Persist() *Mock {
	return m.SetPersist(true)
}

// SetPersist enables or disables persistence.
func (m *Mock) SetPersist(on bool) *Mock {
	m.mu.Lock()
	m.persist = on
	m.mu.Unlock()
	return m
}

// Delay holds the response for d. The delay is applied by the transport
// and is cut short when the request context is cancelled.
func (m *Mock) Delay(d time.Duration) *Mock {
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
	return m
}

// Error makes the mock fail matching requests with err (an error or a
// message string) after the match has been recorded.
func (m *Mock) Error(err any) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch e := err.(type) {
	case nil:
		m.simErr = nil
	case error:
		m.simErr = e
	case string:
		m.simErr = errors.New(e)
	default:
		m.setError(&InvalidArgumentError{Key: "error", Err: fmt.Errorf("unsupported type %T", err)})
	}
	return m
}

// Filter adds filters that can exclude the mock from matching.
func (m *Mock) Filter(filters ...FilterFunc) *Mock {
	m.mu.Lock()
	m.filters = append(m.filters, filters...)
	m.mu.Unlock()
	return m
}

// Map adds request mappers run before the matchers.
func (m *Mock) Map(mappers ...MapperFunc) *Mock {
	m.mu.Lock()
	m.mappers = append(m.mappers, mappers...)
	m.mu.Unlock()
	return m
}

// Callback adds functions invoked after a successful match.
func (m *Mock) Callback(callbacks ...CallbackFunc) *Mock {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, callbacks...)
	m.mu.Unlock()
	return m
}

// Reply sets the response status, creating the response if needed, and
// returns the response for further configuration.
func (m *Mock) Reply(status int) *Response {
	return m.Response().Status(status)
}

// NewReply replaces the response with a fresh one.
func (m *Mock) NewReply(status int) *Response {
	r := NewResponse()
	r.mock = m
	m.mu.Lock()
	m.response = r
	m.mu.Unlock()
	return r.Status(status)
}

// Response returns the mock response, creating a 200 response if none was
// configured.
func (m *Mock) Response() *Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.response == nil {
		m.response = NewResponse()
		m.response.mock = m
	}
	return m.response
}

// Matchers returns the configured matchers.
func (m *Mock) Matchers() []Matcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Matcher(nil), m.matchers...)
}

// GetDelay returns the configured response delay.
func (m *Mock) GetDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delay
}

// Matches returns how many requests the mock has matched.
func (m *Mock) Matches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches
}

// Remaining returns how many more requests the mock may match. It is not
// meaningful for persistent mocks.
func (m *Mock) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.times
}

// IsPersistent reports whether the mock never expires.
func (m *Mock) IsPersistent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist
}

// Calls returns the requests the mock matched, oldest first.
func (m *Mock) Calls() []*request.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*request.Request(nil), m.calls...)
}

// IsDone reports whether the mock has been used as expected: a persistent
// mock once it matched at least once, any other mock once its uses are
// exhausted.
func (m *Mock) IsDone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.persist && m.matches > 0) || m.times <= 0
}

// IsExpired reports whether the mock can no longer match.
func (m *Mock) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired()
}

func (m *Mock) expired() bool {
	return m.times <= 0 && !m.persist
}

// Evaluation is the detailed outcome of matching a request against a mock.
type Evaluation struct {
	Matched bool
	// Expired is set when the mock had no uses left.
	Expired bool
	// Filtered is set when a filter excluded the mock.
	Filtered bool
	// Fields holds one result per matcher when matchers ran.
	Fields []matching.FieldResult
	// Reasons explains a failed match, one line per failing matcher.
	Reasons []string
}

// Match reports whether req satisfies every matcher. On failure the
// returned reasons explain which matchers rejected the request. A
// non-nil error is either a mapper failure or, for mocks configured with
// Error, a *SimulatedError returned after the match was recorded.
func (m *Mock) Match(req *request.Request) (bool, []string, error) {
	ev, err := m.Evaluate(req)
	if ev == nil {
		return false, nil, err
	}
	return ev.Matched, ev.Reasons, err
}

// Evaluate is Match with the per-matcher breakdown.
func (m *Mock) Evaluate(req *request.Request) (*Evaluation, error) {
	m.mu.Lock()
	if m.expired() {
		m.mu.Unlock()
		return &Evaluation{Expired: true, Reasons: []string{"mock has expired: " + m.describe()}}, nil
	}
	filters := m.filters
	mappers := m.mappers
	matchers := m.matchers
	m.mu.Unlock()

	for _, filter := range filters {
		if !filter(req, m) {
			return &Evaluation{Filtered: true}, nil
		}
	}

	for _, mapper := range mappers {
		req = mapper(req, m)
		if req == nil {
			return nil, ErrNilRequest
		}
	}

	fields := matching.Breakdown(matchers, req)
	if !matching.AllMatched(fields) {
		return &Evaluation{Fields: fields, Reasons: matching.Explanations(fields)}, nil
	}

	m.mu.Lock()
	// Another request may have used the last match while matchers ran.
	if m.expired() {
		m.mu.Unlock()
		return &Evaluation{Expired: true, Fields: fields, Reasons: []string{"mock has expired: " + m.describe()}}, nil
	}
	m.calls = append(m.calls, req)
	m.matches++
	if !m.persist {
		m.times--
	}
	simErr := m.simErr
	callbacks := m.callbacks
	m.mu.Unlock()

	ev := &Evaluation{Matched: true, Fields: fields}
	if simErr != nil {
		return ev, &SimulatedError{Mock: m, Err: simErr}
	}
	for _, cb := range callbacks {
		cb(req, m)
	}
	return ev, nil
}

// String describes the mock for failure reports.
func (m *Mock) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.describe()
}

// describe is String for callers holding m.mu.
func (m *Mock) describe() string {
	var b strings.Builder
	b.WriteString("Mock(")
	if m.name != "" {
		fmt.Fprintf(&b, "name=%q, ", m.name)
	}
	b.WriteString("matchers=[")
	for i, matcher := range m.matchers {
		if i > 0 {
			b.WriteString(", ")
		}
		if s, ok := matcher.(fmt.Stringer); ok {
			b.WriteString(s.String())
		} else {
			b.WriteString(matcher.Name())
		}
	}
	b.WriteString("]")
	if m.persist {
		b.WriteString(", persist")
	} else {
		fmt.Fprintf(&b, ", times=%d", m.times)
	}
	b.WriteString(")")
	return b.String()
}

// ContentType expands a MIME alias. Unknown names are returned unchanged.
func ContentType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(name)]; ok {
		return t
	}
	return name
}

var mimeTypes = map[string]string{
	"text":       "text/plain",
	"html":       "text/html",
	"json":       "application/json",
	"xml":        "application/xml",
	"urlencoded": "application/x-www-form-urlencoded",
	"form":       "application/x-www-form-urlencoded",
	"form-data":  "application/x-www-form-urlencoded",
}

// For returns a mock matching method and url. An empty method matches any
// method.
func For(method string, url any) *Mock {
	m := New()
	if method != "" {
		m.Method(method)
	}
	if url != nil {
		m.URL(url)
	}
	return m
}
