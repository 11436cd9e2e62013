package testing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/mockwire/pkg/config"
	"github.com/getmockd/mockwire/pkg/engine"
	"github.com/getmockd/mockwire/pkg/requestlog"
)

// Scope is an engine bound to one test. Mocks are registered with the
// embedded engine's methods; when the test ends, Scope fails it if any
// mock is still pending and undoes Activate, Intercept and Start.
type Scope struct {
	*engine.Engine

	t            testing.TB
	mu           sync.Mutex
	allowPending bool
	intercepted  bool
	activated    bool
	httpSrv      *httptest.Server
}

// New creates a Scope with an isolated engine. Networking is disabled
// unless enabled with engine options or EnableNetwork.
func New(t testing.TB, opts ...engine.Option) *Scope {
	t.Helper()
	s := &Scope{
		Engine: engine.New(opts...),
		t:      t,
	}
	t.Cleanup(func() { s.verify(t) })
	return s
}

// AllowPending disables the pending mock check at cleanup.
func (s *Scope) AllowPending() *Scope {
	s.mu.Lock()
	s.allowPending = true
	s.mu.Unlock()
	return s
}

// verify reports mocks that were expected but never fully used.
func (s *Scope) verify(t testing.TB) {
	t.Helper()

	s.mu.Lock()
	allow := s.allowPending
	s.mu.Unlock()
	if allow {
		return
	}

	pending := s.PendingMocks()
	if len(pending) == 0 {
		return
	}
	var b strings.Builder
	for _, m := range pending {
		b.WriteString("\n  - ")
		b.WriteString(m.String())
	}
	t.Errorf("%d mock(s) still pending:%s", len(pending), b.String())
}

// Activate makes the scope's engine the process-wide default engine until
// the test ends.
func (s *Scope) Activate() *Scope {
	s.t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activated {
		return s
	}
	s.activated = true
	s.t.Cleanup(engine.Use(s.Engine))
	return s
}

// Intercept routes every request sent with http.DefaultTransport, and so
// with http.DefaultClient and http.Get, through the scope's engine until
// the test ends. Tests calling Intercept must not run in parallel.
func (s *Scope) Intercept() *Scope {
	s.t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intercepted {
		return s
	}
	s.intercepted = true

	original := http.DefaultTransport
	http.DefaultTransport = engine.NewTransport(s.Engine, original)
	s.t.Cleanup(func() {
		http.DefaultTransport = original
	})
	return s
}

// Start serves the scope's mocks over HTTP and returns the server's base
// URL. Register mocks for that URL after Start:
//
//	url := s.Start()
//	s.Get(url + "/users").Reply(200)
func (s *Scope) Start() string {
	s.t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv == nil {
		s.httpSrv = httptest.NewServer(engine.NewHandler(s.Engine))
		s.t.Cleanup(s.httpSrv.Close)
	}
	return s.httpSrv.URL
}

// URL returns the base URL of the server started by Start, or "".
func (s *Scope) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv == nil {
		return ""
	}
	return s.httpSrv.URL
}

// Load registers the definitions in the given files, failing the test on
// any error.
func (s *Scope) Load(paths ...string) *Scope {
	s.t.Helper()

	for _, path := range paths {
		f, err := config.Load(path)
		if err != nil {
			s.t.Fatalf("loading mock definitions: %v", err)
		}
		if err := f.Apply(s.Engine); err != nil {
			s.t.Fatalf("applying mock definitions: %v", err)
		}
	}
	return s
}

// Requests returns the requests the engine evaluated, newest first.
func (s *Scope) Requests() []RequestLog {
	entries := s.History(nil)
	result := make([]RequestLog, len(entries))
	for i, entry := range entries {
		result[i] = newRequestLog(entry)
	}
	return result
}

// AssertCalled asserts that an endpoint was called at least once.
func (s *Scope) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	if s.countCalls(method, path) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (s *Scope) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	count := s.countCalls(method, path)
	if count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (s *Scope) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	count := s.countCalls(method, path)
	if count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

// AssertDone asserts that no mock is pending.
func (s *Scope) AssertDone(t testing.TB) {
	t.Helper()
	s.verify(t)
}

// countCalls counts the evaluated requests for a method and path.
func (s *Scope) countCalls(method, path string) int {
	count := 0
	for _, entry := range s.History(&requestlog.Filter{Method: method}) {
		if matchesPath(entry.Path, path) {
			count++
		}
	}
	return count
}

// matchesPath checks if a request path matches the expected path pattern.
// A {name} segment matches any value.
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}

	for i, exp := range expectedParts {
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}
