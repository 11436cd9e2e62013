package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	stdtesting "testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockwire/pkg/engine"
)

// recorder captures failures reported through testing.TB.
type recorder struct {
	stdtesting.TB
	errors []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func readBody(t *stdtesting.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestScope_Client(t *stdtesting.T) {
	s := New(t)
	s.Get("http://api.test/users/1").Reply(200).JSON(map[string]any{"id": 1})

	resp, err := s.Client().Get("http://api.test/users/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id": 1}`, readBody(t, resp))

	s.AssertCalled(t, "GET", "/users/{id}")
	s.AssertCalledTimes(t, "GET", "/users/1", 1)
	s.AssertNotCalled(t, "DELETE", "/users/1")
	s.AssertDone(t)
}

func TestScope_ClientNoMatch(t *stdtesting.T) {
	s := New(t)

	_, err := s.Client().Get("http://api.test/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoMatch)

	reqs := s.Requests()
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].Matched())
}

func TestScope_Intercept(t *stdtesting.T) {
	original := http.DefaultTransport

	t.Run("intercepted", func(t *stdtesting.T) {
		s := New(t).Intercept().Intercept()
		s.Post("http://api.test/items").Reply(201).Body("created")

		resp, err := http.Post("http://api.test/items", "application/json",
			strings.NewReader(`{"name": "x", "tags": ["a"]}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "created", readBody(t, resp))

		req := s.Requests()[0]
		req.AssertMethod(t, "post")
		req.AssertPath(t, "/items")
		req.AssertHeader(t, "content-type", "application/json")
		req.AssertJSONBody(t, map[string]any{"tags": []string{"a"}, "name": "x"})
		req.AssertJSONField(t, "name", "x")
		req.AssertJSONField(t, "$.tags[0]", "a")
	})

	assert.Same(t, original, http.DefaultTransport)
}

func TestScope_Activate(t *stdtesting.T) {
	before := engine.Default()

	var active *engine.Engine
	t.Run("active", func(t *stdtesting.T) {
		s := New(t).Activate()
		active = s.Engine
		assert.Same(t, s.Engine, engine.Default())
	})

	assert.NotSame(t, active, engine.Default())
	assert.Same(t, before, engine.Default())
}

func TestScope_Start(t *stdtesting.T) {
	s := New(t)
	url := s.Start()
	require.True(t, strings.HasPrefix(url, "http://"))
	assert.Equal(t, url, s.URL())
	assert.Equal(t, url, s.Start())

	s.Get(url + "/hello").Param("lang", "en").Reply(200).Body("hi")

	resp, err := http.Get(url + "/hello?lang=en")
	require.NoError(t, err)
	assert.Equal(t, "hi", readBody(t, resp))

	resp, err = http.Get(url + "/hello?lang=en")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	readBody(t, resp)

	reqs := s.Requests()
	require.Len(t, reqs, 2)
	reqs[1].AssertQueryParam(t, "lang", "en")
	s.AssertCalledTimes(t, "GET", "/hello", 2)
}

func TestScope_PendingMocks(t *stdtesting.T) {
	tests := []struct {
		name     string
		allow    bool
		wantFail bool
	}{
		{"pending fails", false, true},
		{"allowed", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *stdtesting.T) {
			s := New(t).AllowPending()
			s.Get("http://api.test/never").Named("never")
			s.allowPending = tt.allow

			rec := &recorder{}
			s.verify(rec)
			if !tt.wantFail {
				assert.Empty(t, rec.errors)
				return
			}
			require.Len(t, rec.errors, 1)
			assert.Contains(t, rec.errors[0], "1 mock(s) still pending")
			assert.Contains(t, rec.errors[0], `name="never"`)

			// Leave the outer test passing.
			s.allowPending = true
		})
	}
}

func TestScope_Load(t *stdtesting.T) {
	path := filepath.Join(t.TempDir(), "mocks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mocks:
  - url: http://api.test/status
    reply: 503
    response_body: down
`), 0o600))

	s := New(t).Load(path)
	resp, err := s.Client().Get("http://api.test/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "down", readBody(t, resp))
}

func TestScope_SimulatedError(t *stdtesting.T) {
	s := New(t)
	s.Get("http://api.test/flaky").Error(errors.New("connection reset"))

	_, err := s.Client().Get("http://api.test/flaky")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMatchesPath(t *stdtesting.T) {
	tests := []struct {
		actual, expected string
		want             bool
	}{
		{"/users/1", "/users/1", true},
		{"/users/1", "/users/{id}", true},
		{"/users/1/posts", "/users/{id}", false},
		{"/users/1", "/accounts/{id}", false},
	}
	for _, tt := range tests {
		t.Run(tt.expected+" "+tt.actual, func(t *stdtesting.T) {
			assert.Equal(t, tt.want, matchesPath(tt.actual, tt.expected))
		})
	}
}
