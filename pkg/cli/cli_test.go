package cli

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockwire/pkg/engine"
	"github.com/getmockd/mockwire/pkg/logging"
	"github.com/getmockd/mockwire/pkg/request"
	"github.com/getmockd/mockwire/pkg/requestlog"
)

func writeDefinitions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mocks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLint(t *testing.T) {
	valid := writeDefinitions(t, "- url: http://x.com/a\n- url: http://x.com/b\n")
	invalid := writeDefinitions(t, "- url: http://x.com\n  bogus: 1\n- url: re/(/\n")

	tests := []struct {
		name       string
		arg        string
		valid      bool
		mocks      int
		errorCount int
		contains   string
	}{
		{"valid", valid, true, 2, 0, ""},
		{"invalid", invalid, false, 2, 2, "unsupported argument: bogus"},
		{"missing", filepath.Join(t.TempDir(), "nope.yaml"), false, 0, 1, "file not found"},
		{"empty glob", filepath.Join(t.TempDir(), "*.yaml"), false, 0, 1, "no files match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := lint(tt.arg)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.mocks, result.Mocks)
			require.Len(t, result.Errors, tt.errorCount)
			if tt.contains != "" {
				assert.Contains(t, result.Errors[0], tt.contains)
			}
		})
	}
}

func TestBuildRequest(t *testing.T) {
	bodyFile := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(bodyFile, []byte(`{"from": "file"}`), 0o600))

	req, err := buildRequest(&matchFlags{
		method:  "post",
		headers: []string{"Content-Type: application/json"},
		data:    "@" + bodyFile,
	}, "http://x.com/users")
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, `{"from": "file"}`, string(req.Body))

	req, err = buildRequest(&matchFlags{method: "GET", data: "inline"}, "x.com")
	require.NoError(t, err)
	assert.Equal(t, "inline", string(req.Body))
	assert.Equal(t, "http", req.URL.Scheme)

	_, err = buildRequest(&matchFlags{method: "GET", headers: []string{"broken"}}, "http://x.com")
	assert.Error(t, err)
}

func TestDescribeMatch(t *testing.T) {
	e := engine.New()
	e.Get("http://x.com/ok").Reply(201).JSON(map[string]any{"ok": true})
	e.Get("http://x.com/fail").Error("timeout")

	res, err := e.Match(request.MustNew("GET", "http://x.com/ok"))
	result := describeMatch(res, err)
	assert.Equal(t, requestlog.OutcomeMatched, result.Outcome)
	assert.Equal(t, 201, result.Status)
	assert.JSONEq(t, `{"ok": true}`, result.Body)
	assert.Empty(t, result.Error)

	res, err = e.Match(request.MustNew("GET", "http://x.com/fail"))
	result = describeMatch(res, err)
	assert.Equal(t, requestlog.OutcomeMatched, result.Outcome)
	assert.Zero(t, result.Status)
	assert.Equal(t, "simulated error: timeout", result.Error)

	res, err = e.Match(request.MustNew("GET", "http://y.com"))
	result = describeMatch(res, err)
	assert.Equal(t, requestlog.OutcomeUnmatched, result.Outcome)
	assert.Contains(t, result.Error, "cannot match any mock")

	result = describeMatch(nil, errors.New("boom"))
	assert.Equal(t, requestlog.OutcomeError, result.Outcome)
}

func TestServe(t *testing.T) {
	path := writeDefinitions(t, `
mocks:
  - path: /ping
    persist: true
    reply: 200
    response_body: pong
`)
	e, err := loadEngine([]string{path})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, logging.Nop(), e, &http.Server{}, ln, time.Second)
	}()

	resp, err := http.Get(base + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))

	resp, err = http.Get(base + "/missing")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "no_match")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
	assert.Equal(t, 2, e.HistoryStore().Count())
}

func TestNewLogger_File(t *testing.T) {
	logFile = filepath.Join(t.TempDir(), "mockwire.log")
	logLevel = "info"
	logFormat = "text"
	t.Cleanup(func() { logFile, logLevel, logFormat = "", "warn", "text" })

	var console strings.Builder
	log, closeLog, err := newLogger(&console)
	require.NoError(t, err)
	log.Info("mock server started", "mocks", 2)
	log.Debug("hidden")
	closeLog()

	assert.Contains(t, console.String(), "mock server started")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"mock server started"`)
	assert.Contains(t, string(data), `"mocks":2`)
}
