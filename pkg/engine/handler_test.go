package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockwire/pkg/request"
)

func TestHandler_ServesMatchedMock(t *testing.T) {
	e := New()
	e.Get("re/\\/users\\/1$/").Reply(200).Header("X-Id", "1").JSON(map[string]any{"id": 1})
	srv := httptest.NewServer(NewHandler(e))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/users/1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Id"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"id": 1}`, string(body))
}

func TestHandler_NoMatch(t *testing.T) {
	e := New()
	e.Post("re/\\/users$/").Named("create users")
	srv := httptest.NewServer(NewHandler(e))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/users")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(NearMissHeader))

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "no_match", body.Error)
	require.Len(t, body.NearMisses, 1)
	assert.Equal(t, "create users", body.NearMisses[0].MockName)
}

func TestHandler_SimulatedError(t *testing.T) {
	e := New()
	e.Mock("re/.*/").Error("upstream down")

	rec := httptest.NewRecorder()
	NewHandler(e).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream down")
}

func TestHandler_FilteredIsNotFound(t *testing.T) {
	e := New()
	e.Mock("re/.*/")
	e.Filter(func(*request.Request) bool { return false })

	rec := httptest.NewRecorder()
	NewHandler(e).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "filtered")
}

func TestHandler_ConfigurationError(t *testing.T) {
	e := New()
	e.Mock("re/.*/").Reply(7)

	rec := httptest.NewRecorder()
	NewHandler(e).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_BodyTooLarge(t *testing.T) {
	e := New()
	e.Mock("re/.*/")

	big := bytes.Repeat([]byte("a"), MaxRequestBodySize+1)
	rec := httptest.NewRecorder()
	NewHandler(e).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_Chunked(t *testing.T) {
	e := New()
	e.Get("re/stream/").Reply(200).Chunked("a", "b", "c")
	srv := httptest.NewServer(NewHandler(e))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, []string{"chunked"}, resp.TransferEncoding)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "abc", string(body))
}

func TestHandler_Head(t *testing.T) {
	e := New()
	e.Head("re/.*/").Reply(200).Body("hidden")

	rec := httptest.NewRecorder()
	NewHandler(e).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "6", rec.Header().Get("Content-Length"))
	assert.Empty(t, strings.TrimSpace(rec.Body.String()))
}
