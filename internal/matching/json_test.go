package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockwire/pkg/request"
)

func jsonRequest(body string) *request.Request {
	return request.MustNew("POST", "http://x.com",
		request.WithHeader("Content-Type", "application/json"),
		request.WithBody(body),
	)
}

func TestJSONMatcher(t *testing.T) {
	tests := []struct {
		name   string
		expect any
		body   string
		want   bool
	}{
		{"key order is irrelevant", map[string]any{"a": 1, "b": 2}, `{"b":2,"a":1}`, true},
		{"value differs", map[string]any{"a": 1, "b": 2}, `{"a":1,"b":3}`, false},
		{"string document", `{"b": [1, 2], "a": null}`, `{"a":null,"b":[1,2]}`, true},
		{"array order matters", `[1,2]`, `[2,1]`, false},
		{"nested key order", `{"o":{"y":1,"x":2}}`, `{"o":{"x":2,"y":1}}`, true},
		{"body not JSON", `{"a":1}`, `a=1`, false},
		{"large integers differ", `{"id": 9007199254740993}`, `{"id": 9007199254740992}`, false},
		{"large integers equal", `{"id": 9007199254740993}`, `{"id": 9007199254740993}`, true},
		{"float and integer forms", `{"n": 1.0, "e": 1e2}`, `{"n": 1, "e": 100}`, true},
		{"trailing data", `{"a":1}`, `{"a":1} {"a":1}`, false},
		{"regex literal on text", "re/\"id\":\\s*7/", `{"id": 7}`, true},
		{"struct expectation", struct {
			Name string `json:"name"`
		}{"x"}, `{"name":"x"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewJSON(tt.expect)
			require.NoError(t, err)
			got, err := m.Match(jsonRequest(tt.body))
			assert.Equal(t, tt.want, got)
			if !got {
				assert.Error(t, err)
			}
		})
	}
}

func TestJSONMatcher_Invalid(t *testing.T) {
	_, err := NewJSON(nil)
	assert.ErrorIs(t, err, ErrInvalidExpectation)
	_, err = NewJSON("{not json")
	assert.ErrorIs(t, err, ErrInvalidExpectation)
	_, err = NewJSON(`{"a":1}]`)
	assert.ErrorIs(t, err, ErrInvalidExpectation)
	_, err = NewJSON(func() {})
	assert.ErrorIs(t, err, ErrInvalidExpectation)

	m, err := NewJSON(`{"a":1}`)
	require.NoError(t, err)
	ok, err := m.Match(request.MustNew("POST", "http://x.com"))
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "no body")
}

const userSchema = `{
  "title": "user",
  "type": "object",
  "required": ["name", "age"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0}
  }
}`

func TestJSONSchemaMatcher(t *testing.T) {
	m, err := NewJSONSchema(userSchema)
	require.NoError(t, err)
	assert.Equal(t, "JSONSchemaMatcher(user)", m.String())

	ok, err := m.Match(jsonRequest(`{"name":"ann","age":3}`))
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = m.Match(jsonRequest(`{"name":"ann","age":-1}`))
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "/age")

	ok, err = m.Match(jsonRequest(`{"name":"ann"}`))
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "schema validation failed")

	ok, _ = m.Match(jsonRequest(`not json`))
	assert.False(t, ok)

	fromMap, err := NewJSONSchema(map[string]any{"type": "array"})
	require.NoError(t, err)
	assert.Equal(t, "JSONSchemaMatcher(schema)", fromMap.String())
	ok, _ = fromMap.Match(jsonRequest(`[1]`))
	assert.True(t, ok)
}

func TestJSONSchemaMatcher_Invalid(t *testing.T) {
	_, err := NewJSONSchema("")
	assert.ErrorIs(t, err, ErrInvalidExpectation)
	_, err = NewJSONSchema(`{"type": 12}`)
	assert.ErrorIs(t, err, ErrInvalidExpectation)
	_, err = NewJSONSchema(nil)
	assert.ErrorIs(t, err, ErrInvalidExpectation)
}

func TestJSONPathMatcher(t *testing.T) {
	body := `{"user":{"name":"ann","age":30,"tags":["a","b"]},"items":[{"id":1},{"id":2}]}`

	tests := []struct {
		name     string
		path     string
		expected any
		want     bool
	}{
		{"string value", "$.user.name", "ann", true},
		{"string differs", "$.user.name", "bob", false},
		{"numeric coercion", "$.user.age", 30, true},
		{"wildcard any match", "$.items[*].id", 2, true},
		{"regex literal", "$.user.name", "re/^a/", true},
		{"exists", "$.user.tags", map[string]any{"exists": true}, true},
		{"not exists", "$.user.email", map[string]any{"exists": false}, true},
		{"exists but absent", "$.user.email", map[string]any{"exists": true}, false},
		{"structured value", "$.user.tags", []string{"a", "b"}, true},
		{"nothing selected", "$.missing", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewJSONPath(tt.path, tt.expected)
			require.NoError(t, err)
			got, _ := m.Match(jsonRequest(body))
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewJSONPath("$[", "x")
	assert.ErrorIs(t, err, ErrInvalidExpectation)
}
