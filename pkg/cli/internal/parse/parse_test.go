package parse

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	tests := []struct {
		input      string
		delimiters []rune
		key, value string
		ok         bool
	}{
		{"Accept: text/html", nil, "Accept", " text/html", true},
		{"a=b", []rune{'=', ':'}, "a", "b", true},
		{"url: http://x.com", nil, "url", " http://x.com", true},
		{"novalue", nil, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, ok := KeyValue(tt.input, tt.delimiters...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestHeaders(t *testing.T) {
	h, err := Headers([]string{"accept: application/json", "X-Tag: a", "x-tag:b"})
	require.NoError(t, err)
	assert.Equal(t, http.Header{
		"Accept": {"application/json"},
		"X-Tag":  {"a", "b"},
	}, h)

	_, err = Headers([]string{"broken"})
	assert.ErrorContains(t, err, `invalid header "broken"`)

	_, err = Headers([]string{": value"})
	assert.Error(t, err)
}

func TestSplitTrim(t *testing.T) {
	assert.Nil(t, SplitTrim("", ","))
	assert.Equal(t, []string{"a.com", "b.com"}, SplitTrim(" a.com, ,b.com ", ","))
}
