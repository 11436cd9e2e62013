package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockwire/pkg/request"
)

func xmlRequest(body string) *request.Request {
	return request.MustNew("POST", "http://x.com",
		request.WithHeader("Content-Type", "application/xml"),
		request.WithBody(body),
	)
}

func TestXMLMatcher(t *testing.T) {
	tests := []struct {
		name   string
		expect string
		body   string
		want   bool
	}{
		{"identical", `<a><b>1</b></a>`, `<a><b>1</b></a>`, true},
		{"attribute order", `<a x="1" y="2"/>`, `<a y="2" x="1"/>`, true},
		{"formatting whitespace", "<a>\n  <b>1</b>\n</a>", `<a><b>1</b></a>`, true},
		{"sibling order of different tags", `<a><b>1</b><c>2</c></a>`, `<a><c>2</c><b>1</b></a>`, true},
		{"repeated children keep order", `<a><b>1</b><b>2</b></a>`, `<a><b>2</b><b>1</b></a>`, false},
		{"text differs", `<a><b>1</b></a>`, `<a><b>2</b></a>`, false},
		{"attribute differs", `<a x="1"/>`, `<a x="2"/>`, false},
		{"body not XML", `<a/>`, `{"a":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewXML(tt.expect)
			require.NoError(t, err)
			got, err := m.Match(xmlRequest(tt.body))
			assert.Equal(t, tt.want, got)
			if !got {
				assert.Error(t, err)
			}
		})
	}
}

func TestXMLMatcher_Invalid(t *testing.T) {
	_, err := NewXML("")
	assert.ErrorIs(t, err, ErrInvalidExpectation)
	_, err = NewXML("not xml at all")
	assert.ErrorIs(t, err, ErrInvalidExpectation)
	_, err = NewXML(42)
	assert.ErrorIs(t, err, ErrInvalidExpectation)
}

func TestXPathMatcher(t *testing.T) {
	body := `<order id="7"><item sku="a1">Pen</item><item sku="b2">Ink</item></order>`

	tests := []struct {
		name     string
		path     string
		expected any
		want     bool
	}{
		{"element text", "/order/item", "Ink", true},
		{"element text differs", "/order/item", "Paper", false},
		{"attribute", "/order/item/@sku", "b2", true},
		{"root attribute", "/@id", "7", true},
		{"descendant search", "//item", "re/^P/", true},
		{"existence only", "//item", nil, true},
		{"nothing selected", "//missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewXPath(tt.path, tt.expected)
			require.NoError(t, err)
			got, _ := m.Match(xmlRequest(body))
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewXPath("", nil)
	assert.ErrorIs(t, err, ErrInvalidExpectation)
}
