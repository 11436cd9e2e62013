package matching

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/getmockd/mockwire/pkg/request"
)

// XPathMatcher selects nodes from an XML body and compares their text (or
// an attribute when the path ends in /@name). With no expected value the
// path only has to select something.
type XPathMatcher struct {
	base
	path   etree.Path
	attr   string
	expect Expectation
}

// NewXPath creates an XPath matcher. expected may be nil, a string, a regex
// literal or a *regexp.Regexp.
func NewXPath(path string, expected any, opts ...Option) (*XPathMatcher, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, invalidf("XPath cannot be empty")
	}
	elemPath, attr := path, ""
	if i := strings.LastIndex(path, "/@"); i >= 0 {
		elemPath, attr = path[:i], path[i+2:]
		if elemPath == "" {
			elemPath = "/*"
		}
	}
	compiled, err := etree.CompilePath(elemPath)
	if err != nil {
		return nil, invalidf("bad XPath %q: %v", path, err)
	}
	e, err := ParseExpectation(expected)
	if err != nil {
		return nil, err
	}
	desc := path
	if !e.IsZero() {
		desc = path + " = " + e.String()
	}
	o := buildOptions(opts)
	return &XPathMatcher{
		base:   base{name: "XPathMatcher", desc: desc, negate: o.negate},
		path:   compiled,
		attr:   attr,
		expect: e,
	}, nil
}

// Match implements Matcher.
func (m *XPathMatcher) Match(req *request.Request) (bool, error) {
	if len(req.Body) == 0 {
		return m.result(errors.New("XML body expected, but request has no body"))
	}
	doc, err := parseXML([]byte(req.Text()))
	if err != nil {
		return m.result(err)
	}
	values := m.selectValues(doc)
	if len(values) == 0 {
		return m.result(fmt.Errorf("XPath %s selected nothing", m.desc))
	}
	return m.result(compareAny(m.expect, "XPath value", values))
}

func (m *XPathMatcher) selectValues(doc *etree.Document) []string {
	var values []string
	for _, el := range doc.FindElementsPath(m.path) {
		if m.attr == "" {
			values = append(values, strings.TrimSpace(el.Text()))
			continue
		}
		if a := el.SelectAttr(m.attr); a != nil {
			values = append(values, a.Value)
		}
	}
	return values
}
