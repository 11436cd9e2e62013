package matching

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/getmockd/mockwire/internal/textutil"
	"github.com/getmockd/mockwire/pkg/request"
)

// XMLMatcher compares the request body with an XML document. Both sides are
// converted to a nested map form (attributes as "@name", mixed text as
// "#text", repeated children as lists) and compared canonically, so
// attribute order and formatting whitespace are irrelevant.
type XMLMatcher struct {
	base
	canonical string
}

// NewXML creates an XML matcher from a string or []byte document.
func NewXML(doc any, opts ...Option) (*XMLMatcher, error) {
	var data []byte
	switch d := doc.(type) {
	case string:
		data = []byte(d)
	case []byte:
		data = d
	default:
		return nil, invalidf("unsupported XML expectation type %T", doc)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, invalidf("XML document cannot be empty")
	}
	canonical, err := canonicalXML(data)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	o := buildOptions(opts)
	return &XMLMatcher{
		base:      base{name: "XMLMatcher", desc: textutil.Truncate(canonical, maxQuoted), negate: o.negate},
		canonical: canonical,
	}, nil
}

// Match implements Matcher.
func (m *XMLMatcher) Match(req *request.Request) (bool, error) {
	if len(req.Body) == 0 {
		return m.result(errors.New("XML body expected, but request has no body"))
	}
	actual, err := canonicalXML([]byte(req.Text()))
	if err != nil {
		return m.result(err)
	}
	if actual != m.canonical {
		return m.result(&MismatchError{Subject: "XML body", Expected: m.canonical, Actual: actual})
	}
	return m.result(nil)
}

func parseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, errors.New("invalid XML: no root element")
	}
	return doc, nil
}

func canonicalXML(data []byte) (string, error) {
	doc, err := parseXML(data)
	if err != nil {
		return "", err
	}
	root := doc.Root()
	return canonicalValue(map[string]any{root.FullTag(): elementValue(root)})
}

// elementValue converts an element into the map form described on
// XMLMatcher.
func elementValue(el *etree.Element) any {
	text := strings.TrimSpace(el.Text())
	children := el.ChildElements()
	if len(el.Attr) == 0 && len(children) == 0 {
		if text == "" {
			return nil
		}
		return text
	}

	out := make(map[string]any, len(el.Attr)+len(children)+1)
	for _, attr := range el.Attr {
		out["@"+attr.FullKey()] = attr.Value
	}
	for _, child := range children {
		tag := child.FullTag()
		v := elementValue(child)
		switch existing := out[tag].(type) {
		case nil:
			if _, seen := out[tag]; seen {
				out[tag] = []any{nil, v}
			} else {
				out[tag] = v
			}
		case []any:
			out[tag] = append(existing, v)
		default:
			out[tag] = []any{existing, v}
		}
	}
	if text != "" {
		out["#text"] = text
	}
	return out
}
