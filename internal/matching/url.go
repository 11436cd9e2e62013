package matching

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/getmockd/mockwire/pkg/request"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// URLMatcher compares the request URL. A pattern expectation is searched in
// the full URL; a literal is parsed and compared part by part, delegating
// path and query to PathMatcher and QueryMatcher when present.
type URLMatcher struct {
	base
	pattern *Expectation
	scheme  string
	host    string
	port    string
	path    *PathMatcher
	query   *QueryMatcher
}

// NewURL creates a URL matcher from a URL string, a regex literal or a
// *regexp.Regexp. A URL without a scheme defaults to http.
func NewURL(u any, opts ...Option) (*URLMatcher, error) {
	e, err := ParseExpectation(u)
	if err != nil {
		return nil, err
	}
	if e.IsZero() {
		return nil, invalidf("URL cannot be empty")
	}
	o := buildOptions(opts)
	// A negated URL string negates the whole matcher.
	if e.negate {
		o.negate = !o.negate
		e.negate = false
	}

	m := &URLMatcher{base: base{name: "URLMatcher", desc: e.String(), negate: o.negate}}
	if e.IsPattern() {
		m.pattern = &e
		return m, nil
	}

	parsed, err := request.ParseURL(e.literal)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	m.scheme = strings.ToLower(parsed.Scheme)
	m.host = NormalizeHost(parsed.Hostname())
	m.port = parsed.Port()
	if parsed.Path != "" {
		m.path, err = NewPath(parsed.Path)
		if err != nil {
			return nil, err
		}
	}
	if parsed.RawQuery != "" {
		m.query, err = NewQuery(parsed.RawQuery)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Match implements Matcher.
func (m *URLMatcher) Match(req *request.Request) (bool, error) {
	return m.result(m.compare(req))
}

func (m *URLMatcher) compare(req *request.Request) error {
	if req.URL == nil {
		return errors.New("request has no URL")
	}
	if m.pattern != nil {
		return m.pattern.CompareField("URL", req.URL.String())
	}

	if scheme := strings.ToLower(req.URL.Scheme); scheme != m.scheme {
		return &MismatchError{Subject: "scheme", Expected: m.scheme, Actual: scheme}
	}
	if host := NormalizeHost(req.URL.Hostname()); host != m.host {
		return &MismatchError{Subject: "host", Expected: m.host, Actual: host}
	}
	if m.port != "" {
		if port := effectivePort(req.URL); port != m.port {
			return &MismatchError{Subject: "port", Expected: m.port, Actual: port}
		}
	}
	if m.path != nil {
		if _, err := Match(m.path, req); err != nil {
			return err
		}
	}
	if m.query != nil {
		if _, err := Match(m.query, req); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeHost lower-cases a hostname and converts internationalized
// names to their ASCII form. Hosts that fail conversion are only
// lower-cased.
func NormalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	return defaultPorts[strings.ToLower(u.Scheme)]
}
