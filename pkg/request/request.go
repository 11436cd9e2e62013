// Package request defines the normalized outgoing HTTP request that mocks
// are matched against.
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/getmockd/mockwire/internal/textutil"
)

// Request is an adapter-neutral view of an outgoing HTTP request.
type Request struct {
	// Method is always upper case.
	Method string
	// URL is absolute. A missing scheme defaults to http.
	URL *url.URL
	// Header holds the request headers in canonical form.
	Header http.Header
	// Body holds the raw request body.
	Body []byte
	// Extra carries adapter specific values through to mock callbacks.
	Extra map[string]any
}

// Option configures a Request built with New.
type Option func(*Request) error

// WithHeader adds a header value.
func WithHeader(name, value string) Option {
	return func(r *Request) error {
		r.Header.Add(name, value)
		return nil
	}
}

// WithHeaders sets headers from an http.Header or a map of strings.
func WithHeaders(headers any) Option {
	return func(r *Request) error {
		switch h := headers.(type) {
		case http.Header:
			for k, vs := range h {
				for _, v := range vs {
					r.Header.Add(k, v)
				}
			}
		case map[string]string:
			for k, v := range h {
				r.Header.Set(k, v)
			}
		case map[string][]string:
			for k, vs := range h {
				for _, v := range vs {
					r.Header.Add(k, v)
				}
			}
		case nil:
		default:
			return fmt.Errorf("unsupported headers type %T", headers)
		}
		return nil
	}
}

// WithBody sets the body from a string or byte slice.
func WithBody(body any) Option {
	return func(r *Request) error {
		switch b := body.(type) {
		case string:
			r.Body = []byte(b)
		case []byte:
			r.Body = append([]byte(nil), b...)
		case nil:
			r.Body = nil
		default:
			return fmt.Errorf("unsupported body type %T", body)
		}
		return nil
	}
}

// WithExtra attaches an adapter specific value.
func WithExtra(key string, value any) Option {
	return func(r *Request) error {
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[key] = value
		return nil
	}
}

// New builds a Request from a method and URL.
func New(method, rawURL string, opts ...Option) (*Request, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	r := &Request{
		Method: strings.ToUpper(method),
		URL:    u,
		Header: make(http.Header),
	}
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNew is like New but panics on error. Intended for tests.
func MustNew(method, rawURL string, opts ...Option) *Request {
	r, err := New(method, rawURL, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// FromHTTP converts an *http.Request. The body is read fully and restored
// on req so the caller can still send it.
func FromHTTP(req *http.Request) (*Request, error) {
	if req == nil || req.URL == nil {
		return nil, errors.New("request has no URL")
	}
	u := *req.URL
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		u.Host = req.Host
	}

	r := &Request{
		Method: strings.ToUpper(req.Method),
		URL:    &u,
		Header: req.Header.Clone(),
	}
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if req.Host != "" && req.Host != u.Host && r.Header.Get("Host") == "" {
		r.Header.Set("Host", req.Host)
	}

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		r.Body = body
	}
	return r, nil
}

// ParseURL parses rawURL, defaulting the scheme to http.
func ParseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, errors.New("empty URL")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	return u, nil
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := &Request{
		Method: r.Method,
		Header: r.Header.Clone(),
	}
	if r.URL != nil {
		u := *r.URL
		if r.URL.User != nil {
			uu := *r.URL.User
			u.User = &uu
		}
		c.URL = &u
	}
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	if r.Extra != nil {
		c.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Query returns the query parameters. Parameters without a value are kept
// with an empty string.
func (r *Request) Query() url.Values {
	if r.URL == nil {
		return url.Values{}
	}
	// ParseQuery still returns the pairs it could decode on error.
	q, _ := url.ParseQuery(r.URL.RawQuery)
	return q
}

// Text decodes the body using the charset declared in Content-Type.
// Bodies without a declared charset, or with one that cannot be decoded,
// are returned as-is.
func (r *Request) Text() string {
	if len(r.Body) == 0 {
		return ""
	}
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return string(r.Body)
	}
	charset := params["charset"]
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return string(r.Body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(r.Body)
	}
	decoded, err := enc.NewDecoder().Bytes(r.Body)
	if err != nil {
		return string(r.Body)
	}
	return string(decoded)
}

// JSON decodes the body as JSON.
func (r *Request) JSON() (any, error) {
	if len(r.Body) == 0 {
		return nil, errors.New("empty body")
	}
	var v any
	if err := json.Unmarshal([]byte(r.Text()), &v); err != nil {
		return nil, fmt.Errorf("body is not valid JSON: %w", err)
	}
	return v, nil
}

// String renders the request for failure messages.
func (r *Request) String() string {
	var b strings.Builder
	b.WriteString("=> Request\n")
	fmt.Fprintf(&b, "Method: %s\n", r.Method)
	if r.URL != nil {
		fmt.Fprintf(&b, "URL: %s\n", r.URL.String())
	}
	if len(r.Header) > 0 {
		b.WriteString("Headers:\n")
		names := make([]string, 0, len(r.Header))
		for k := range r.Header {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(&b, "  %s: %s\n", k, strings.Join(r.Header[k], ", "))
		}
	}
	if len(r.Body) > 0 {
		fmt.Fprintf(&b, "Body: %s\n", textutil.TruncateBody(r.Text(), 0))
	}
	return b.String()
}
