package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/getmockd/mockwire/pkg/request"
)

// Transport is an http.RoundTripper answering requests from an engine.
// Matched requests get the mock's response; filtered and pass-through
// requests are sent with Base.
type Transport struct {
	// Engine resolves requests. Nil means Default().
	Engine *Engine
	// Base sends filtered and pass-through requests. Nil means
	// http.DefaultTransport, which must then not be this Transport.
	Base http.RoundTripper
}

// NewTransport returns a Transport for e that falls back to base.
func NewTransport(e *Engine, base http.RoundTripper) *Transport {
	return &Transport{Engine: e, Base: base}
}

func (t *Transport) engine() *Engine {
	if t.Engine != nil {
		return t.Engine
	}
	return Default()
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper. The request body is read to
// match it and replaced with an equivalent reader.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	// A cancelled request must not consume a mock.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := request.FromHTTP(r)
	if err != nil {
		return nil, err
	}

	res, err := t.engine().Match(req)
	if err != nil {
		return nil, err
	}
	if !res.Matched() {
		return t.base().RoundTrip(r)
	}

	if err := sleep(ctx, res.Mock.GetDelay()); err != nil {
		return nil, err
	}
	return res.Response().HTTPResponse(r), nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client returns an *http.Client whose requests are answered by e.
// Unmatched requests allowed through use http.DefaultTransport.
func (e *Engine) Client() *http.Client {
	return &http.Client{Transport: &Transport{Engine: e}}
}
