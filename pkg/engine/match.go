package engine

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/getmockd/mockwire/internal/matching"
	"github.com/getmockd/mockwire/internal/textutil"
	"github.com/getmockd/mockwire/pkg/mock"
	"github.com/getmockd/mockwire/pkg/request"
	"github.com/getmockd/mockwire/pkg/requestlog"
)

// Outcome says how a request was resolved without error.
type Outcome int

const (
	// OutcomeMatched means a mock accepted the request.
	OutcomeMatched Outcome = iota
	// OutcomeFiltered means an engine filter excluded the request; callers
	// treat it like a pass-through.
	OutcomeFiltered
	// OutcomePassthrough means no mock matched and the request may be sent
	// to the real network.
	OutcomePassthrough
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return requestlog.OutcomeMatched
	case OutcomeFiltered:
		return requestlog.OutcomeFiltered
	case OutcomePassthrough:
		return requestlog.OutcomePassthrough
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the outcome of Engine.Match.
type Result struct {
	Outcome Outcome
	// Mock is the matched mock, set for OutcomeMatched.
	Mock *mock.Mock
	// Request is the request after engine mappers ran.
	Request *request.Request
}

// Matched reports whether a mock matched.
func (r *Result) Matched() bool {
	return r != nil && r.Outcome == OutcomeMatched
}

// Response returns the matched mock's response, or nil.
func (r *Result) Response() *mock.Response {
	if !r.Matched() {
		return nil
	}
	return r.Mock.Response()
}

// Match resolves req against the registered mocks.
//
// It returns a Result for matched, filtered and pass-through requests. The
// error is a *NoMatchError when nothing matched and networking is not
// allowed, a *mock.SimulatedError (alongside the matched Result) when the
// mock is configured to fail, or a configuration error.
func (e *Engine) Match(req *request.Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("engine: nil request")
	}
	start := time.Now()

	e.mu.RLock()
	filters := e.filters
	mappers := e.mappers
	mocks := slices.Clone(e.mocks)
	log := e.log
	e.mu.RUnlock()

	for _, filter := range filters {
		if !filter(req) {
			log.Debug("request filtered", "method", req.Method, "url", req.URL)
			e.record(start, req, requestlog.OutcomeFiltered, nil, nil, nil)
			return &Result{Outcome: OutcomeFiltered, Request: req}, nil
		}
	}

	for _, mapper := range mappers {
		req = mapper(req)
		if req == nil {
			return nil, mock.ErrNilRequest
		}
	}

	misses := make([]Miss, 0, len(mocks))
	for _, m := range mocks {
		if err := m.Err(); err != nil {
			err = fmt.Errorf("mock %s: %w", mockLabel(m), err)
			e.record(start, req, requestlog.OutcomeError, nil, nil, err)
			return nil, err
		}

		ev, err := m.Evaluate(req.Clone())
		if ev != nil && ev.Matched {
			log.Debug("mock matched", "id", m.ID, "name", m.Name(), "method", req.Method, "url", req.URL)
			res := &Result{Outcome: OutcomeMatched, Mock: m, Request: req}
			e.record(start, req, requestlog.OutcomeMatched, m, nil, err)
			return res, err
		}
		if err != nil {
			e.record(start, req, requestlog.OutcomeError, nil, nil, err)
			return nil, err
		}

		miss := Miss{
			Mock:            m,
			Reasons:         ev.Reasons,
			Filtered:        ev.Filtered,
			Expired:         ev.Expired,
			MatchPercentage: matching.MatchPercentage(ev.Fields),
		}
		if len(ev.Fields) > 0 {
			miss.Summary = matching.GenerateReason(ev.Fields)
		}
		log.Debug("mock rejected request", "id", m.ID, "reasons", ev.Reasons, "filtered", ev.Filtered)
		misses = append(misses, miss)
	}

	allowed, err := e.networkAllowed(req)
	if err != nil {
		e.record(start, req, requestlog.OutcomeError, nil, misses, err)
		return nil, err
	}
	if allowed {
		e.mu.Lock()
		e.unmatched = append(e.unmatched, req)
		e.mu.Unlock()
		log.Debug("request passed through to network", "method", req.Method, "url", req.URL)
		e.record(start, req, requestlog.OutcomePassthrough, nil, misses, nil)
		return &Result{Outcome: OutcomePassthrough, Request: req}, nil
	}

	noMatch := &NoMatchError{Request: req, Misses: misses}
	log.Warn("no mock matched request", "method", req.Method, "url", req.URL, "mocks", len(mocks))
	e.record(start, req, requestlog.OutcomeUnmatched, nil, misses, nil)
	return nil, noMatch
}

// networkAllowed reports whether an unmatched request may use the real
// network: networking must be enabled and, when filters exist, at least one
// must approve.
func (e *Engine) networkAllowed(req *request.Request) (bool, error) {
	e.mu.RLock()
	enabled := e.network
	filters := e.networkFilters
	e.mu.RUnlock()

	if !enabled {
		return false, nil
	}
	if len(filters) == 0 {
		return true, nil
	}
	for _, filter := range filters {
		ok, err := filter(req)
		if err != nil {
			return false, &NetworkFilterError{Request: req, Err: err}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// nearMissLimit caps how many near misses are kept per history entry.
const nearMissLimit = 3

func (e *Engine) record(start time.Time, req *request.Request, outcome string, matched *mock.Mock, misses []Miss, err error) {
	store := e.HistoryStore()
	if store == nil {
		return
	}

	entry := &requestlog.Entry{
		Timestamp:  start,
		Method:     req.Method,
		Headers:    req.Header.Clone(),
		BodySize:   len(req.Body),
		Outcome:    outcome,
		DurationMs: int(time.Since(start).Milliseconds()),
		NearMisses: nearMisses(misses),
	}
	if req.URL != nil {
		entry.URL = req.URL.String()
		entry.Host = req.URL.Hostname()
		entry.Path = req.URL.Path
		entry.QueryString = req.URL.RawQuery
	}
	if len(req.Body) > 0 {
		entry.Body = textutil.TruncateBody(req.Text(), 0)
	}
	if matched != nil {
		entry.MatchedMockID = matched.ID
		entry.MatchedMockName = matched.Name()
		entry.ResponseStatus = matched.Response().StatusCode()
	}
	if err != nil {
		entry.Error = err.Error()
	}
	store.Log(entry)
}

// nearMisses returns the closest misses, best first. Filtered and expired
// mocks are left out.
func nearMisses(misses []Miss) []requestlog.NearMissInfo {
	var out []requestlog.NearMissInfo
	for _, miss := range misses {
		if miss.Filtered || miss.Expired {
			continue
		}
		info := requestlog.NearMissInfo{
			MockID:          miss.Mock.ID,
			MockName:        miss.Mock.Name(),
			MatchPercentage: miss.MatchPercentage,
			Reasons:         miss.Reasons,
		}
		info.Reason = miss.Summary
		if info.Reason == "" && len(miss.Reasons) > 0 {
			info.Reason = miss.Reasons[0]
		}
		out = append(out, info)
	}
	slices.SortStableFunc(out, func(a, b requestlog.NearMissInfo) int {
		return b.MatchPercentage - a.MatchPercentage
	})
	if len(out) > nearMissLimit {
		out = out[:nearMissLimit]
	}
	return out
}
