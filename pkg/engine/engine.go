package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/getmockd/mockwire/internal/matching"
	"github.com/getmockd/mockwire/pkg/logging"
	"github.com/getmockd/mockwire/pkg/mock"
	"github.com/getmockd/mockwire/pkg/request"
	"github.com/getmockd/mockwire/pkg/requestlog"
)

// FilterFunc decides whether a request is considered by the engine at all.
// Returning false makes Match report OutcomeFiltered.
type FilterFunc func(req *request.Request) bool

// MapperFunc replaces the request before any mock sees it. It must not
// return nil.
type MapperFunc func(req *request.Request) *request.Request

// NetworkFilter approves sending an unmatched request to the real network.
// An error aborts matching with a *NetworkFilterError.
type NetworkFilter func(req *request.Request) (bool, error)

// Engine is an ordered registry of mocks. It is safe for concurrent use.
type Engine struct {
	mu             sync.RWMutex
	log            *slog.Logger
	mocks          []*mock.Mock
	filters        []FilterFunc
	mappers        []MapperFunc
	network        bool
	networkFilters []NetworkFilter
	unmatched      []*request.Request
	history        requestlog.Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithNetwork enables real networking for unmatched requests, optionally
// restricted to hosts.
func WithNetwork(hosts ...string) Option {
	return func(e *Engine) {
		e.enableNetwork(hosts)
	}
}

// WithHistory records evaluated requests in store.
func WithHistory(store requestlog.Store) Option {
	return func(e *Engine) {
		if store != nil {
			e.history = store
		}
	}
}

// WithHistorySize bounds the in-memory request history.
func WithHistorySize(n int) Option {
	return func(e *Engine) {
		e.history = requestlog.NewMemoryStore(n)
	}
}

// New creates an empty engine with networking disabled.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:     logging.Nop(),
		history: requestlog.NewMemoryStore(requestlog.DefaultMaxEntries),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLogger replaces the operational logger.
func (e *Engine) SetLogger(log *slog.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	e.mu.Lock()
	e.log = log
	e.mu.Unlock()
}

func (e *Engine) logger() *slog.Logger {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log
}

// Add registers mocks after the existing ones. Nil mocks are ignored.
func (e *Engine) Add(mocks ...*mock.Mock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range mocks {
		if m == nil {
			continue
		}
		e.mocks = append(e.mocks, m)
		e.log.Debug("mock registered", "id", m.ID, "name", m.Name(), "position", len(e.mocks))
	}
}

// Mock registers and returns a mock matching url with any method.
func (e *Engine) Mock(url any) *mock.Mock {
	m := mock.For("", url)
	e.Add(m)
	return m
}

// Request registers and returns a mock matching method and url.
func (e *Engine) Request(method string, url any) *mock.Mock {
	m := mock.For(method, url)
	e.Add(m)
	return m
}

// Get registers a GET mock.
func (e *Engine) Get(url any) *mock.Mock { return e.Request(http.MethodGet, url) }

// Post registers a POST mock.
func (e *Engine) Post(url any) *mock.Mock { return e.Request(http.MethodPost, url) }

// Put registers a PUT mock.
func (e *Engine) Put(url any) *mock.Mock { return e.Request(http.MethodPut, url) }

// Patch registers a PATCH mock.
func (e *Engine) Patch(url any) *mock.Mock { return e.Request(http.MethodPatch, url) }

// Delete registers a DELETE mock.
func (e *Engine) Delete(url any) *mock.Mock { return e.Request(http.MethodDelete, url) }

// Head registers a HEAD mock.
func (e *Engine) Head(url any) *mock.Mock { return e.Request(http.MethodHead, url) }

// Options registers an OPTIONS mock.
func (e *Engine) Options(url any) *mock.Mock { return e.Request(http.MethodOptions, url) }

// AddOptions builds a mock from an option map and registers it.
func (e *Engine) AddOptions(opts mock.Options) (*mock.Mock, error) {
	m, err := mock.NewFromOptions(opts)
	if err != nil {
		return nil, err
	}
	e.Add(m)
	return m, nil
}

// Remove unregisters m. It reports whether m was registered.
func (e *Engine) Remove(m *mock.Mock) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.Index(e.mocks, m)
	if i < 0 {
		return false
	}
	e.mocks = slices.Delete(e.mocks, i, i+1)
	return true
}

// Flush unregisters every mock.
func (e *Engine) Flush() {
	e.mu.Lock()
	e.mocks = nil
	e.mu.Unlock()
}

// Reset clears mocks, filters, mappers, network filters, the unmatched log
// and the request history. Whether networking is enabled is kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.mocks = nil
	e.filters = nil
	e.mappers = nil
	e.networkFilters = nil
	e.unmatched = nil
	history := e.history
	e.mu.Unlock()
	history.Clear()
}

// Filter adds engine filters. A request rejected by any filter is not
// matched against mocks.
func (e *Engine) Filter(filters ...FilterFunc) {
	e.mu.Lock()
	e.filters = append(e.filters, filters...)
	e.mu.Unlock()
}

// FilterExpr adds an engine filter written as an expr-lang expression
// over the request (see matching.Expr). Requests for which the expression
// fails to evaluate are filtered out.
func (e *Engine) FilterExpr(source string) error {
	x, err := matching.CompileExpr(source)
	if err != nil {
		return err
	}
	e.Filter(func(req *request.Request) bool {
		ok, err := x.Eval(req)
		return err == nil && ok
	})
	return nil
}

// Map adds engine mappers, run in order before mocks are tried.
func (e *Engine) Map(mappers ...MapperFunc) {
	e.mu.Lock()
	e.mappers = append(e.mappers, mappers...)
	e.mu.Unlock()
}

// FlushFilters removes engine filters.
func (e *Engine) FlushFilters() {
	e.mu.Lock()
	e.filters = nil
	e.mu.Unlock()
}

// FlushMappers removes engine mappers.
func (e *Engine) FlushMappers() {
	e.mu.Lock()
	e.mappers = nil
	e.mu.Unlock()
}

// EnableNetwork lets unmatched requests reach the real network. When hosts
// are given, only requests to those hosts are let through; further calls
// add hosts.
func (e *Engine) EnableNetwork(hosts ...string) {
	e.mu.Lock()
	e.enableNetwork(hosts)
	e.mu.Unlock()
}

func (e *Engine) enableNetwork(hosts []string) {
	e.network = true
	for _, host := range hosts {
		e.networkFilters = append(e.networkFilters, hostFilter(host))
	}
}

// hostFilter approves requests whose hostname equals host. host may carry
// a scheme or port; only the hostname is compared.
func hostFilter(host string) NetworkFilter {
	want := host
	if u, err := request.ParseURL(host); err == nil && u.Hostname() != "" {
		want = u.Hostname()
	}
	want = matching.NormalizeHost(strings.TrimSpace(want))
	return func(req *request.Request) (bool, error) {
		if req.URL == nil {
			return false, nil
		}
		return matching.NormalizeHost(req.URL.Hostname()) == want, nil
	}
}

// UseNetworkFilter adds predicates approving real networking for unmatched
// requests. Filters are OR-combined and only consulted while networking is
// enabled.
func (e *Engine) UseNetworkFilter(filters ...NetworkFilter) {
	e.mu.Lock()
	e.networkFilters = append(e.networkFilters, filters...)
	e.mu.Unlock()
}

// FlushNetworkFilters removes every network filter, including host filters.
func (e *Engine) FlushNetworkFilters() {
	e.mu.Lock()
	e.networkFilters = nil
	e.mu.Unlock()
}

// DisableNetwork turns real networking off. Network filters are kept.
func (e *Engine) DisableNetwork() {
	e.mu.Lock()
	e.network = false
	e.mu.Unlock()
}

// NetworkEnabled reports whether real networking is enabled.
func (e *Engine) NetworkEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.network
}

// Mocks returns the registered mocks in registration order.
func (e *Engine) Mocks() []*mock.Mock {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.mocks)
}

// IsDone reports whether every registered mock has been used as expected.
func (e *Engine) IsDone() bool {
	return len(e.PendingMocks()) == 0
}

// PendingMocks returns the mocks that are not done yet.
func (e *Engine) PendingMocks() []*mock.Mock {
	var pending []*mock.Mock
	for _, m := range e.Mocks() {
		if !m.IsDone() {
			pending = append(pending, m)
		}
	}
	return pending
}

// IsPending reports whether any mock is not done yet.
func (e *Engine) IsPending() bool {
	return !e.IsDone()
}

// UnmatchedRequests returns the requests that were sent to the real
// network, oldest first.
func (e *Engine) UnmatchedRequests() []*request.Request {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.unmatched)
}

// Unmatched returns how many requests were sent to the real network.
func (e *Engine) Unmatched() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.unmatched)
}

// IsUnmatched reports whether any request was sent to the real network.
func (e *Engine) IsUnmatched() bool {
	return e.Unmatched() > 0
}

// History returns recorded requests newest first, optionally filtered.
func (e *Engine) History(filter *requestlog.Filter) []*requestlog.Entry {
	return e.HistoryStore().List(filter)
}

// HistoryStore returns the store evaluated requests are recorded in.
func (e *Engine) HistoryStore() requestlog.Store {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history
}

// Validate returns the configuration errors of every registered mock.
func (e *Engine) Validate() error {
	var errs []error
	for i, m := range e.Mocks() {
		if err := m.Err(); err != nil {
			errs = append(errs, fmt.Errorf("mock %d (%s): %w", i, mockLabel(m), err))
		}
	}
	return errors.Join(errs...)
}

func mockLabel(m *mock.Mock) string {
	if name := m.Name(); name != "" {
		return name
	}
	return m.ID
}
