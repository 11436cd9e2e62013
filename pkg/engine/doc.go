// Package engine resolves outgoing HTTP requests against registered mocks.
//
// # Architecture
//
//	┌──────────────┐   request.Request   ┌──────────────────────────────┐
//	│  Transport   │ ──────────────────▶ │            Engine            │
//	│  Handler     │                     │  filters ▸ mappers ▸ mocks   │
//	│  (adapters)  │ ◀────────────────── │  network fallback ▸ history  │
//	└──────────────┘   Result / error    └──────────────────────────────┘
//
// An Engine owns an ordered list of mocks. Match runs the engine filters
// and mappers, then tries every mock in registration order and returns the
// first one that matches. Registration order is the only priority: a later
// mock that fits the request better is never preferred.
//
// When no mock matches, Match returns a *NoMatchError describing the
// request and why each mock rejected it, unless real networking is enabled
// for the request, in which case the Result asks the caller to send the
// request for real and the request is kept in the unmatched log.
//
// # Basic Usage
//
//	e := engine.New()
//	e.Get("http://api.example.com/users/1").
//		Reply(200).
//		JSON(map[string]any{"id": 1, "name": "ann"})
//
//	resp, err := e.Client().Get("http://api.example.com/users/1")
//	// ...
//	if !e.IsDone() {
//		t.Errorf("pending mocks: %v", e.PendingMocks())
//	}
//
// # Adapters
//
// Transport implements http.RoundTripper and Handler implements
// http.Handler; both translate between net/http and the engine. A
// process-wide engine is available through Default, and Use swaps it for
// the duration of a test:
//
//	defer engine.Use(engine.New())()
package engine
