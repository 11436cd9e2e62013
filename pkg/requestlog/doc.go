// Package requestlog records the requests an engine has evaluated, for
// inspection in tests and from the CLI.
//
// Every call to Engine.Match produces one Entry carrying the request, the
// outcome (matched, filtered, passthrough, unmatched or error), the matched
// mock and, for unmatched requests, the closest mocks with the reasons they
// were rejected. It is distinct from operational logging, which uses
// log/slog.
//
//	store := requestlog.NewMemoryStore(1000)
//	store.Log(&requestlog.Entry{Method: "GET", Path: "/users", Outcome: requestlog.OutcomeMatched})
//	for _, e := range store.List(&requestlog.Filter{Outcome: requestlog.OutcomeUnmatched}) {
//		fmt.Println(e.Method, e.URL, e.NearMisses)
//	}
//
// This is a leaf package with no dependencies on the rest of the module
// beyond internal/id, so any package can import it.
package requestlog
