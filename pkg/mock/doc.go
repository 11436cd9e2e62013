// Package mock defines mocks: expectations about an outgoing HTTP request
// paired with the response to reply with.
//
// A Mock holds an ordered list of matchers; a request matches only when
// every matcher accepts it. Each mock may be matched a limited number of
// times (Times, default 1) or indefinitely (Persist). Once its uses are
// exhausted a mock is expired: it stays registered but reports
// "mock has expired" for every later request.
//
// Matching runs in this order:
//
//  1. expiry check
//  2. filters, which can silently exclude the mock
//  3. mappers, which may replace the request
//  4. every matcher, collecting one explanation per failure
//  5. bookkeeping, then either the simulated error or the callbacks
//
// Mocks can be built with chained calls or from an Options map, the form
// used by mock definition files.
package mock
