// Package matching implements the request matchers that mocks are built
// from.
//
// Every matcher wraps one expectation and answers Match(request) with a
// boolean plus an error explaining a mismatch. Matchers can be negated
// with the Negate option; a negated matcher returns the inverse of its
// base result for every request.
//
// Values are compared through Expectation, which is either a literal
// (exact equality) or a pattern (regex search). String expectations
// written as "re/<pattern>/" are patterns and a "!!" prefix negates the
// comparison. An empty expectation passes; a non-empty expectation never
// matches an empty value.
//
// Available matchers:
//
//   - MethodMatcher: method, case-insensitive, "*" for any
//   - URLMatcher: scheme, host, port, then path and query
//   - PathMatcher, QueryMatcher, HeadersMatcher
//   - ExistsMatcher: header or query parameter presence
//   - BodyMatcher, JSONMatcher, JSONSchemaMatcher, XMLMatcher
//   - JSONPathMatcher, XPathMatcher: selections from JSON and XML bodies
//   - ExprMatcher: boolean expr-lang expressions over the request
//   - FuncMatcher: arbitrary predicates
//
// Breakdown evaluates a set of matchers without short-circuiting and the
// near-miss helpers turn the result into explanations.
package matching
