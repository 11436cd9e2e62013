// Package cli implements the mockwire command line: linting definition
// files, matching a described request against them, and serving them over
// HTTP.
package cli
