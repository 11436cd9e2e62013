// Package id provides identifier generation for mockwire.
//
// All identifiers are UUIDs produced by github.com/google/uuid:
//
//   - UUID: random v4 IDs used for mocks
//   - Ordered: time-ordered v7 IDs used for request history entries so
//     that listing by ID is listing by arrival
//   - Short: 16 hex characters for human-facing descriptions
package id
