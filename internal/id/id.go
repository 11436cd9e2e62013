// Package id generates identifiers for mocks and history entries.
package id

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// UUID generates a random (v4) UUID string.
func UUID() string {
	return uuid.NewString()
}

// Short generates a 16 character hex ID.
// Used in mock descriptions where the full UUID is noise.
func Short() string {
	u := uuid.New()
	return hex.EncodeToString(u[:8])
}

// Ordered generates a time-ordered (v7) UUID string. IDs produced in
// sequence sort lexicographically in creation order.
func Ordered() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Time extracts the creation time from an ID returned by Ordered.
// The second return value is false for IDs that carry no timestamp.
func Time(s string) (time.Time, bool) {
	u, err := uuid.Parse(s)
	if err != nil || u.Version() != 7 {
		return time.Time{}, false
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), true
}
