// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"fmt"
	"net/http"
	"strings"
)

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Headers parses "Name: value" strings into an http.Header. Repeated names
// accumulate values.
func Headers(headers []string) (http.Header, error) {
	result := make(http.Header, len(headers))
	for _, h := range headers {
		key, value, ok := KeyValue(h, ':')
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", h)
		}
		result.Add(key, strings.TrimSpace(value))
	}
	return result, nil
}

// SplitTrim splits a string by separator and trims each part.
func SplitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
