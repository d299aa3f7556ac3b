// Package utils holds small parsing helpers shared by the HTTP handlers.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as a base-10 int, returning def when s is empty or
// malformed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParseLimit reads a list "limit" query value. Missing or malformed values
// give def; anything else is clamped to [1, max]. A max of 0 means no upper
// bound.
func ParseLimit(s string, def, max int) int {
	n := AtoiDefault(strings.TrimSpace(s), def)
	if n < 1 {
		n = 1
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
