package analysis

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 100
)

// ClampLimit constrains n to [MinLimit, MaxLimit].
func ClampLimit(n int) int {
	if n < MinLimit {
		return MinLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ParseLimit reads a limit query value. Missing or non-numeric input falls
// back to DefaultLimit; anything else is clamped.
func ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}
	return ClampLimit(n)
}
