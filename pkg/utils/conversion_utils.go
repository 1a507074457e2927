package utils

import (
	"strconv"
	"strings"
)

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// ParsePositiveInt returns the parsed value of s, or fallback when s is empty.
// ok is false when s is set but is not a positive integer.
func ParsePositiveInt(s string, fallback int) (n int, ok bool) {
	if s == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
