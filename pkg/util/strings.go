package util

import (
	"strconv"
	"strings"
)

// ParseFloat parses a trimmed decimal string.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// NormalizeSymbol upper-cases and trims an instrument symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
