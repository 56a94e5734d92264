package utils

import (
	"strconv"
	"strings"
)

// ParseDays reads a reporting window in days. Empty, non-numeric and
// non-positive values all give def.
func ParseDays(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
