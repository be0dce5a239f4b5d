package core

import (
	"strconv"
	"strings"
)

// FallbackFilter is returned by NormalizeFilter for any input it cannot
// parse. It predates all real BIE data, so an invalid filter silently
// becomes "no effective filter" instead of an error.
const FallbackFilter = "2000/01"

// NormalizeFilter parses a free-form period filter and returns it in the
// canonical "YYYY/MM" form. Three input shapes are accepted: "YYYY/MM",
// "YYYY-MM" and the contiguous six-digit "YYYYMM". Year and month need not
// be zero-padded in the separator forms; the output always is. Any parse
// failure yields FallbackFilter, never an error.
func NormalizeFilter(input string) string {
	var yearStr, monthStr string
	switch {
	case strings.Contains(input, "/"):
		parts := strings.Split(input, "/")
		if len(parts) != 2 {
			return FallbackFilter
		}
		yearStr, monthStr = parts[0], parts[1]
	case strings.Contains(input, "-"):
		parts := strings.Split(input, "-")
		if len(parts) != 2 {
			return FallbackFilter
		}
		yearStr, monthStr = parts[0], parts[1]
	default:
		if len(input) != 6 {
			return FallbackFilter
		}
		yearStr, monthStr = input[:4], input[4:]
	}

	year, ok := parseDigits(yearStr)
	if !ok || year < 1 || year > 9999 {
		return FallbackFilter
	}
	month, ok := parseDigits(monthStr)
	if !ok || month < 1 || month > 12 {
		return FallbackFilter
	}

	return pad4(year) + "/" + pad2(month)
}

// parseDigits parses a non-empty, digits-only string. Unlike strconv.Atoi it
// rejects signs and whitespace, matching the strictness of a date parser.
func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 4 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func pad4(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
