package blockchain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Uint64 parses a loosely typed ledger number. The node string-encodes u64
// values, older nodes emit plain JSON numbers. ok is false when v is absent
// or cannot be read as a non-negative integer.
func Uint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		return parseUint(string(n))
	case string:
		return parseUint(n)
	case float64:
		if n < 0 || n != math.Trunc(n) || n >= 1<<64 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}

func parseUint(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, true
	}
	// "1e3" style numbers
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return Uint64(f)
}

// Truthy reports whether v is set to a true-ish value and whether it was
// set at all.
func Truthy(v interface{}) (value bool, present bool) {
	switch b := v.(type) {
	case nil:
		return false, false
	case bool:
		return b, true
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed, true
		}
		return b != "", true
	case json.Number:
		f, err := b.Float64()
		return err == nil && f != 0, true
	case float64:
		return b != 0, true
	}
	return true, true
}

// Text renders a scalar as a string; maps and slices yield "".
func Text(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
