package utils

import (
	"strconv"
	"strings"
)

// ParseInt parses a base-10 integer field. Surrounding whitespace is
// tolerated; anything else that is not a plain integer is rejected.
func ParseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			return 0, ne.Err
		}
		return 0, err
	}
	return v, nil
}

// IsInteger reports whether val holds a Go integer kind.
func IsInteger(val interface{}) bool {
	switch val.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
