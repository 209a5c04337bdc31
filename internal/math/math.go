package math

import (
	"strconv"
)

// Format formats a float with two decimals.
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// FormatVector formats each element of the vector with Format.
func FormatVector(v Vector) []string {
	ss := make([]string, len(v))
	for i, f := range v {
		ss[i] = Format(f)
	}
	return ss
}
