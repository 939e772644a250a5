// Package filter narrows postal-code-keyed datasets to one code.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyed is any record addressable by postal code.
type Keyed interface {
	Key() int
}

// User-visible filter messages. The zero-match fallback is intentional
// product behavior: downstream layering requires non-empty layers, so a
// miss returns the full dataset with a notice instead of an empty result.
const (
	MsgInvalidPincode = "Please enter a valid numeric pincode."
	msgNoData         = "No data found for Pincode: %d"
	msgShowing        = "Showing data for Pincode: %d"
)

// ByPincode narrows rows to the postal code parsed from raw.
//
//   - empty raw: rows unchanged, no message
//   - unparseable raw: rows unchanged, invalid-pincode message
//   - zero matches: rows unchanged, no-data message
//   - matches: matching rows, showing message
//
// The input slice is never mutated.
func ByPincode[T Keyed](rows []T, raw string) ([]T, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return rows, ""
	}

	pincode, err := strconv.Atoi(raw)
	if err != nil {
		return rows, MsgInvalidPincode
	}

	var matched []T
	for _, r := range rows {
		if r.Key() == pincode {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return rows, fmt.Sprintf(msgNoData, pincode)
	}
	return matched, fmt.Sprintf(msgShowing, pincode)
}
