package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Monetary amounts travel as decimal strings ("45.00") but all arithmetic runs
// on integer minor units to keep refund-percentage math exact across tiers.

// ParseAmountMinor converts a decimal string into minor units: "45.00" -> 4500.
// At most two fraction digits are accepted.
func ParseAmountMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two fraction digits", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	minor := w*100 + f
	if neg {
		minor = -minor
	}
	return minor, nil
}

// FormatAmountMinor renders minor units back into a decimal string: 4500 -> "45.00".
func FormatAmountMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// ApplyPercent computes minor*percent/100 rounded half up.
func ApplyPercent(minor int64, percent int64) int64 {
	return (minor*percent + 50) / 100
}
