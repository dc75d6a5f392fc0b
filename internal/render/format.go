// Package render turns backend results into terminal output.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cropsense/internal/models"
)

// FormatIndian rounds n to an integer and groups its digits the Indian way:
// the last three digits, then pairs (1,23,456).
func FormatIndian(n float64) string {
	r := math.Round(n)
	neg := r < 0
	digits := strconv.FormatFloat(math.Abs(r), 'f', 0, 64)

	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		digits = strings.Join(groups, ",") + "," + tail
	}

	if neg {
		return "-" + digits
	}
	return digits
}

// Rupees formats an amount as ₹ with Indian grouping
func Rupees(n float64) string {
	if n < 0 && math.Round(n) != 0 {
		return "-₹" + FormatIndian(-n)
	}
	return "₹" + FormatIndian(n)
}

// TrendBadge is the upper-cased trend label
func TrendBadge(t models.Trend) string {
	return strings.ToUpper(string(t))
}

// Percent renders a [0,1] fraction as a rounded percentage
func Percent(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(p*100)))
}

// Confidence renders a [0,1] score as "91% conf"
func Confidence(score float64) string {
	return Percent(score) + " conf"
}

// SpoilageBucket maps a spoilage probability to its display bucket
func SpoilageBucket(p float64) string {
	switch {
	case p > 0.60:
		return "High"
	case p > 0.30:
		return "Medium"
	default:
		return "Low"
	}
}

// Celsius formats a temperature with one decimal when it has one
func Celsius(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64) + "°C"
}
