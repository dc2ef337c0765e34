package chapters

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	wholeNumberPattern = regexp.MustCompile(`^[0-9]+$`)
	secondsPattern     = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)
)

// ParseTimestamp converts "H:MM:SS", "MM:SS", "[HH:MM:SS]", "(MM:SS)", or a
// plain second count into seconds. Only the seconds component may be
// fractional. Minutes and seconds must be below 60 whenever a larger unit
// precedes them; the leading unit is unbounded ("75:30" is 75 minutes).
func ParseTimestamp(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '[' && last == ']') || (first == '(' && last == ')') {
			value = strings.TrimSpace(value[1 : len(value)-1])
		}
	}
	if value == "" {
		return 0, false
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, false
	}

	secPart := parts[len(parts)-1]
	if !secondsPattern.MatchString(secPart) {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(secPart, 64)
	if err != nil {
		return 0, false
	}
	if len(parts) > 1 && seconds >= 60 {
		return 0, false
	}

	total := seconds
	multipliers := []float64{60, 3600}
	for i := len(parts) - 2; i >= 0; i-- {
		unit := parts[i]
		if !wholeNumberPattern.MatchString(unit) {
			return 0, false
		}
		n, err := strconv.Atoi(unit)
		if err != nil {
			return 0, false
		}
		// minutes with an hour component present
		if i == len(parts)-2 && len(parts) == 3 && n >= 60 {
			return 0, false
		}
		total += float64(n) * multipliers[len(parts)-2-i]
	}
	return total, true
}

// FormatTimestamp renders seconds as "M:SS", or "H:MM:SS" from one hour up.
// Fractions are truncated.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
