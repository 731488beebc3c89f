package submission

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber is the single coercion rule for numeric draft fields.
// Digit-group separators are ignored; anything unparseable becomes 0.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseInt(raw string) int {
	return int(ParseNumber(raw))
}

func formatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
