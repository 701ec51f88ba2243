package engagement

import (
	"strconv"
	"strings"
)

// FormatViews renders a raw view count in abbreviated display form:
// thousands as K, millions as M, billions as B, two decimals with an
// exact ".00" stripped. The stored counter stays the plain integer.
func FormatViews(views int) string {
	switch {
	case views >= 1_000_000_000:
		return abbreviate(float64(views)/1_000_000_000) + "B"
	case views >= 1_000_000:
		return abbreviate(float64(views)/1_000_000) + "M"
	case views >= 1_000:
		return abbreviate(float64(views)/1_000) + "K"
	default:
		return strconv.Itoa(views)
	}
}

func abbreviate(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 2, 64), ".00")
}
