package explain

import (
	"strconv"
	"strings"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// rangeSeparator joins the ends of a displayed range.
const rangeSeparator = "–"

// FormatRange renders "min" when both ends are equal, otherwise "min–max".
func FormatRange(lo, hi string) string {
	if lo == hi {
		return lo
	}
	return lo + rangeSeparator + hi
}

// FormatNumber renders v with the fewest digits that round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatSet renders a set sorted, de-duplicated and comma-joined.
func FormatSet(values []string) string {
	return strings.Join(domain.NormalizeSet(values), ", ")
}
