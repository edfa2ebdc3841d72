package expand

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical wire format for contract dates. All staged and
// uploaded dates are normalized to it regardless of how the source document
// wrote them.
const DateLayout = "2006-01-02"

// contractDateLayouts lists the formats hotel contracts are observed to use,
// tried in order. Two-digit years are resolved by time.Parse's pivot rule
// (69 and above map to 19xx, below to 20xx), which matches the contracts in
// circulation.
var contractDateLayouts = []string{
	DateLayout,
	"02.01.2006",
	"02.01.06",
	"02/01/2006",
}

// ParseContractDate parses a date string in any of the accepted contract
// formats and returns an error when none match.
func ParseContractDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range contractDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

// FormatDate renders t in the canonical contract date format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DatesBetween returns every calendar day from start through end inclusive,
// formatted canonically. An end before start yields an empty slice.
func DatesBetween(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDate(d))
	}
	return days
}
