package sheet

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var numberPattern = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// NormalizeNumber extracts a decimal from free-form cell content: thousands
// separators and currency text are ignored, the Unicode minus sign (U+2212)
// is mapped to ASCII '-', and the first signed/decimal substring wins.
// No digits means zero, never an error.
func NormalizeNumber(value string) decimal.Decimal {
	d, _ := ParseNumber(value)
	return d
}

// ParseNumber is NormalizeNumber plus an ok flag, for callers that must
// distinguish "zero" from "no number here" (settlement marks the latter as
// missing data instead of silently pricing at zero).
func ParseNumber(value string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.ReplaceAll(s, ",", "")

	match := numberPattern.FindString(s)
	if match == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeSKU trims surrounding whitespace. SKU equality everywhere else is
// exact string match on the trimmed value, no case folding.
func NormalizeSKU(value string) string {
	return strings.TrimSpace(value)
}

// Layouts excelize produces for date-styled cells, plus the dashed forms the
// vendor forms use when dates are typed as text.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01-02-06",
	"1-2-06",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"01/02/2006",
}

// FormatDate renders a cell as an 8-digit YYYYMMDD string. Recognized date
// layouts are reformatted; anything else is stripped of '-', '.', '/' and all
// remaining non-digits, keeping the first 8 digits. Callers treat results
// shorter than 8 digits as invalid.
func FormatDate(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102")
		}
	}

	s = strings.NewReplacer("-", "", ".", "", "/", "").Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 8 {
		digits = digits[:8]
	}
	return digits
}
