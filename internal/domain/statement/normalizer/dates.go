package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const canonicalDateLayout = "20060102"

var (
	eightDigitPattern = regexp.MustCompile(`^\d{8}$`)
	dmyPattern        = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	ymdPattern        = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
)

// fallbackLayouts are tried in order when a date matches none of the fixed
// numeric patterns.
var fallbackLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// NormalizeDate converts a date value from a statement row into the
// canonical 8-digit YYYYMMDD form. Slash- and dash-separated numeric dates
// are read day-month-year; this is a fixed locale assumption, not
// auto-detected. Unparseable or invalid calendar values yield "" rather than
// an error; callers treat "" as "drop this row".
func NormalizeDate(value any) string {
	s := dateString(value)
	if s == "" {
		return ""
	}

	if eightDigitPattern.MatchString(s) {
		return s
	}

	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		return formatParts(m[3], m[2], m[1])
	}
	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		return formatParts(m[1], m[2], m[3])
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDateLayout)
		}
	}
	// time.Parse matches month names case-sensitively; retry with OCR-style
	// all-caps months ("05 MAR 2024") folded to title case.
	if cased := titleCaseWords(s); cased != s {
		for _, layout := range fallbackLayouts {
			if t, err := time.Parse(layout, cased); err == nil {
				return t.Format(canonicalDateLayout)
			}
		}
	}
	return ""
}

// titleCaseWords uppercases the first letter of each word and lowercases the
// rest, leaving non-alphabetic words untouched.
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		c := w[0]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// dateString renders the raw cell value as a trimmed string. Numeric cells
// (Excel sometimes stores dates as numbers) are rendered without decimals.
func dateString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// formatParts builds YYYYMMDD from string components, rejecting values that
// do not survive a calendar round-trip (e.g. day 32, month 13).
func formatParts(year, month, day string) string {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return ""
	}
	return t.Format(canonicalDateLayout)
}
