package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateConfig controls disambiguation of numeric dates. USFirst selects
// mm/dd over dd/mm when a date is ambiguous. DefaultYear completes
// abbreviated forms like "4-Aug" that carry no year.
type DateConfig struct {
	USFirst     bool
	DefaultYear int
}

const isoDate = "2006-01-02"

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "FEV": time.February,
	"MAR": time.March, "APR": time.April, "ABR": time.April,
	"MAY": time.May, "MAI": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "AGO": time.August,
	"SEP": time.September, "SET": time.September, "OCT": time.October,
	"OUT": time.October, "NOV": time.November, "DEC": time.December,
	"DEZ": time.December,
}

// ParseDate normalizes a date string to ISO yyyy-mm-dd. It accepts
// pt-BR (dd/mm/yyyy), US (mm/dd/yyyy), ISO, and abbreviated day-month
// forms (4-Aug) completed with cfg.DefaultYear. Returns false when the
// input is not a recognizable date.
func ParseDate(raw string, cfg DateConfig) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if t, err := time.Parse(isoDate, s); err == nil {
		return t.Format(isoDate), true
	}

	if iso, ok := parseSlashed(s, cfg); ok {
		return iso, true
	}

	if iso, ok := parseDayMonth(s, cfg); ok {
		return iso, true
	}

	return "", false
}

// parseSlashed handles dd/mm/yyyy and mm/dd/yyyy (also with '-' or '.'
// separators and two-digit years). Ambiguous dates resolve pt-BR-first
// unless cfg.USFirst is set; an impossible day/month combination forces
// the other reading.
func parseSlashed(s string, cfg DateConfig) (string, bool) {
	sep := ""
	for _, c := range []string{"/", "-", "."} {
		if strings.Count(s, c) == 2 {
			sep = c
			break
		}
	}
	if sep == "" {
		return "", false
	}

	parts := strings.Split(s, sep)
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	c, errC := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errA != nil || errB != nil || errC != nil {
		return "", false
	}

	year := c
	if year < 100 {
		// Two-digit year pivot: 69 and below are 2000s.
		if year <= 69 {
			year += 2000
		} else {
			year += 1900
		}
	}

	day, month := a, b
	if cfg.USFirst {
		day, month = b, a
	}
	if !validDayMonth(day, month, year) {
		day, month = month, day
		if !validDayMonth(day, month, year) {
			return "", false
		}
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// parseDayMonth handles abbreviated forms like "4-Aug" or "04/ago",
// which carry no year and require cfg.DefaultYear.
func parseDayMonth(s string, cfg DateConfig) (string, bool) {
	if cfg.DefaultYear == 0 {
		return "", false
	}
	for _, sep := range []string{"-", "/", " "} {
		parts := strings.Split(s, sep)
		if len(parts) != 2 {
			continue
		}
		day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		month, ok := monthAbbrev[strings.ToUpper(strings.TrimSpace(parts[1]))]
		if !ok {
			continue
		}
		if !validDayMonth(day, int(month), cfg.DefaultYear) {
			return "", false
		}
		return fmt.Sprintf("%04d-%02d-%02d", cfg.DefaultYear, month, day), true
	}
	return "", false
}

func validDayMonth(day, month, year int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return day <= t.AddDate(0, 1, -1).Day()
}

// DaysBetween returns the whole-day difference b - a between two ISO
// dates. Unparseable inputs return 0.
func DaysBetween(a, b string) int {
	ta, errA := time.Parse(isoDate, a)
	tb, errB := time.Parse(isoDate, b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// InRange reports whether ISO date d falls within [from, to] inclusive.
func InRange(d, from, to string) bool {
	return d >= from && d <= to
}

// MonthYear extracts (month, year) from an ISO date.
func MonthYear(d string) (int, int) {
	t, err := time.Parse(isoDate, d)
	if err != nil {
		return 0, 0
	}
	return int(t.Month()), t.Year()
}

// FirstOfMonth returns the first day of d's month as an ISO date.
func FirstOfMonth(d string) string {
	t, err := time.Parse(isoDate, d)
	if err != nil {
		return ""
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format(isoDate)
}

// LastOfMonth returns the last day of d's month as an ISO date.
func LastOfMonth(d string) string {
	t, err := time.Parse(isoDate, d)
	if err != nil {
		return ""
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Format(isoDate)
}

// ShiftDays returns the ISO date n days after d (negative n shifts back).
func ShiftDays(d string, n int) string {
	t, err := time.Parse(isoDate, d)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, n).Format(isoDate)
}
