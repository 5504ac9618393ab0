package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/visit-log-api/internal/models"
)

// ParseDate normalises a raw date cell. Accepts native times, YYYY-MM-DD and
// DD/MM/YYYY strings. A slash date whose first number exceeds 12 is taken as
// day-first, one whose second number exceeds 12 as month-first; the ambiguous
// case is read as DD/MM/YYYY. Anything unparseable yields the fallback.
func ParseDate(v any, fallback time.Time) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		raw := strings.TrimSpace(val)
		if raw == "" {
			return fallback
		}
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			return parsed
		}
		if parsed, ok := parseSlashDate(raw); ok {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseSlashDate(raw string) (time.Time, bool) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errA != nil || errB != nil || errY != nil || year < 1000 {
		return time.Time{}, false
	}

	day, month := a, b
	if a <= 12 && b > 12 {
		day, month = b, a
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject rollovers like 31/02
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// ComputeHours returns the decimal hours between two HH:MM clock strings,
// rounded to one decimal place. End times earlier than start wrap past
// midnight. Malformed input counts as zero hours.
func ComputeHours(start, end string) float64 {
	s, okS := parseClock(start)
	e, okE := parseClock(end)
	if !okS || !okE {
		return 0.0
	}
	diff := e - s
	if diff < 0 {
		diff += 24 * 60
	}
	return math.Round(float64(diff)/60.0*10) / 10
}

// FormatClock normalises a clock string to zero padded HH:MM. Unparseable
// input passes through untouched so the raw value stays visible downstream.
func FormatClock(raw string) string {
	minutes, ok := parseClock(raw)
	if !ok {
		return raw
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// parseClock returns minutes since midnight for HH:MM or HH:MM:SS.
func parseClock(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// YearFor picks the ledger year for a visit date. Dates outside the
// supported range route to the current year.
func YearFor(date time.Time, now time.Time) int {
	year := date.Year()
	if year < models.LedgerYearMin || year > models.LedgerYearMax {
		return now.Year()
	}
	return year
}
