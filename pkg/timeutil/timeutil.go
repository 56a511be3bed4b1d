// Package timeutil anchors wall-clock strings to calendar days and provides
// the interval arithmetic shared by the scheduling engine.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/danceclub/timetable-api/pkg/errors"
)

const (
	// DateLayout is the ISO calendar-date form used across the API.
	DateLayout = "2006-01-02"
	// InstantLayout is the zone-less ISO instant form used for lesson times.
	InstantLayout = "2006-01-02T15:04:05"
)

// ParseDate parses an ISO yyyy-MM-dd date.
func ParseDate(raw string) (time.Time, error) {
	day, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, fmt.Sprintf("invalid date %q", raw))
	}
	return day, nil
}

// ParseTimeOfDay anchors a lenient hour or hour:minute string to the given
// calendar date. Accepted forms are "H", "HH", "H:", "HH:MM" and friends;
// hours above 23 or minutes above 59 are rejected. The result is pinned to
// the requested date and wall clock, so no date rollover can occur.
func ParseTimeOfDay(date, raw string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time string %q", raw))
	}

	hourPart := trimmed
	minutePart := ""
	if i := strings.IndexByte(trimmed, ':'); i >= 0 {
		hourPart = trimmed[:i]
		minutePart = trimmed[i+1:]
	}
	if !isShortDigits(hourPart) || (minutePart != "" && !isShortDigits(minutePart)) {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time string %q", raw))
	}

	hour, _ := strconv.Atoi(hourPart)
	minute := 0
	if minutePart != "" {
		minute, _ = strconv.Atoi(minutePart)
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time string %q", raw))
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), nil
}

// ParseRange splits an "HH:MM-HH:MM" window and anchors both sides to the
// given date. Ordering of the two sides is the caller's concern.
func ParseRange(raw, date string) (time.Time, time.Time, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidRangeFormat, fmt.Sprintf("invalid range %q", raw))
	}
	start, err := ParseTimeOfDay(date, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrInvalidRangeFormat.Code, appErrors.ErrInvalidRangeFormat.Status, fmt.Sprintf("invalid range %q", raw))
	}
	end, err := ParseTimeOfDay(date, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrInvalidRangeFormat.Code, appErrors.ErrInvalidRangeFormat.Status, fmt.Sprintf("invalid range %q", raw))
	}
	return start, end, nil
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DatesBetween enumerates the inclusive ISO dates from start through end.
func DatesBetween(start, end time.Time) []string {
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// FormatLocal renders a time as a zone-less ISO instant.
func FormatLocal(t time.Time) string {
	return t.Format(InstantLayout)
}

func isShortDigits(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
