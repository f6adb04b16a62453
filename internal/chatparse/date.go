package chatparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeDate turns the raw date and time substrings captured from a
// message line into a UTC instant. The day/month/year order is resolved from
// the position of the 4-digit part; with a 2-digit year the conventional
// day-first order is assumed and the century is expanded relative to now.
// Genuinely ambiguous all-2-digit dates (03/04/05) stay day-first.
func NormalizeDate(dateStr, timeStr string, now time.Time) (time.Time, error) {
	if now.IsZero() {
		now = time.Now()
	}

	parts := splitDate(dateStr)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date %q: want 3 parts, got %d", dateStr, len(parts))
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q: part %q not numeric", dateStr, p)
		}
		nums[i] = n
	}

	var year, month, day int
	switch {
	case len(parts[0]) == 4 && len(parts[2]) != 4:
		// Y/M/D
		year, month, day = nums[0], nums[1], nums[2]
	case len(parts[2]) == 4 && len(parts[0]) != 4:
		// Day-first by default; a middle part that cannot be a month means
		// the export was M/D/Y.
		year, day, month = nums[2], nums[0], nums[1]
		if month > 12 && day <= 12 {
			day, month = month, day
		}
	default:
		// No (or two) 4-digit parts: D/M/YY with century expansion.
		day, month = nums[0], nums[1]
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		year = expandYear(nums[2], now.Year())
	}

	hour, minute, second, err := parseClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q: no such calendar date", dateStr)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject anything that
	// did not round-trip.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("date %q: no such calendar date", dateStr)
	}
	return t, nil
}

// expandYear maps a 2-digit year into the century nearest refYear, biased to
// the current century unless that lands more than 50 years in the future.
func expandYear(yy, refYear int) int {
	if yy >= 100 {
		return yy
	}
	year := (refYear/100)*100 + yy
	if year > refYear+50 {
		year -= 100
	}
	return year
}

func parseClock(timeStr string) (hour, minute, second int, err error) {
	s := strings.TrimSpace(timeStr)

	meridiem := ""
	for _, suffix := range []string{"AM", "PM", "am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = strings.ToUpper(suffix)
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, 0, fmt.Errorf("time %q: want H:M or H:M:S", timeStr)
	}
	hour, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("time %q: bad hour", timeStr)
	}
	minute, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("time %q: bad minute", timeStr)
	}
	if len(fields) == 3 {
		second, err = strconv.Atoi(fields[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("time %q: bad second", timeStr)
		}
	}

	switch meridiem {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0, fmt.Errorf("time %q: out of range", timeStr)
	}
	return hour, minute, second, nil
}

func splitDate(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
}
