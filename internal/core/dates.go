package core

import (
	"fmt"
	"regexp"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var (
	dayPattern   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	monthPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)
)

// ParseLocalDate parses a strict "YYYY-MM-DD" string as local midnight.
// It reports false for anything else, including impossible dates such as
// month 13 or February 30.
func ParseLocalDate(s string) (time.Time, bool) {
	if !dayPattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateToString formats t as a local "YYYY-MM-DD".
func DateToString(t time.Time) string {
	return t.Local().Format(dayLayout)
}

// Today returns the local date as "YYYY-MM-DD".
func Today() string {
	return DateToString(time.Now())
}

// MonthKeyOf returns the local "YYYY-MM" month of t.
func MonthKeyOf(t time.Time) string {
	return t.Local().Format(monthLayout)
}

// CurrentMonth returns the local month key for today.
func CurrentMonth() string {
	return MonthKeyOf(time.Now())
}

// ParseMonthKey parses "YYYY-MM" to local midnight of the first day.
func ParseMonthKey(key string) (time.Time, bool) {
	if !monthPattern.MatchString(key) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(monthLayout, key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthLabel renders a month key for display, e.g. "March 2025".
// Malformed keys yield "".
func MonthLabel(key string) string {
	t, ok := ParseMonthKey(key)
	if !ok {
		return ""
	}
	return t.Format("January 2006")
}

// PrevMonth returns the month key before key, or "" if key is malformed.
func PrevMonth(key string) string {
	return shiftMonth(key, -1)
}

// NextMonth returns the month key after key, or "" if key is malformed.
func NextMonth(key string) string {
	return shiftMonth(key, 1)
}

func shiftMonth(key string, months int) string {
	t, ok := ParseMonthKey(key)
	if !ok {
		return ""
	}
	// t is always day 1, so AddDate never overflows into another month.
	t = t.AddDate(0, months, 0)
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
