// Package reldate resolves the relative-date expressions accepted by the
// date-windowed search commands (study, lasttrained, mistaken).
//
// An expression resolves to a calendar date at local midnight. The empty
// string does not resolve; callers use that to mean "no bound".
package reldate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dayRe      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	monthRe    = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	yearRe     = regexp.MustCompile(`^(\d{4})$`)
	relativeRe = regexp.MustCompile(`^(\d+)([dwmy])?$`)
)

// Parse resolves a relative-date expression against the given reference time.
// Supported forms:
//
//	2024-05-01  absolute day
//	2024-05     first day of the month
//	2024        first day of the year
//	7           7 days before now
//	2w          2 weeks before now (also d, m, y suffixes)
//	today, yesterday, thisweek, thismonth, thisyear
//
// The second return value is false when the expression does not resolve.
func Parse(s string, now time.Time) (time.Time, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, false
	}

	today := midnight(now)

	switch s {
	case "today":
		return today, true
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	case "thisweek":
		// Weeks start on Monday.
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), true
	case "thismonth":
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), true
	case "thisyear":
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()), true
	}

	if m := dayRe.FindStringSubmatch(s); m != nil {
		t, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if m := monthRe.FindStringSubmatch(s); m != nil {
		t, err := time.ParseInLocation("2006-01", s, now.Location())
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if yearRe.MatchString(s) {
		year, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()), true
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		switch m[2] {
		case "", "d":
			return today.AddDate(0, 0, -n), true
		case "w":
			return today.AddDate(0, 0, -7*n), true
		case "m":
			return today.AddDate(0, -n, 0), true
		case "y":
			return today.AddDate(-n, 0, 0), true
		}
	}

	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
