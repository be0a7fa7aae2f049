package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HistoryWindow is a parsed history query, both bounds at UTC midnight.
type HistoryWindow struct {
	Start time.Time
	End   time.Time
}

// ParseHistoryWindow extracts the history window from query parameters.
//
// Both parameters are optional:
//   - end defaults to today
//   - start defaults to days-1 days before end, giving a window of days points
//
// Ordering of the bounds is not checked here; the history service rejects
// an end before start.
//
// Returns an error if a parameter is present but cannot be parsed as a date.
func ParseHistoryWindow(startParam, endParam string, days int, today time.Time) (HistoryWindow, error) {
	var w HistoryWindow

	if endParam != "" {
		end, err := parseQueryDate(endParam)
		if err != nil {
			return HistoryWindow{}, fmt.Errorf("invalid end format: %w", err)
		}
		w.End = end
	} else {
		w.End = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	}

	if startParam != "" {
		start, err := parseQueryDate(startParam)
		if err != nil {
			return HistoryWindow{}, fmt.Errorf("invalid start format: %w", err)
		}
		w.Start = start
	} else {
		if days < 1 {
			days = 1
		}
		w.Start = w.End.AddDate(0, 0, -(days - 1))
	}

	return w, nil
}

// ParseSymbols splits a comma-separated symbols parameter, dropping blanks.
// Case and duplicates are left to the quote fetcher.
func ParseSymbols(param string) []string {
	if strings.TrimSpace(param) == "" {
		return nil
	}
	parts := strings.Split(param, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseBool parses an optional boolean flag; an empty value is false.
func ParseBool(param string) (bool, error) {
	if param == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(param)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", param)
	}
	return b, nil
}

// parseQueryDate accepts YYYY-MM-DD and RFC3339, returning UTC midnight of the date.
func parseQueryDate(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, str); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date", str)
}
