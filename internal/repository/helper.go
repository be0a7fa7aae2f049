package repository

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	// fixed width so stored timestamps compare correctly as text
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(dateLayout, str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// formatTimestamp renders t for DATETIME columns written by this package.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
