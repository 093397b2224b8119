package repository

import (
	"time"
)

// timeLayout is the RFC3339 format for timestamps in the workbook
const timeLayout = time.RFC3339

// parseTime parses a time string in RFC3339 format. An empty string yields
// the zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
