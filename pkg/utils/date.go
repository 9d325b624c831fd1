package utils

import (
	"strings"
	"time"
)

// ParseDate parses a YYYY-MM-DD value. An empty string yields nil.
func ParseDate(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

// FormatDate renders an optional date as YYYY-MM-DD, or "" when nil.
func FormatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(time.DateOnly)
}
