package entities

import (
	"strings"
	"time"

	"ehr-analysis-service/internal/domain"
)

// TimestampLayout is the record timestamp format. time.Parse accepts a
// fractional second of any precision after the seconds field, so values such
// as "1992-07-01 01:36:17.910" and "1950-01-01 00:00:00.000000" both parse.
const TimestampLayout = "2006-01-02 15:04:05"

// ParseTimestamp parses a record timestamp as a UTC wall-clock time.
func ParseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, domain.NewParseError("", 0, field, value, "expected YYYY-MM-DD HH:MM:SS.ffffff", err)
	}
	return t, nil
}
