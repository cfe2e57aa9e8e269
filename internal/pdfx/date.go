package pdfx

import (
	"math"
	"strings"
	"time"
)

const (
	datePrefix = "D:"
	dateDigits = 14
	dateLayout = "20060102150405"
)

// Dates must fit in int64 nanoseconds since the epoch, roughly 1677 to 2262.
var (
	minDate = time.Unix(0, math.MinInt64).UTC()
	maxDate = time.Unix(0, math.MaxInt64).UTC()
)

// ParseDate parses a PDF date string of the form D:YYYYMMDDHHMMSS.
// Only the 14 digits after the prefix are read; any trailing timezone is ignored
// and the result is UTC. The boolean is false for anything else, including
// dates outside the storable range.
func ParseDate(value string) (time.Time, bool) {
	if !strings.HasPrefix(value, datePrefix) {
		return time.Time{}, false
	}
	digits := value[len(datePrefix):]
	if len(digits) < dateDigits {
		return time.Time{}, false
	}
	digits = digits[:dateDigits]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return time.Time{}, false
		}
	}
	ts, err := time.ParseInLocation(dateLayout, digits, time.UTC)
	if err != nil || ts.Before(minDate) || ts.After(maxDate) {
		return time.Time{}, false
	}
	return ts, true
}
