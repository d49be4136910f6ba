package domain

import "time"

// TimestampLayout is the on-disk representation of every timestamp. It is
// RFC 3339 with optional fractional seconds, which keeps stored values
// ISO-8601 compatible.
const TimestampLayout = time.RFC3339Nano

// FormatTimestamp renders t for storage, always in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads a stored timestamp back into a time.Time.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(TimestampLayout, value)
}
