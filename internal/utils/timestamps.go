package utils

import "time"

// The API sends ISO-8601 timestamps, with or without a zone and fraction.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimestamp reads an API timestamp. Values without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
