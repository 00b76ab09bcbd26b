package services

import (
	"strings"
	"time"
)

// ClientTimeLayout is the en-US locale format browsers produce with
// toLocaleString(), e.g. "10/23/2025, 10:30:00 AM".
const ClientTimeLayout = "1/2/2006, 3:04:05 PM"

// CSVTimeLayout is used for every timestamp written to an export.
const CSVTimeLayout = "2006-01-02 15:04:05"

var clientLayouts = []string{
	ClientTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	CSVTimeLayout,
}

// ParseClientTime parses a timestamp sent by the tracker. Times without a
// zone are read in local time.
func ParseClientTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range clientLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clientTimeOr parses value and falls back to fallback() when it cannot.
func clientTimeOr(value string, fallback func() time.Time) time.Time {
	if t, ok := ParseClientTime(value); ok {
		return t
	}
	return fallback()
}
