package domain

import (
	"fmt"
	"time"
)

// timestampLayouts are accepted on top of RFC 3339. Sources occasionally
// publish naive timestamps without a zone designator; those are assumed UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UTC normalizes a timestamp to UTC. Entities never hold a timestamp in any
// other location after construction.
func UTC(t time.Time) time.Time {
	return t.UTC()
}

// ParseTimestamp parses a source timestamp string. Naive timestamps are
// interpreted as UTC; zone-aware timestamps are converted to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
