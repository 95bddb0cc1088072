// Package wpdate implements the date representation used in WordPress REST
// API payloads: a fixed "yyyy-MM-ddTHH:mm:ssZ" layout in UTC.
//
// See https://core.trac.wordpress.org/ticket/41032 for background.
package wpdate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the wire format of WordPress dates.
const Layout = "2006-01-02T15:04:05Z"

// Parse parses a wire-formatted date string as UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected date string to be WordPress formatted: %w", err)
	}
	return t, nil
}

// Format renders t in the wire format. Sub-second precision is dropped.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Time is a time.Time that marshals to and from the wire format.
type Time struct {
	time.Time
}

// New wraps t, truncated to whole seconds in UTC.
func New(t time.Time) Time {
	return Time{Time: t.UTC().Truncate(time.Second)}
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(Format(t.Time))
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null leaves t unchanged.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a JSON string: %w", err)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// String returns the wire representation.
func (t Time) String() string {
	return Format(t.Time)
}
