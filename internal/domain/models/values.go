// internal/domain/models/values.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Timestamp holds a date/time exactly as the API sent it.
//
// Decoding never fails: null, numbers and malformed strings are kept as
// raw text and simply report !ok from Time. Aggregations use that to
// exclude a record from a bucket instead of failing a whole list fetch.
type Timestamp string

// timestampLayouts are tried in order by Time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewTimestamp formats t the way the API does (RFC 3339, UTC).
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(time.RFC3339Nano))
}

// Time parses the timestamp. ok is false when the value is missing or
// not in a recognised layout.
func (ts Timestamp) Time() (t time.Time, ok bool) {
	s := strings.TrimSpace(string(ts))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	// Epoch milliseconds.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// UnmarshalJSON accepts any JSON value.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*ts = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*ts = Timestamp(s)
		return nil
	}
	*ts = Timestamp(b)
	return nil
}

// Amount is a decimal currency value in rupees.
//
// The API is not consistent about sending prices as numbers; numeric
// strings are accepted and anything else decodes to 0.
type Amount float64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*a = Amount(f)
			return nil
		}
	}
	*a = 0
	return nil
}

// Count is a non-negative integer counter (scans, clicks) decoded tolerantly.
type Count int64

// UnmarshalJSON accepts integers, floats, numeric strings and null.
func (c *Count) UnmarshalJSON(b []byte) error {
	var a Amount
	_ = a.UnmarshalJSON(b)
	if a < 0 {
		a = 0
	}
	*c = Count(a)
	return nil
}
