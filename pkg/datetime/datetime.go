// Package datetime turns the date representations found in booking documents
// into time values and display strings.
//
// Documents written by different clients carry dates as ISO-8601 strings,
// human formatted strings ("May 10, 2025"), native time values, BSON datetimes
// or serialized timestamp pairs ({seconds, nanoseconds}). Parse accepts all of
// them; values that cannot be parsed are kept verbatim so callers can decide
// how to degrade.
package datetime

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const (
	DisplayLayout = "Jan 02, 2006"
	DateLayout    = "2006-01-02"
	NotAvailable  = "N/A"
)

// Layouts without a zone are wall-clock readings: the same digits mean a
// different instant in each location.
var layouts = []struct {
	layout   string
	floating bool
}{
	{time.RFC3339Nano, false},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05.000Z", false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{DateLayout, true},
	{DisplayLayout, true},
	{"Jan 2, 2006", true},
	{"January 2, 2006", true},
	{time.RFC1123Z, false},
	{time.RFC1123, false},
}

// Value is a date taken from a document. It is either a parsed time, an
// unparseable raw string, or absent.
type Value struct {
	t        time.Time
	raw      string
	ok       bool
	floating bool
}

func Of(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{t: t, ok: true}
}

// Parse converts any supported representation. It never fails: the returned
// Value reports through Time whether a usable instant was found.
func Parse(input any) Value {
	return ParseIn(input, time.Local)
}

func ParseIn(input any, loc *time.Location) Value {
	switch v := input.(type) {
	case nil:
		return Value{}
	case Value:
		return v
	case *Value:
		if v == nil {
			return Value{}
		}
		return *v
	case time.Time:
		return Of(v)
	case *time.Time:
		if v == nil {
			return Value{}
		}
		return Of(*v)
	case interface{ Time() time.Time }:
		return Of(v.Time())
	case string:
		return parseString(v, loc)
	case map[string]any:
		return parseTimestampPair(v)
	case json.Number:
		return parseString(v.String(), loc)
	default:
		return Value{raw: fmt.Sprint(v)}
	}
}

func parseString(s string, loc *time.Location) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
			return Value{t: t, raw: s, ok: true, floating: l.floating}
		}
	}
	return Value{raw: s}
}

func parseTimestampPair(m map[string]any) Value {
	secs, ok := number(m["seconds"])
	if !ok {
		secs, ok = number(m["_seconds"])
	}
	if !ok {
		return Value{raw: fmt.Sprint(m)}
	}
	nanos, _ := number(m["nanoseconds"])
	if nanos == 0 {
		nanos, _ = number(m["_nanoseconds"])
	}
	return Of(time.Unix(int64(secs), int64(nanos)))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Time returns the parsed instant and whether one exists.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.ok
}

// In returns the instant as seen from loc. Wall-clock values such as
// "2025-05-10" keep their calendar fields and are re-anchored in loc.
func (v Value) In(loc *time.Location) (time.Time, bool) {
	if !v.ok {
		return time.Time{}, false
	}
	if !v.floating {
		return v.t.In(loc), true
	}
	return time.Date(v.t.Year(), v.t.Month(), v.t.Day(), v.t.Hour(), v.t.Minute(), v.t.Second(), v.t.Nanosecond(), loc), true
}

func (v Value) IsZero() bool {
	return !v.ok && v.raw == ""
}

// Raw returns the original string form, if the value came from one.
func (v Value) Raw() string {
	return v.raw
}

// String renders the value for storage: RFC3339 when parsed, the raw string otherwise.
func (v Value) String() string {
	if v.ok {
		if v.raw != "" {
			return v.raw
		}
		return v.t.Format(time.RFC3339)
	}
	return v.raw
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	if v.ok {
		return json.Marshal(v.t.Format(time.RFC3339))
	}
	return json.Marshal(v.raw)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Parse(raw)
	return nil
}

// Format renders the display form used across dashboards and exports.
// Missing or unparseable input renders as "N/A".
func Format(input any) string {
	v := Parse(input)
	t, ok := v.Time()
	if !ok {
		return NotAvailable
	}
	return t.Format(DisplayLayout)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	return now.With(t).BeginningOfDay()
}

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a.In(b.Location())).Equal(StartOfDay(b))
}
