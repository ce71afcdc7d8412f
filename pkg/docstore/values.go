package docstore

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// String reads a string field, "" when missing or of another type.
func String(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// Bool reads a boolean field, false when missing.
func Bool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

// Int reads an integer field stored as any numeric type.
func Int(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Array reads an array field.
func Array(data map[string]interface{}, key string) []interface{} {
	if v, ok := data[key].([]interface{}); ok {
		return v
	}
	return nil
}

// Time reads a timestamp field. See Timestamp for the accepted encodings.
func Time(data map[string]interface{}, key string) *time.Time {
	t, ok := Timestamp(data[key])
	if !ok {
		return nil
	}
	return &t
}

// Timestamp normalizes the encodings a timestamp can take in stored documents:
// native time values, {seconds, nanoseconds} maps written by web clients,
// epoch seconds, and ISO-8601 strings with or without a time part.
func Timestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case map[string]interface{}:
		secs, ok := numeric(t["seconds"])
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := numeric(t["nanoseconds"])
		return time.Unix(int64(secs), int64(nanos)), true
	case int64:
		return time.Unix(t, 0), true
	case int:
		return time.Unix(int64(t), 0), true
	case float64:
		sec, frac := math.Modf(t)
		return time.Unix(int64(sec), int64(frac*1e9)), true
	case string:
		return parseTimeString(t)
	}
	return time.Time{}, false
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
