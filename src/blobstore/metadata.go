package blobstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metadata maps cross serialization boundaries (BSON, JSONB), which widen
// or narrow numeric types on the way back. The helpers below normalize what
// comes out so callers can compare and read values without caring which
// backend stored them.

// IntFromAny coerces a decoded metadata value to int.
func IntFromAny(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// StringFromAny coerces a decoded metadata value to string.
func StringFromAny(v any) string {
	s, _ := v.(string)
	return s
}

// TimeFromAny coerces a decoded metadata value to time.Time.
func TimeFromAny(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}

// CloneMetadata copies a metadata map so stores never alias caller state.
// A nil input yields an empty, writable map.
func CloneMetadata(metadata map[string]any) map[string]any {
	clone := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		clone[k] = v
	}
	return clone
}

// EnsureCreatedAt stamps a creation time when the caller supplied none.
func EnsureCreatedAt(metadata map[string]any, now time.Time) map[string]any {
	if _, ok := metadata[MetaCreatedAt]; !ok {
		metadata[MetaCreatedAt] = now
	}
	return metadata
}

// valuesEqual compares a stored metadata value against a filter value,
// normalizing numeric widths first.
func valuesEqual(stored, want any) bool {
	switch want.(type) {
	case int, int32, int64, float32, float64:
		switch stored.(type) {
		case int, int32, int64, float32, float64:
			return IntFromAny(stored) == IntFromAny(want)
		}
		return false
	}
	return stored == want
}

// MatchesFilter reports whether metadata satisfies every equality clause in
// filter. An empty filter matches everything.
func MatchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		stored, ok := metadata[key]
		if !ok || !valuesEqual(stored, want) {
			return false
		}
	}
	return true
}
