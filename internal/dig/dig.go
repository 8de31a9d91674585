// Package dig provides safe traversal of loosely-structured JSON values by
// dotted path. The ad platform returns objects whose shape varies between
// creative variants, so every consumer digs with a default instead of
// assuming a field exists.
package dig

import (
	"strconv"
	"strings"
)

// Get traverses root component by component along a dotted path and returns
// the value found there, or def when any step cannot be taken.
//
// Maps are traversed by key. Slices are traversed by integer index, so the
// corresponding path segment must parse as an int ("child_attachments.0.name").
// A missing key, an out-of-range or non-numeric index, a nil value, or a
// value that supports neither form of traversal all yield def. The input is
// never mutated.
func Get(root any, path string, def any) any {
	cur := root
	if path != "" {
		for _, seg := range strings.Split(path, ".") {
			switch v := cur.(type) {
			case map[string]any:
				next, ok := v[seg]
				if !ok {
					return def
				}
				cur = next
			case []any:
				idx, err := strconv.Atoi(seg)
				if err != nil || idx < 0 || idx >= len(v) {
					return def
				}
				cur = v[idx]
			default:
				return def
			}
		}
	}
	if cur == nil {
		return def
	}
	return cur
}

// GetString returns the string at path, or def when the path is absent or
// the value is not a string.
func GetString(root any, path string, def string) string {
	if s, ok := Get(root, path, nil).(string); ok {
		return s
	}
	return def
}

// GetSlice returns the []any at path, or nil when absent or wrong-shaped.
func GetSlice(root any, path string) []any {
	if s, ok := Get(root, path, nil).([]any); ok {
		return s
	}
	return nil
}

// GetMap returns the map[string]any at path, or nil when absent or
// wrong-shaped.
func GetMap(root any, path string) map[string]any {
	if m, ok := Get(root, path, nil).(map[string]any); ok {
		return m
	}
	return nil
}
