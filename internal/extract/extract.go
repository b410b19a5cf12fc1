// Package extract locates media URLs inside arbitrarily shaped gateway
// output payloads. Different backend models return strings, lists, or
// nested objects; the resolver walks whatever came back and returns the
// first candidate that satisfies the caller's validity predicate.
package extract

import "strings"

// Mode selects how list values are scanned.
type Mode int

const (
	// StrictFirst takes only element 0 of a list; other elements are
	// ignored even when element 0 does not resolve.
	StrictFirst Mode = iota
	// ScanAll walks list elements in order until one resolves.
	ScanAll
)

// maxDepth bounds the traversal on adversarial or degenerate payloads.
const maxDepth = 32

// priorityKeys are checked in order before falling back to an unordered
// scan of remaining map values.
var priorityKeys = []string{"video", "url", "mp4", "output"}

// Predicate decides whether a candidate string counts as a hit.
type Predicate func(string) bool

// IsHTTPURL is the default predicate: a non-empty string with an http
// scheme. Empty strings are never valid results.
func IsHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// URL resolves a media URL from a decoded JSON value using IsHTTPURL.
func URL(v any, mode Mode) (string, bool) {
	return Find(v, mode, IsHTTPURL)
}

// Find walks the value and returns the first string accepted by valid.
// It never panics and reports absence as ("", false).
func Find(v any, mode Mode, valid Predicate) (string, bool) {
	if valid == nil {
		valid = IsHTTPURL
	}
	return walk(v, mode, valid, 0)
}

func walk(v any, mode Mode, valid Predicate, depth int) (string, bool) {
	if depth > maxDepth {
		return "", false
	}
	switch val := v.(type) {
	case string:
		if val != "" && valid(val) {
			return val, true
		}
		return "", false
	case []any:
		if len(val) == 0 {
			return "", false
		}
		if mode == StrictFirst {
			return walk(val[0], mode, valid, depth+1)
		}
		for _, el := range val {
			if s, ok := walk(el, mode, valid, depth+1); ok {
				return s, true
			}
		}
		return "", false
	case map[string]any:
		for _, key := range priorityKeys {
			inner, present := val[key]
			if !present {
				continue
			}
			if s, ok := walk(inner, mode, valid, depth+1); ok {
				return s, true
			}
		}
		for key, inner := range val {
			if isPriorityKey(key) {
				continue
			}
			if s, ok := walk(inner, mode, valid, depth+1); ok {
				return s, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

func isPriorityKey(key string) bool {
	for _, k := range priorityKeys {
		if k == key {
			return true
		}
	}
	return false
}
