// Package redact masks values whose key names indicate sensitive content
// before they cross a transport boundary. Masking is driven purely by key
// names; values are never inspected.
package redact

import "strings"

// Mask replaces every value under a denylisted key.
const Mask = "***"

// DefaultDenylist guards general log and notification payloads.
var DefaultDenylist = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"authorization",
	"cookie",
	"credit_card",
	"cvv",
	"ssn",
}

// BroadcastDenylist is the narrower list applied to records published on
// the real-time log topic.
var BroadcastDenylist = []string{
	"password",
	"token",
	"secret",
	"_token",
	"api_token",
}

// Redact returns a copy of data with every value masked whose lower-cased
// key contains a denylist substring, at any nesting depth. Nested maps
// recurse; all other values, slices included, are opaque leaves. The input
// is never mutated.
func Redact(data map[string]any, denylist []string) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for key, value := range data {
		if sensitive(key, denylist) {
			out[key] = Mask
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			out[key] = Redact(nested, denylist)
			continue
		}
		out[key] = value
	}
	return out
}

func sensitive(key string, denylist []string) bool {
	lower := strings.ToLower(key)
	for _, needle := range denylist {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
