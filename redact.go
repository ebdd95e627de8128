package moltbook

import "strings"

// secretFields are response keys whose string values are masked before display.
var secretFields = map[string]bool{
	"api_key":      true,
	"apikey":       true,
	"access_token": true,
	"token":        true,
}

// Redact returns a copy of v with secret string fields replaced by their
// MaskKey rendering. Maps and slices are copied; other values are shared.
func Redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if s, ok := val.(string); ok && secretFields[strings.ToLower(k)] {
				out[k] = MaskKey(s)
				continue
			}
			out[k] = Redact(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Redact(val)
		}
		return out
	default:
		return v
	}
}

// RedactFields is Redact for a Result's top-level mapping.
func RedactFields(fields map[string]any) map[string]any {
	out, _ := Redact(fields).(map[string]any)
	return out
}

// ScrubKey replaces every occurrence of key in s with its masked form.
func ScrubKey(s, key string) string {
	if key == "" {
		return s
	}
	return strings.ReplaceAll(s, key, MaskKey(key))
}
