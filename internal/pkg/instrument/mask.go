package instrument

import (
	"encoding/json"
	"strings"
)

// MaskValue is the replacement written in place of masked values.
const MaskValue = "***"

// MaskKeys normalizes field names into a lookup set. Matching is case-insensitive.
func MaskKeys(fields []string) map[string]struct{} {
	keys := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(strings.ToLower(field))
		if field != "" {
			keys[field] = struct{}{}
		}
	}
	return keys
}

// Mask walks decoded JSON (maps and slices) and replaces values under masked keys.
func Mask(v any, keys map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if _, found := keys[strings.ToLower(k)]; found {
				out[k] = MaskValue
			} else {
				out[k] = Mask(v2, keys)
			}
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			out[k] = v2
		}
		return Mask(out, keys)
	case []any:
		out := make([]any, len(val))
		for i, v2 := range val {
			out[i] = Mask(v2, keys)
		}
		return out
	default:
		return v
	}
}

// MaskJSON masks a JSON document. ok is false when payload is not a JSON object or array.
func MaskJSON(payload []byte, keys map[string]struct{}) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(Mask(body, keys))
	if err != nil {
		return "", false
	}
	return string(out), true
}
