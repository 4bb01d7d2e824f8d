package utils

import (
	"encoding/base64"
	"encoding/json"
)

// EncodeCursor serializes a last-evaluated key into an opaque, URL-safe
// pagination cursor. Returns "" for an empty key (no more pages).
func EncodeCursor(lastKey map[string]string) string {
	if len(lastKey) == 0 {
		return ""
	}
	raw, err := json.Marshal(lastKey)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor. Malformed input yields nil rather than
// an error: callers treat a bad cursor as "start from the beginning".
func DecodeCursor(cursor string) map[string]string {
	if cursor == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil
	}
	var key map[string]string
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil
	}
	if len(key) == 0 {
		return nil
	}
	return key
}
