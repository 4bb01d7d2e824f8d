package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateRecordKeyShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		rkey := GenerateRecordKey()
		if len(rkey) != 13 {
			t.Fatalf("expected 13-char key, got %q (%d)", rkey, len(rkey))
		}
		for _, c := range rkey {
			if !strings.ContainsRune(sortAlphabet, c) {
				t.Fatalf("key %q contains %q outside the sortable alphabet", rkey, c)
			}
		}
	}
}

func TestRecordKeysSortByTime(t *testing.T) {
	earlier := recordKeyAt(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	later := recordKeyAt(time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC))
	if !(earlier < later) {
		t.Errorf("expected %q < %q, keys generated later must sort later", earlier, later)
	}
}

func TestRecordURIRoundTrip(t *testing.T) {
	did := "did:plc:ewvi7nxzyoun6zhxrhs64oiz"
	collection := "social.ripple.feed.post"
	rkey := GenerateRecordKey()

	uri := BuildRecordURI(did, collection, rkey)
	gotDID, gotCollection, gotRKey, err := ParseRecordURI(uri)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDID != did || gotCollection != collection || gotRKey != rkey {
		t.Errorf("round trip mismatch: got (%q, %q, %q)", gotDID, gotCollection, gotRKey)
	}
}

func TestParseRecordURIInvalid(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"empty", ""},
		{"wrong scheme", "https://example.com/a/b"},
		{"missing rkey", "at://did:plc:abc/social.ripple.feed.post"},
		{"missing collection", "at://did:plc:abc"},
		{"empty segment", "at://did:plc:abc//3jui7kd54zh2y"},
		{"extra segment", "at://did:plc:abc/social.ripple.feed.post/3jui7kd54zh2y/extra"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := ParseRecordURI(tt.uri); err != ErrInvalidURI {
				t.Errorf("expected ErrInvalidURI, got %v", err)
			}
		})
	}
}
