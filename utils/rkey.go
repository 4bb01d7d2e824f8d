package utils

import (
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidURI is returned when a record URI cannot be parsed.
var ErrInvalidURI = errors.New("invalid record URI")

const uriScheme = "at://"

// base32-sortable alphabet: lexicographic order matches numeric order.
const sortAlphabet = "234567abcdefghijklmnopqrstuvwxyz"

// GenerateRecordKey produces a 13-character, time-sortable record key from the
// current time in microseconds plus 10 random bits. Uniqueness is
// probabilistic: two generators in the same microsecond collide only if the
// random bits also collide.
func GenerateRecordKey() string {
	return recordKeyAt(time.Now())
}

func recordKeyAt(now time.Time) string {
	id := uuid.New()
	clkid := uint64(binary.BigEndian.Uint16(id[0:2])) & 0x3ff

	v := uint64(now.UnixMicro())<<10 | clkid

	// 13 chars x 5 bits = 65 bits; the top bit of v is always zero.
	var b [13]byte
	for i := 12; i >= 0; i-- {
		b[i] = sortAlphabet[v&0x1f]
		v >>= 5
	}
	return string(b[:])
}

// BuildRecordURI composes the durable AT URI for a record.
func BuildRecordURI(ownerDID, collection, rkey string) string {
	return uriScheme + ownerDID + "/" + collection + "/" + rkey
}

// ParseRecordURI is the exact inverse of BuildRecordURI. Malformed input
// returns ErrInvalidURI.
func ParseRecordURI(uri string) (ownerDID, collection, rkey string, err error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", "", ErrInvalidURI
	}
	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", ErrInvalidURI
	}
	return parts[0], parts[1], parts[2], nil
}
