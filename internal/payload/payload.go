// Package payload encodes channel identifiers for Telegram deep links.
//
// A deep link looks like https://t.me/<bot>?start=<payload>. The payload has
// to survive as a single URL token and carry any signed 64-bit chat id,
// including the -100-prefixed supergroup range. The transform is obscurity
// only, not encryption: the raw big-endian bytes of the id in unpadded
// url-safe base64, always 11 characters. Fixed length means a truncated or
// hand-edited payload never decodes into some other channel's id.
//
// The "req_" mode tag that switches a link into the join-request flow is the
// caller's concern; SplitMode strips it before Decode sees the payload.
package payload

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
)

// ErrInvalidPayload is returned for anything Decode cannot prove was
// produced by Encode.
var ErrInvalidPayload = errors.New("invalid deep-link payload")

// RequestPrefix tags a payload as the join-request flow.
const RequestPrefix = "req_"

const encodedLen = 11 // 8 bytes big-endian -> ceil(64/6) base64 chars

// Strict decoding rejects non-canonical trailing bits, so the only strings
// that decode are exactly the ones Encode produces.
var enc = base64.RawURLEncoding.Strict()

// Encode turns a channel id into an opaque deep-link token.
func Encode(channelId int64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(channelId))
	return enc.EncodeToString(buf[:])
}

// Decode reverses Encode. Any malformed, truncated or oversized input
// yields ErrInvalidPayload.
func Decode(s string) (int64, error) {
	if len(s) != encodedLen {
		return 0, ErrInvalidPayload
	}
	raw, err := enc.DecodeString(s)
	if err != nil || len(raw) != 8 {
		return 0, ErrInvalidPayload
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

// SplitMode strips the optional request tag from a raw start payload and
// reports whether it was present.
func SplitMode(s string) (payload string, request bool) {
	if strings.HasPrefix(s, RequestPrefix) {
		return strings.TrimPrefix(s, RequestPrefix), true
	}
	return s, false
}
