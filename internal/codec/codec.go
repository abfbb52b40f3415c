// Package codec turns a stored secret into the byte key used for HMAC.
//
// Two modes exist. ModeBase32 is the default: the secret is RFC 4648 Base32
// text (padding optional) and the decoded key is zero-padded to MinKeyLen
// bytes. ModeRaw is kept for stores written by older releases, where the
// secret's own bytes were used as the key without any decoding.
package codec

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Mode selects how a secret is turned into a key.
type Mode string

const (
	// ModeBase32 decodes the secret as Base32 and pads the key to MinKeyLen.
	ModeBase32 Mode = "base32"
	// ModeRaw uses the secret's bytes as the key.
	ModeRaw Mode = "raw"
)

// DefaultMode is the mode used when none is configured.
const DefaultMode = ModeBase32

// MinKeyLen is the length short Base32 keys are zero-padded to.
const MinKeyLen = 16

// ErrInvalidEncoding is returned when a secret cannot be decoded.
var ErrInvalidEncoding = errors.New("invalid secret encoding")

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// ParseMode validates a mode name. An empty name yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMode, nil
	case ModeBase32:
		return ModeBase32, nil
	case ModeRaw:
		return ModeRaw, nil
	default:
		return "", fmt.Errorf("unknown decode mode: %s", s)
	}
}

// Normalize strips whitespace, dashes and trailing padding from a Base32
// secret and upper-cases it. Authenticator secrets are commonly shown in
// lower-case groups of four, e.g. "jbsw y3dp ehpk 3pxp".
func Normalize(secret string) string {
	var b strings.Builder
	b.Grow(len(secret))
	for _, r := range secret {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return strings.TrimRight(b.String(), "=")
}

// DecodeBase32 decodes a Base32 secret without padding the result.
func DecodeBase32(secret string) ([]byte, error) {
	s := Normalize(secret)
	if s == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidEncoding)
	}
	key, err := b32.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return key, nil
}

// Decode returns the HMAC key for secret under mode.
func Decode(secret string, mode Mode) ([]byte, error) {
	switch mode {
	case ModeRaw:
		if secret == "" {
			return nil, fmt.Errorf("%w: empty secret", ErrInvalidEncoding)
		}
		return []byte(secret), nil
	case ModeBase32, "":
		key, err := DecodeBase32(secret)
		if err != nil {
			return nil, err
		}
		return Pad(key), nil
	default:
		return nil, fmt.Errorf("unknown decode mode: %s", mode)
	}
}

// Pad zero-extends key to MinKeyLen bytes. Longer keys are returned as is.
func Pad(key []byte) []byte {
	if len(key) >= MinKeyLen {
		return key
	}
	padded := make([]byte, MinKeyLen)
	copy(padded, key)
	return padded
}

// Encode renders key as unpadded Base32, the form otpauth URIs carry.
func Encode(key []byte) string {
	return b32.EncodeToString(key)
}

// Sanitize prepares user input for storage under mode. Base32 secrets are
// normalized; raw secrets only lose surrounding whitespace, since every
// other byte is part of the key.
func Sanitize(secret string, mode Mode) string {
	if mode == ModeRaw {
		return strings.TrimSpace(secret)
	}
	return Normalize(secret)
}
