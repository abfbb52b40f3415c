// Package totp derives RFC 6238 time-based codes (SHA-1, six digits,
// 30-second windows) from a decoded key.
package totp

import (
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"

	"github.com/semmy-space/auth/internal/codec"
)

const (
	// Period is the window length in seconds.
	Period uint64 = 30
	// Digits is the code length.
	Digits = 6
)

var hotpOpts = hotp.ValidateOpts{
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Counter returns the HOTP counter for unixTime with the given window length.
func Counter(step, unixTime uint64) uint64 {
	if step == 0 {
		step = Period
	}
	return unixTime / step
}

// GenerateStep returns the code for key at unixTime using a window of step
// seconds.
func GenerateStep(key []byte, step, unixTime uint64) string {
	// hotp takes the key as Base32 text; Encode and the decoder in hotp are
	// exact inverses, so this cannot fail.
	code, err := hotp.GenerateCodeCustom(codec.Encode(key), Counter(step, unixTime), hotpOpts)
	if err != nil {
		panic(fmt.Sprintf("totp: re-encoded key rejected: %v", err))
	}
	return code
}

// Generate returns the code for key at unixTime.
func Generate(key []byte, unixTime uint64) string {
	return GenerateStep(key, Period, unixTime)
}

// Previous returns the code of the window before now. Times inside the first
// window clamp to zero.
func Previous(key []byte, now uint64) string {
	if now < Period {
		return Generate(key, 0)
	}
	return Generate(key, now-Period)
}

// Current returns the code of the window containing now.
func Current(key []byte, now uint64) string {
	return Generate(key, now)
}

// Next returns the code of the window after now.
func Next(key []byte, now uint64) string {
	return Generate(key, now+Period)
}

// Remaining returns the seconds left in the window containing now, in [1, 30].
func Remaining(now uint64) uint64 {
	return Period - now%Period
}

// Window is the set of codes shown for one entry at one instant.
type Window struct {
	Previous  string
	Current   string
	Next      string
	Remaining uint64
}

// Codes returns the window codes separated by spaces, oldest first.
func (w Window) Codes() string {
	return w.Previous + " " + w.Current + " " + w.Next
}

// WindowAt computes the previous, current and next codes for key at now.
func WindowAt(key []byte, now uint64) Window {
	return Window{
		Previous:  Previous(key, now),
		Current:   Current(key, now),
		Next:      Next(key, now),
		Remaining: Remaining(now),
	}
}
