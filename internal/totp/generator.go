package totp

import "github.com/semmy-space/auth/internal/codec"

// Generator decodes stored secrets with a fixed mode and derives codes from
// them. The zero value uses codec.DefaultMode.
type Generator struct {
	Mode codec.Mode
}

// NewGenerator returns a Generator for mode.
func NewGenerator(mode codec.Mode) Generator {
	return Generator{Mode: mode}
}

// Code returns the current code for secret at now.
func (g Generator) Code(secret string, now uint64) (string, error) {
	key, err := codec.Decode(secret, g.Mode)
	if err != nil {
		return "", err
	}
	return Current(key, now), nil
}

// Window returns the previous, current and next codes for secret at now.
func (g Generator) Window(secret string, now uint64) (Window, error) {
	key, err := codec.Decode(secret, g.Mode)
	if err != nil {
		return Window{Remaining: Remaining(now)}, err
	}
	return WindowAt(key, now), nil
}
