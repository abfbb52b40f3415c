// Package otpauth converts entries to and from otpauth:// provisioning URIs
// and renders them as QR codes.
package otpauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	pqtotp "github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/semmy-space/auth/internal/codec"
	"github.com/semmy-space/auth/internal/totp"
)

// DefaultIssuer labels URIs for entries whose name carries no issuer.
const DefaultIssuer = "auth"

// ErrUnsupported is returned for URIs whose parameters this tool cannot
// reproduce: anything other than TOTP with SHA1, six digits and a 30 second
// period.
var ErrUnsupported = errors.New("unsupported otpauth parameters")

// Parsed is the entry carried by a URI.
type Parsed struct {
	Name    string
	Secret  string
	Issuer  string
	Account string
}

// ParseURI reads an otpauth URI. The entry name is "issuer:account", or the
// bare account when the issuer is empty or equal to ownIssuer.
func ParseURI(uri, ownIssuer string) (Parsed, error) {
	key, err := otp.NewKeyFromURL(strings.TrimSpace(uri))
	if err != nil {
		return Parsed{}, fmt.Errorf("invalid otpauth URI: %w", err)
	}
	if key.Type() != "totp" {
		return Parsed{}, fmt.Errorf("%w: type %q", ErrUnsupported, key.Type())
	}
	if key.Algorithm() != otp.AlgorithmSHA1 {
		return Parsed{}, fmt.Errorf("%w: algorithm %s", ErrUnsupported, key.Algorithm())
	}
	if key.Digits() != otp.DigitsSix {
		return Parsed{}, fmt.Errorf("%w: %d digits", ErrUnsupported, key.Digits().Length())
	}
	if key.Period() != totp.Period {
		return Parsed{}, fmt.Errorf("%w: period %ds", ErrUnsupported, key.Period())
	}

	secret := codec.Normalize(key.Secret())
	if _, err := codec.DecodeBase32(secret); err != nil {
		return Parsed{}, err
	}
	account := strings.TrimSpace(key.AccountName())
	if account == "" {
		return Parsed{}, errors.New("invalid otpauth URI: missing account name")
	}

	p := Parsed{Secret: secret, Issuer: key.Issuer(), Account: account, Name: account}
	if p.Issuer != "" && p.Issuer != ownIssuer {
		p.Name = p.Issuer + ":" + account
	}
	return p, nil
}

// BuildURI renders an entry as an otpauth URI. A name of the form
// "issuer:account" keeps its issuer; any other name is labelled with issuer.
func BuildURI(name, secret string, mode codec.Mode, issuer string) (string, error) {
	key, err := keyBytes(secret, mode)
	if err != nil {
		return "", err
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	account := name
	if before, after, ok := strings.Cut(name, ":"); ok && before != "" && after != "" {
		issuer, account = before, after
	}

	k, err := pqtotp.Generate(pqtotp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(totp.Period),
		Secret:      key,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build otpauth URI: %w", err)
	}
	return k.URL(), nil
}

// Verify reports whether code is valid for secret at t, accepting the
// adjacent windows on either side.
func Verify(secret string, mode codec.Mode, code string, t time.Time) (bool, error) {
	key, err := codec.Decode(secret, mode)
	if err != nil {
		return false, err
	}
	ok, err := pqtotp.ValidateCustom(strings.TrimSpace(code), codec.Encode(key), t.UTC(), pqtotp.ValidateOpts{
		Period:    uint(totp.Period),
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, nil
	}
	return ok, nil
}

// RenderQR returns uri as a QR code drawn with Unicode half blocks, suitable
// for a terminal.
func RenderQR(uri string) (string, error) {
	q, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return q.ToSmallString(false), nil
}

// WritePNG writes uri as a size x size PNG QR code to path.
func WritePNG(uri, path string, size int) error {
	if size <= 0 {
		size = 256
	}
	if err := qrcode.WriteFile(uri, qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("failed to write QR code to %s: %w", path, err)
	}
	return nil
}

func keyBytes(secret string, mode codec.Mode) ([]byte, error) {
	switch mode {
	case codec.ModeRaw:
		return codec.Decode(secret, mode)
	default:
		return codec.DecodeBase32(secret)
	}
}
