package otpauth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/auth/internal/codec"
	"github.com/semmy-space/auth/internal/totp"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    Parsed
		wantErr error
	}{
		{
			name: "issuer in label and query",
			uri:  "otpauth://totp/Example:alice@google.com?secret=JBSWY3DPEHPK3PXP&issuer=Example",
			want: Parsed{Name: "Example:alice@google.com", Secret: "JBSWY3DPEHPK3PXP", Issuer: "Example", Account: "alice@google.com"},
		},
		{
			name: "no issuer",
			uri:  "otpauth://totp/alice?secret=jbswy3dpehpk3pxp",
			want: Parsed{Name: "alice", Secret: "JBSWY3DPEHPK3PXP", Account: "alice"},
		},
		{
			name: "own issuer is dropped",
			uri:  "otpauth://totp/auth:github?secret=JBSWY3DPEHPK3PXP&issuer=auth",
			want: Parsed{Name: "github", Secret: "JBSWY3DPEHPK3PXP", Issuer: "auth", Account: "github"},
		},
		{
			name:    "hotp",
			uri:     "otpauth://hotp/alice?secret=JBSWY3DPEHPK3PXP&counter=1",
			wantErr: ErrUnsupported,
		},
		{
			name:    "eight digits",
			uri:     "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&digits=8",
			wantErr: ErrUnsupported,
		},
		{
			name:    "sha256",
			uri:     "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&algorithm=SHA256",
			wantErr: ErrUnsupported,
		},
		{
			name:    "sixty second period",
			uri:     "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&period=60",
			wantErr: ErrUnsupported,
		},
		{
			name:    "bad secret",
			uri:     "otpauth://totp/alice?secret=not-base32!",
			wantErr: codec.ErrInvalidEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri, DefaultIssuer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseURIRejectsGarbage(t *testing.T) {
	_, err := ParseURI("https://example.com", DefaultIssuer)
	assert.Error(t, err)
}

func TestBuildURIRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		entry  string
		secret string
		mode   codec.Mode
		want   Parsed
	}{
		{
			name:   "plain name takes default issuer",
			entry:  "github",
			secret: "jbsw y3dp ehpk 3pxp",
			mode:   codec.ModeBase32,
			want:   Parsed{Name: "github", Secret: "JBSWY3DPEHPK3PXP", Issuer: DefaultIssuer, Account: "github"},
		},
		{
			name:   "issuer prefix is kept",
			entry:  "Example:alice",
			secret: "JBSWY3DPEHPK3PXP",
			mode:   codec.ModeBase32,
			want:   Parsed{Name: "Example:alice", Secret: "JBSWY3DPEHPK3PXP", Issuer: "Example", Account: "alice"},
		},
		{
			name:   "raw secret is base32 encoded",
			entry:  "rfc",
			secret: "12345678901234567890",
			mode:   codec.ModeRaw,
			want:   Parsed{Name: "rfc", Secret: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", Issuer: DefaultIssuer, Account: "rfc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := BuildURI(tt.entry, tt.secret, tt.mode, "")
			require.NoError(t, err)
			assert.Contains(t, uri, "otpauth://totp/")

			got, err := ParseURI(uri, DefaultIssuer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildURIKeepsCodes(t *testing.T) {
	uri, err := BuildURI("rfc", "12345678901234567890", codec.ModeRaw, "")
	require.NoError(t, err)
	p, err := ParseURI(uri, DefaultIssuer)
	require.NoError(t, err)

	code, err := totp.NewGenerator(codec.ModeBase32).Code(p.Secret, 59)
	require.NoError(t, err)
	assert.Equal(t, "287082", code)
}

func TestBuildURIInvalidSecret(t *testing.T) {
	_, err := BuildURI("x", "!!!", codec.ModeBase32, "")
	assert.ErrorIs(t, err, codec.ErrInvalidEncoding)
}

func TestVerify(t *testing.T) {
	at := time.Unix(59, 0)
	tests := []struct {
		code string
		want bool
	}{
		{"996554", true},
		{"282760", true},
		{"602287", true},
		{"123456", false},
		{"abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ok, err := Verify("JBSWY3DPEHPK3PXP", codec.ModeBase32, tt.code, at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := Verify("!!!", codec.ModeBase32, "000000", at)
	assert.ErrorIs(t, err, codec.ErrInvalidEncoding)
}

func TestRenderQR(t *testing.T) {
	out, err := RenderQR("otpauth://totp/auth:github?secret=JBSWY3DPEHPK3PXP&issuer=auth")
	require.NoError(t, err)
	assert.Greater(t, len(out), 100)
	assert.Contains(t, out, "\n")
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.png")

	require.NoError(t, WritePNG("otpauth://totp/x?secret=JBSWY3DPEHPK3PXP", path, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
