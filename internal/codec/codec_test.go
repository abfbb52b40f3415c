package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Mode
		wantErr  bool
	}{
		{name: "empty defaults to base32", input: "", expected: ModeBase32},
		{name: "base32", input: "base32", expected: ModeBase32},
		{name: "raw upper-case", input: "RAW", expected: ModeRaw},
		{name: "unknown", input: "hex", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestDefaultModeIsBase32(t *testing.T) {
	assert.Equal(t, ModeBase32, DefaultMode)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "JBSWY3DPEHPK3PXP", Normalize("jbsw y3dp-ehpk 3pxp"))
	assert.Equal(t, "MFRGG", Normalize("mfrgg==="))
	assert.Equal(t, "", Normalize("  - "))
}

func TestDecodeBase32PadsShortKeys(t *testing.T) {
	key, err := Decode("JBSWY3DPEHPK3PXP", ModeBase32)
	require.NoError(t, err)

	require.Len(t, key, MinKeyLen)
	assert.Equal(t, []byte("Hello!\xde\xad\xbe\xef"), key[:10])
	assert.Equal(t, make([]byte, 6), key[10:])
}

func TestDecodeBase32KeepsLongKeys(t *testing.T) {
	key, err := Decode("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", ModeBase32)
	require.NoError(t, err)
	assert.Equal(t, []byte("12345678901234567890"), key)
}

func TestDecodeBase32AcceptsFormattedInput(t *testing.T) {
	plain, err := Decode("JBSWY3DPEHPK3PXP", ModeBase32)
	require.NoError(t, err)

	formatted, err := Decode("jbsw y3dp ehpk 3pxp", ModeBase32)
	require.NoError(t, err)
	assert.Equal(t, plain, formatted)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		mode   Mode
	}{
		{name: "characters outside alphabet", secret: "JBSWY3DP!!", mode: ModeBase32},
		{name: "digit one is not base32", secret: "ABCDEFG1", mode: ModeBase32},
		{name: "impossible length", secret: "A", mode: ModeBase32},
		{name: "empty base32", secret: "", mode: ModeBase32},
		{name: "empty raw", secret: "", mode: ModeRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.secret, tt.mode)
			assert.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}
}

func TestDecodeRawUsesSecretBytes(t *testing.T) {
	key, err := Decode("12345678901234567890", ModeRaw)
	require.NoError(t, err)
	assert.Equal(t, []byte("12345678901234567890"), key)

	short, err := Decode("abc", ModeRaw)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), short, "raw mode never pads")
}

func TestDecodeUnknownMode(t *testing.T) {
	_, err := Decode("JBSWY3DPEHPK3PXP", Mode("hex"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidEncoding)
}

func TestEncodeRoundTrip(t *testing.T) {
	key := []byte("12345678901234567890")
	assert.Equal(t, "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", Encode(key))

	decoded, err := DecodeBase32(Encode(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "JBSWY3DPEHPK3PXP", Sanitize(" jbsw-y3dp ehpk 3pxp== ", ModeBase32))
	assert.Equal(t, "JBSWY3DPEHPK3PXP", Sanitize("jbswy3dpehpk3pxp", ""))
	assert.Equal(t, "ab cd", Sanitize("  ab cd\n", ModeRaw))
}
