package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeRow struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

var codeColumns = []Column{{Name: "NAME", Key: "Name"}, {Name: "CODE", Key: "Code"}}

func TestPlainFormatterPrintList(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewWithWriters("plain", &out, &errOut)

	require.NoError(t, f.PrintList([]codeRow{{"a", "123456"}, {"b", "invalid"}}, codeColumns))

	assert.Equal(t, "NAME\tCODE\na\t123456\nb\tinvalid\n", out.String())
}

func TestPlainFormatterPrintListMaps(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("plain", &out, &bytes.Buffer{})

	rows := []map[string]string{{"Name": "a", "Code": "1"}}
	require.NoError(t, f.PrintList(rows, codeColumns))

	assert.Equal(t, "NAME\tCODE\na\t1\n", out.String())
}

func TestPlainFormatterPrintStruct(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("plain", &out, &bytes.Buffer{})

	require.NoError(t, f.Print(codeRow{Name: "a", Code: "1"}))

	assert.Equal(t, "name\ta\ncode\t1\n", out.String())
}

func TestPrintLabelsFollowJSONTags(t *testing.T) {
	type info struct {
		Name     string `json:"name"`
		KeyBytes int    `json:"key_bytes"`
		Internal string `json:"-"`
		Plain    bool
	}
	var out bytes.Buffer
	f := NewWithWriters("plain", &out, &bytes.Buffer{})

	require.NoError(t, f.Print(info{Name: "github", KeyBytes: 16, Internal: "x", Plain: true}))

	assert.Equal(t, "name\tgithub\nkey_bytes\t16\nPlain\ttrue\n", out.String())
}

func TestPrintListRequiresSlice(t *testing.T) {
	f := NewWithWriters("plain", &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, f.PrintList(codeRow{}, codeColumns))
}

func TestJSONFormatterEnvelope(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewWithWriters("json", &out, &errOut)

	require.NoError(t, f.PrintList([]codeRow{{"a", "123456"}}, codeColumns))
	f.PrintStatus("saved")
	f.PrintHint("ignored")

	var env struct {
		Data  []codeRow `json:"data"`
		Count int       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.Equal(t, 1, env.Count)
	assert.Equal(t, "123456", env.Data[0].Code)
	assert.Empty(t, errOut.String())
}

func TestJSONFormatterError(t *testing.T) {
	var errOut bytes.Buffer
	f := NewWithWriters("json", &bytes.Buffer{}, &errOut)

	f.PrintError(errors.New("boom"))

	assert.JSONEq(t, `{"error":"boom"}`, errOut.String())
}

func TestRichFormatterWritesTable(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("rich", &out, &bytes.Buffer{})

	require.NoError(t, f.PrintList([]codeRow{{"github", "282760"}}, codeColumns))

	assert.Contains(t, out.String(), "github")
	assert.Contains(t, out.String(), "282760")
}

func TestRichFormatterPrintStruct(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("rich", &out, &bytes.Buffer{})

	require.NoError(t, f.Print(codeRow{Name: "github", Code: "282760"}))

	assert.Contains(t, out.String(), "name:")
	assert.Contains(t, out.String(), "282760")
}

func TestUnknownModeFallsBackToPlain(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("yaml", &out, &bytes.Buffer{})
	require.NoError(t, f.Print("x"))
	assert.Equal(t, "x\n", out.String())
}
