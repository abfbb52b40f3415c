package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendMissingFileIsEmpty(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	entries, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	entries := map[string]string{"a": "S1", "b": "S2"}
	require.NoError(t, b.Save(entries))

	loaded, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.Equal(t, filepath.Join(dir, FileName), b.Location())
}

func TestFileBackendSaveOverwritesWholeMapping(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, b.Save(map[string]string{"a": "S1", "b": "S2"}))
	require.NoError(t, b.Save(map[string]string{"c": "S3"}))

	loaded, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "S3"}, loaded)
}

func TestFileBackendQuarantinesUnparsableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	_, err = b.Load()
	require.Error(t, err)

	require.NoError(t, b.Save(map[string]string{"a": "S1"}))

	kept, err := os.ReadFile(path + CorruptSuffix)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(kept))

	loaded, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "S1"}, loaded)
}

func TestFileBackendEmptyFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), nil, 0600))

	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	entries, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	entries := map[string]string{"x": "S1"}

	require.NoError(t, WriteFile(path, entries))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a": {"name": "a"}}`), 0600))
	_, err = ReadFile(bad)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestWriteFileIntoMissingDirectoryFails(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "backup.json"), map[string]string{"x": "S"})
	assert.Error(t, err)
}

func TestNewBackendKinds(t *testing.T) {
	dir := t.TempDir()

	b, err := NewBackend(KindFile, dir, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = NewBackend("", dir, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	_, err = NewBackend("s3", dir, nil)
	assert.Error(t, err)
}
