package fsutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDirExists(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("exists", func(t *testing.T) {
		exists, err := DirExists(tmpDir)
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("not_exists", func(t *testing.T) {
		exists, err := DirExists(filepath.Join(tmpDir, "non_existent"))
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("is_file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "file.txt")
		err := os.WriteFile(filePath, []byte("test"), 0644)
		assert.NoError(t, err)

		exists, err := DirExists(filePath)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestExpandHome(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", ExpandHome(""))
	})
	t.Run("no_tilde", func(t *testing.T) {
		assert.Equal(t, "/some/path", ExpandHome("/some/path"))
	})
	t.Run("only_tilde", func(t *testing.T) {
		home, _ := os.UserHomeDir()
		assert.Equal(t, home, ExpandHome("~"))
	})
	t.Run("tilde_with_path", func(t *testing.T) {
		home, _ := os.UserHomeDir()
		assert.Equal(t, filepath.Join(home, "abc"), ExpandHome("~/abc"))
	})
}

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "state.json")

	t.Run("missing_not_required", func(t *testing.T) {
		var r record
		assert.NoError(t, ReadJSONFile(filePath, false, &r))
		assert.Equal(t, record{}, r)
	})

	t.Run("missing_required", func(t *testing.T) {
		var r record
		err := ReadJSONFile(filePath, true, &r)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("round_trip", func(t *testing.T) {
		assert.NoError(t, WriteJSONFile(filePath, record{Name: "a", Count: 2}, 0o600))
		var r record
		assert.NoError(t, ReadJSONFile(filePath, true, &r))
		assert.Equal(t, record{Name: "a", Count: 2}, r)

		info, err := os.Stat(filePath)
		assert.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		entries, err := os.ReadDir(filepath.Dir(filePath))
		assert.NoError(t, err)
		assert.Equal(t, 1, len(entries))
	})

	t.Run("decode_error", func(t *testing.T) {
		badPath := filepath.Join(t.TempDir(), "bad.json")
		assert.NoError(t, os.WriteFile(badPath, []byte("{"), 0o600))
		var r record
		assert.Error(t, ReadJSONFile(badPath, true, &r))
	})
}

type failingDecoder struct{}

func (failingDecoder) Decode(interface{}) error { return io.ErrUnexpectedEOF }

func TestReadFile_DecoderError(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "x")
	assert.NoError(t, os.WriteFile(filePath, []byte("x"), 0o600))
	err := ReadFile(filePath, true, nil, func(io.Reader) Decoder { return failingDecoder{} })
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}
