package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader_LoadTxtFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello World"), 0644))

	file, err := NewFileLoader(nil, 0).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", file.Name)
	assert.Equal(t, []byte("Hello World"), file.Data)
}

func TestFileLoader_Supports(t *testing.T) {
	l := NewFileLoader(nil, 0)

	for _, name := range []string{"a.pdf", "b.DOCX", "c.doc", "d.txt", "e.xlsx", "f.csv"} {
		assert.True(t, l.Supports(name), name)
	}
	for _, name := range []string{"a.exe", "b.md", "noext", "c.pdf.bak"} {
		assert.False(t, l.Supports(name), name)
	}
}

func TestFileLoader_CustomExtensions(t *testing.T) {
	l := NewFileLoader([]string{".MD"}, 0)
	assert.True(t, l.Supports("readme.md"))
	assert.False(t, l.Supports("doc.pdf"))
}

func TestFileLoader_RejectsUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.exe")
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0644))

	_, err := NewFileLoader(nil, 0).Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestFileLoader_RejectsOversized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, make([]byte, 32), 0644))

	_, err := NewFileLoader(nil, 16).Load(context.Background(), path)
	assert.Error(t, err)
}

func TestFileLoader_RejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(path, 0755))

	_, err := NewFileLoader(nil, 0).Load(context.Background(), path)
	assert.Error(t, err)
}

func TestFileLoader_MissingFile(t *testing.T) {
	_, err := NewFileLoader(nil, 0).Load(context.Background(), "/nonexistent/file.pdf")
	assert.True(t, os.IsNotExist(err))
}

func TestFileLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileLoader(nil, 0).Load(ctx, "whatever.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
