package fileingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	write := func(rel string, data []byte) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	write("b.txt", []byte("greeting Hi\n"))
	write("a/c.TXT", []byte("greeting Hello\n"))
	write("notes.md", []byte("# notes\n"))
	write(".hidden/d.txt", []byte("greeting Hey\n"))
	write("blob.txt", []byte{0x00, 0xff, 0x00})

	files, err := DiscoverFiles(context.Background(), root, ".txt")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		assert.Greater(t, f.Size, int64(0))
	}
	assert.Equal(t, []string{"c.TXT", "b.txt"}, names)

	all, err := DiscoverFiles(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDiscoverFiles_Errors(t *testing.T) {
	_, err := DiscoverFiles(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = DiscoverFiles(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
