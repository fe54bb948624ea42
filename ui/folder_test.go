package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyDir(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, isDirEmpty(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "capture_00001.bmp"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "old", "nested"), 0o755))
	assert.False(t, isDirEmpty(dir))

	require.NoError(t, emptyDir(dir))
	assert.True(t, isDirEmpty(dir))
	assert.DirExists(t, dir)

	assert.True(t, isDirEmpty(filepath.Join(dir, "missing")))
	assert.Error(t, emptyDir(filepath.Join(dir, "missing")))
}
