package assets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "js/app.js", "a")
	writeFile(t, dir, "css/site.css", "b")
	writeFile(t, dir, "index.html", "c")
	writeFile(t, dir, ".manifest.json", "{}")
	writeFile(t, dir, ".cache/tmp.js", "x")
	writeFile(t, dir, "js/.eslintrc", "y")

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"css/site.css", "index.html", "js/app.js"}, files)
}

func TestScanEmptyRoot(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
