package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{0}, 0o644))
	}
}

func TestScanClassifiesByPrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"rh.s02.DKT.annot",
		"lh.s02.DKT.annot",
		"lh.s01.DKT.annot",
		"rh.s01.DKT.annot",
		"both.DKT.annot",
		"lh.aparc.annot",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lh.DKT.dir"), 0o755))

	groups, err := Scan(dir, "DKT")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "lh.s01.DKT.annot"),
		filepath.Join(dir, "lh.s02.DKT.annot"),
	}, groups.Files(Left))
	assert.Equal(t, []string{
		filepath.Join(dir, "rh.s01.DKT.annot"),
		filepath.Join(dir, "rh.s02.DKT.annot"),
	}, groups.Files(Right))
	assert.Equal(t, []string{filepath.Join(dir, "both.DKT.annot")}, groups.Unclassified)
	assert.Equal(t, 5, groups.Total())
}

func TestScanRequiresFragment(t *testing.T) {
	_, err := Scan(t.TempDir(), "  ")
	assert.ErrorIs(t, err, ErrEmptyFragment)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), "DKT")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHemisphereNames(t *testing.T) {
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "rh", Right.Prefix())
	assert.Equal(t, "lh", Left.Prefix())
	var g *Groups
	assert.Nil(t, g.Files(Left))
	assert.Zero(t, g.Total())
}
