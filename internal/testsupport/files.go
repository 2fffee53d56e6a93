package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"surfvote/internal/annot"
	"surfvote/internal/mesh"
)

// ColorTable returns a table of n entries with distinct colors, named
// region00, region01, and so on. Position i decodes to label i.
func ColorTable(n int) []annot.Entry {
	table := make([]annot.Entry, n)
	for i := range table {
		table[i] = annot.Entry{
			Name: fmt.Sprintf("region%02d", i),
			R:    int32(i*5) % 256,
			G:    int32(40 + i*3),
			B:    int32(200 - i),
			A:    0,
		}
	}
	return table
}

// DefaultTableSize covers every label the combiner rewrites.
const DefaultTableSize = 40

// EncodeAnnot returns annotation bytes whose vertices decode (in default,
// remapping mode) to positions.
func EncodeAnnot(t testing.TB, format annot.Format, positions []int32) []byte {
	t.Helper()

	table := ColorTable(DefaultTableSize)
	raw := make([]int32, len(positions))
	for i, p := range positions {
		if p < 0 || int(p) >= len(table) {
			t.Fatalf("label %d outside fixture table", p)
		}
		raw[i] = int32(annot.PackedID(table[p], format))
	}
	var buf bytes.Buffer
	err := annot.Encode(&buf, &annot.Annotation{
		OrigPath:   "fixture.ctab",
		Labels:     raw,
		ColorTable: table,
	}, format)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

// WriteAnnot writes an annotation file whose vertices decode to positions.
func WriteAnnot(t testing.TB, path string, format annot.Format, positions []int32) {
	t.Helper()
	WriteBytes(t, path, EncodeAnnot(t, format, positions))
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// StripMesh builds a triangle strip with n points along the x axis.
func StripMesh(n int) *mesh.PolyData {
	pd := &mesh.PolyData{Title: "fixture", Points: make([][3]float64, n)}
	for i := range pd.Points {
		pd.Points[i] = [3]float64{float64(i), float64(i % 2), 0}
	}
	for i := 0; i+2 < n; i++ {
		pd.Polygons = append(pd.Polygons, []int32{int32(i), int32(i + 1), int32(i + 2)})
	}
	return pd
}

// WriteMesh writes a StripMesh of n points to path.
func WriteMesh(t testing.TB, path string, n int) {
	t.Helper()
	if err := mesh.WriteFile(path, StripMesh(n)); err != nil {
		t.Fatalf("write mesh %s: %v", path, err)
	}
}

// Subject lays out <subjects>/<name>/{label,surf} and returns both dirs.
func Subject(t testing.TB, subjectsDir, name string) (labelDir, surfDir string) {
	t.Helper()
	labelDir = filepath.Join(subjectsDir, name, "label")
	surfDir = filepath.Join(subjectsDir, name, "surf")
	for _, dir := range []string{labelDir, surfDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return labelDir, surfDir
}
