package annot

import "fmt"

// Format identifies the on-disk color-table layout.
type Format int

const (
	// FormatLegacy is the single-table layout with a positive entry count.
	FormatLegacy Format = iota + 1
	// FormatV2 is the extended layout introduced by a negated version marker.
	FormatV2
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatV2:
		return "v2"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Unlabeled marks a vertex whose raw value had no color-table entry when the
// decoder runs with UnmatchedSentinel.
const Unlabeled int32 = -1

// Entry is one color-table row.
type Entry struct {
	Name string
	R    int32
	G    int32
	B    int32
	A    int32
	// PackedID is the color key used by vertex labels. It is computed from
	// the channels as read from disk, before alpha normalization.
	PackedID int64
}

// Annotation is the decoded content of one annotation file.
type Annotation struct {
	Format Format
	// OrigPath is the color-table origin path recorded by the writer.
	OrigPath string
	// Labels holds one value per vertex: a color-table position by default,
	// or the raw packed value when decoded with KeepOriginalIDs.
	Labels     []int32
	ColorTable []Entry
	// Names lists region names in file order, one per serialized entry.
	Names []string
}

// VertexCount reports the number of vertices covered by the annotation.
func (a *Annotation) VertexCount() int {
	if a == nil {
		return 0
	}
	return len(a.Labels)
}

// Lookup returns the color-table entry at position id.
func (a *Annotation) Lookup(id int32) (Entry, bool) {
	if a == nil || id < 0 || int(id) >= len(a.ColorTable) {
		return Entry{}, false
	}
	return a.ColorTable[id], true
}

func packLegacy(r, g, b, a int32) int64 {
	return int64(r) + int64(g)<<8 + int64(b)<<16 + int64(a)<<24
}

func packV2(r, g, b int32) int64 {
	return int64(r) + int64(g)<<8 + int64(b)<<16
}
