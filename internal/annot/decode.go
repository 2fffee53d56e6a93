package annot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// UnmatchedPolicy selects how remapping treats vertex values that have no
// color-table entry.
type UnmatchedPolicy int

const (
	// UnmatchedFail rejects the whole file with a *LookupError.
	UnmatchedFail UnmatchedPolicy = iota
	// UnmatchedSentinel stores Unlabeled for the vertex and keeps going.
	UnmatchedSentinel
)

// ParseUnmatchedPolicy maps the configuration spelling to a policy.
func ParseUnmatchedPolicy(value string) (UnmatchedPolicy, error) {
	switch value {
	case "", "fail":
		return UnmatchedFail, nil
	case "sentinel":
		return UnmatchedSentinel, nil
	default:
		return UnmatchedFail, fmt.Errorf("unknown unmatched policy %q", value)
	}
}

func (p UnmatchedPolicy) String() string {
	if p == UnmatchedSentinel {
		return "sentinel"
	}
	return "fail"
}

// DecodeOptions controls label post-processing.
type DecodeOptions struct {
	// KeepOriginalIDs returns the packed values stored per vertex instead of
	// color-table positions.
	KeepOriginalIDs bool
	Unmatched       UnmatchedPolicy
}

const supportedTableVersion = 2

// DecodeReader reads r to EOF and decodes the result.
func DecodeReader(r io.Reader, opts DecodeOptions) (*Annotation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read annotation: %w", err)
	}
	return Decode(data, opts)
}

// Decode parses a complete annotation file.
func Decode(data []byte, opts DecodeOptions) (*Annotation, error) {
	c := &cursor{buf: data}

	vertexCount, err := c.count("vertex count")
	if err != nil {
		return nil, err
	}
	// Each vertex record is two int32 values.
	if vertexCount > c.remaining()/8 {
		return nil, c.truncated("vertex records")
	}

	labels := make([]int32, vertexCount)
	for i := range labels {
		recordOffset := c.off
		id, err := c.i32("vertex id")
		if err != nil {
			return nil, err
		}
		if int(id) != i {
			return nil, &VertexIndexError{Position: i, Found: id, Offset: recordOffset}
		}
		if labels[i], err = c.i32("vertex label"); err != nil {
			return nil, err
		}
	}

	flagOffset := c.off
	present, err := c.i32("color table flag")
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, &FormatError{Offset: flagOffset, Field: "color table flag", Err: ErrMissingColorTable}
	}

	ann := &Annotation{Labels: labels}

	markerOffset := c.off
	entryCount, err := c.i32("color table entry count")
	if err != nil {
		return nil, err
	}
	if entryCount > 0 {
		ann.Format = FormatLegacy
		err = decodeLegacyTable(c, int(entryCount), ann)
	} else {
		version := -entryCount
		if version != supportedTableVersion {
			return nil, &UnsupportedVersionError{Version: version, Offset: markerOffset}
		}
		ann.Format = FormatV2
		err = decodeV2Table(c, ann)
	}
	if err != nil {
		return nil, err
	}

	for i := range ann.ColorTable {
		ann.ColorTable[i].A = 255
	}

	if !opts.KeepOriginalIDs {
		if err := remap(ann, opts.Unmatched); err != nil {
			return nil, err
		}
	}
	return ann, nil
}

func decodeLegacyTable(c *cursor, entryCount int, ann *Annotation) error {
	origin, err := c.lengthPrefixed("color table origin")
	if err != nil {
		return err
	}
	if n := len(origin); n > 0 && origin[n-1] == 0 {
		origin = origin[:n-1]
	}
	ann.OrigPath = string(origin)

	if entryCount > c.remaining()/4 {
		return c.truncated("color table entries")
	}
	ann.ColorTable = make([]Entry, entryCount)
	ann.Names = make([]string, 0, entryCount)
	for i := 0; i < entryCount; i++ {
		name, err := c.name()
		if err != nil {
			return err
		}
		rgba, err := c.rgba()
		if err != nil {
			return err
		}
		ann.ColorTable[i] = Entry{
			Name:     name,
			R:        rgba[0],
			G:        rgba[1],
			B:        rgba[2],
			A:        rgba[3],
			PackedID: packLegacy(rgba[0], rgba[1], rgba[2], rgba[3]),
		}
		ann.Names = append(ann.Names, name)
	}
	return nil
}

func decodeV2Table(c *cursor, ann *Annotation) error {
	declared, err := c.count("color table size")
	if err != nil {
		return err
	}
	origin, err := c.lengthPrefixed("color table origin")
	if err != nil {
		return err
	}
	ann.OrigPath = string(bytes.TrimRight(origin, "\x00"))

	countOffset := c.off
	serialized, err := c.count("serialized entry count")
	if err != nil {
		return err
	}
	if serialized > declared {
		return &FormatError{
			Offset: countOffset,
			Field:  fmt.Sprintf("serialized entry count %d exceeds table size %d", serialized, declared),
			Err:    ErrMalformed,
		}
	}
	if declared > c.remaining()/4+serialized {
		return &FormatError{Offset: countOffset, Field: fmt.Sprintf("color table size %d", declared), Err: ErrMalformed}
	}

	// Slots beyond the serialized entries stay zero-valued, matching the
	// table size the writer declared.
	ann.ColorTable = make([]Entry, declared)
	ann.Names = make([]string, 0, serialized)
	for i := 0; i < serialized; i++ {
		if _, err := c.i32("structure index"); err != nil {
			return err
		}
		name, err := c.name()
		if err != nil {
			return err
		}
		rgba, err := c.rgba()
		if err != nil {
			return err
		}
		ann.ColorTable[i] = Entry{
			Name:     name,
			R:        rgba[0],
			G:        rgba[1],
			B:        rgba[2],
			A:        rgba[3],
			PackedID: packV2(rgba[0], rgba[1], rgba[2]),
		}
		ann.Names = append(ann.Names, name)
	}
	return nil
}

// remap replaces each packed vertex value with the color-table position of
// the entry carrying that packed id. The table is searched in packed-id
// order; equal packed ids resolve to the earliest table position.
func remap(ann *Annotation, policy UnmatchedPolicy) error {
	order := make([]int, len(ann.ColorTable))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ann.ColorTable[order[i]].PackedID < ann.ColorTable[order[j]].PackedID
	})

	for v, raw := range ann.Labels {
		// Legacy packed ids span 32 unsigned bits; high alpha values are
		// stored as negative int32.
		key := int64(uint32(raw))
		pos := sort.Search(len(order), func(i int) bool {
			return ann.ColorTable[order[i]].PackedID >= key
		})
		if pos == len(order) || ann.ColorTable[order[pos]].PackedID != key {
			if policy == UnmatchedSentinel {
				ann.Labels[v] = Unlabeled
				continue
			}
			return &LookupError{Vertex: v, Value: raw}
		}
		ann.Labels[v] = int32(order[pos])
	}
	return nil
}

type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) truncated(field string) error {
	return &FormatError{Offset: c.off, Field: field, Err: ErrTruncated}
}

func (c *cursor) i32(field string) (int32, error) {
	if c.remaining() < 4 {
		return 0, c.truncated(field)
	}
	v := int32(binary.BigEndian.Uint32(c.buf[c.off:]))
	c.off += 4
	return v, nil
}

// count reads an int32 that must not be negative.
func (c *cursor) count(field string) (int, error) {
	start := c.off
	v, err := c.i32(field)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &FormatError{Offset: start, Field: fmt.Sprintf("%s %d", field, v), Err: ErrMalformed}
	}
	return int(v), nil
}

func (c *cursor) lengthPrefixed(field string) ([]byte, error) {
	n, err := c.count(field + " length")
	if err != nil {
		return nil, err
	}
	if n > c.remaining() {
		return nil, c.truncated(field)
	}
	out := c.buf[c.off : c.off+n]
	c.off += n
	return out, nil
}

// name reads a length-prefixed region name. Writers include the NUL
// terminator in the length; it is not part of the name.
func (c *cursor) name() (string, error) {
	raw, err := c.lengthPrefixed("entry name")
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(raw, "\x00")), nil
}

func (c *cursor) rgba() ([4]int32, error) {
	var out [4]int32
	for i, field := range [4]string{"red", "green", "blue", "alpha"} {
		v, err := c.i32(field)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
