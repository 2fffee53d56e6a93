package annot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Encode writes a in the requested layout. Labels are written verbatim as the
// per-vertex values, so callers pass packed color ids. Names and origin path
// are written NUL-terminated. For FormatV2 every entry is serialized and its
// table position is used as the structure index.
func Encode(w io.Writer, a *Annotation, format Format) error {
	if a == nil {
		return fmt.Errorf("encode annotation: nil annotation")
	}
	bw := bufio.NewWriter(w)
	e := &encoder{w: bw}

	e.i32(int32(len(a.Labels)))
	for i, v := range a.Labels {
		e.i32(int32(i))
		e.i32(v)
	}
	e.i32(1)

	switch format {
	case FormatLegacy:
		if len(a.ColorTable) == 0 {
			return fmt.Errorf("encode annotation: legacy layout needs at least one color-table entry")
		}
		e.i32(int32(len(a.ColorTable)))
		e.str(a.OrigPath)
		for _, entry := range a.ColorTable {
			e.str(entry.Name)
			e.rgba(entry)
		}
	case FormatV2:
		e.i32(-supportedTableVersion)
		e.i32(int32(len(a.ColorTable)))
		e.str(a.OrigPath)
		e.i32(int32(len(a.ColorTable)))
		for i, entry := range a.ColorTable {
			e.i32(int32(i))
			e.str(entry.Name)
			e.rgba(entry)
		}
	default:
		return fmt.Errorf("encode annotation: unknown format %v", format)
	}

	if e.err != nil {
		return fmt.Errorf("encode annotation: %w", e.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode annotation: %w", err)
	}
	return nil
}

type encoder struct {
	w   io.Writer
	err error
	buf [4]byte
}

func (e *encoder) i32(v int32) {
	if e.err != nil {
		return
	}
	binary.BigEndian.PutUint32(e.buf[:], uint32(v))
	_, e.err = e.w.Write(e.buf[:])
}

func (e *encoder) str(s string) {
	e.i32(int32(len(s) + 1))
	if e.err != nil {
		return
	}
	if _, e.err = io.WriteString(e.w, s); e.err != nil {
		return
	}
	_, e.err = e.w.Write([]byte{0})
}

func (e *encoder) rgba(entry Entry) {
	e.i32(entry.R)
	e.i32(entry.G)
	e.i32(entry.B)
	e.i32(entry.A)
}

// PackedID computes the key vertex labels use for entry under format.
func PackedID(entry Entry, format Format) int64 {
	if format == FormatV2 {
		return packV2(entry.R, entry.G, entry.B)
	}
	return packLegacy(entry.R, entry.G, entry.B, entry.A)
}
