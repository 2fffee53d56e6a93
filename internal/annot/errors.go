package annot

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when the input ends before a field is complete.
	ErrTruncated = errors.New("annot: truncated input")
	// ErrMalformed is returned for structurally invalid values such as negative lengths.
	ErrMalformed = errors.New("annot: malformed input")
	// ErrMissingColorTable is returned when the color-table flag is zero.
	ErrMissingColorTable = errors.New("annot: color table not found")
	// ErrUnsupportedTableVersion is returned for extended tables other than version 2.
	ErrUnsupportedTableVersion = errors.New("annot: color table version not supported")
	// ErrVertexIndex is returned when a stored vertex id differs from its position.
	ErrVertexIndex = errors.New("annot: vertex index mismatch")
	// ErrLabelNotFound is returned when a vertex value has no color-table entry.
	ErrLabelNotFound = errors.New("annot: label not in color table")
)

// FormatError reports where in the input a field could not be decoded.
type FormatError struct {
	Offset int
	Field  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d", e.Err, e.Field, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }

// UnsupportedVersionError carries the rejected extended color-table version.
type UnsupportedVersionError struct {
	Version int32
	Offset  int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%v: version %d at offset %d", ErrUnsupportedTableVersion, e.Version, e.Offset)
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedTableVersion }

// VertexIndexError reports a vertex record whose id does not match its position.
type VertexIndexError struct {
	Position int
	Found    int32
	Offset   int
}

func (e *VertexIndexError) Error() string {
	return fmt.Sprintf("%v: record %d holds vertex %d at offset %d", ErrVertexIndex, e.Position, e.Found, e.Offset)
}

func (e *VertexIndexError) Unwrap() error { return ErrVertexIndex }

// LookupError reports a vertex whose raw value is absent from the color table.
type LookupError struct {
	Vertex int
	Value  int32
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: vertex %d has value %d", ErrLabelNotFound, e.Vertex, e.Value)
}

func (e *LookupError) Unwrap() error { return ErrLabelNotFound }
