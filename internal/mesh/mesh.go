package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for binary files and datasets other than POLYDATA.
	ErrUnsupported = errors.New("mesh: unsupported vtk file")
	// ErrMalformed is returned when a section is inconsistent or cut short.
	ErrMalformed = errors.New("mesh: malformed vtk file")
	// ErrFieldLength is returned when a field does not have one value per point.
	ErrFieldLength = errors.New("mesh: field length does not match point count")
)

// PolyData is a surface: points plus polygon connectivity.
type PolyData struct {
	Title string
	// PointType is the POINTS data type read from disk. "double" is written
	// back at full precision; anything else is written as "float", which
	// rounds coordinates to float32.
	PointType string
	Points    [][3]float64
	Polygons  [][]int32
}

// PointCount reports the number of mesh vertices.
func (p *PolyData) PointCount() int {
	if p == nil {
		return 0
	}
	return len(p.Points)
}

// Field is a named integer array with one value per point.
type Field struct {
	Name   string
	Values []int32
}

// FieldLengthError names the field that does not fit the mesh.
type FieldLengthError struct {
	Name   string
	Length int
	Points int
}

func (e *FieldLengthError) Error() string {
	return fmt.Sprintf("%v: %s has %d values for %d points", ErrFieldLength, e.Name, e.Length, e.Points)
}

func (e *FieldLengthError) Unwrap() error { return ErrFieldLength }

// ParseError reports the line where reading stopped.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: line %d: %s", e.Err, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
