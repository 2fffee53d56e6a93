package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"surfvote/internal/fileutil"
)

const valuesPerLine = 9

// Write emits pd as ASCII legacy VTK 3.0 with one integer point-data scalar
// array per field, in the order given.
func Write(w io.Writer, pd *PolyData, fields ...Field) error {
	if pd == nil {
		return fmt.Errorf("write mesh: nil polydata")
	}
	for _, f := range fields {
		if len(f.Values) != len(pd.Points) {
			return &FieldLengthError{Name: f.Name, Length: len(f.Values), Points: len(pd.Points)}
		}
	}

	bw := bufio.NewWriter(w)
	title := pd.Title
	if title == "" {
		title = "surfvote"
	}
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET POLYDATA\n", title)

	pointType, bitSize := "float", 32
	if pd.PointType == "double" {
		pointType, bitSize = "double", 64
	}
	fmt.Fprintf(bw, "POINTS %d %s\n", len(pd.Points), pointType)
	buf := make([]byte, 0, 64)
	for _, p := range pd.Points {
		buf = buf[:0]
		for j, v := range p {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, v, 'g', -1, bitSize)
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}

	if len(pd.Polygons) > 0 {
		size := 0
		for _, cell := range pd.Polygons {
			size += len(cell) + 1
		}
		fmt.Fprintf(bw, "POLYGONS %d %d\n", len(pd.Polygons), size)
		for _, cell := range pd.Polygons {
			buf = strconv.AppendInt(buf[:0], int64(len(cell)), 10)
			for _, idx := range cell {
				buf = append(buf, ' ')
				buf = strconv.AppendInt(buf, int64(idx), 10)
			}
			buf = append(buf, '\n')
			bw.Write(buf)
		}
	}

	if len(fields) > 0 {
		fmt.Fprintf(bw, "POINT_DATA %d\n", len(pd.Points))
		for _, f := range fields {
			fmt.Fprintf(bw, "SCALARS %s int 1\nLOOKUP_TABLE default\n", f.Name)
			for i, v := range f.Values {
				if i > 0 {
					if i%valuesPerLine == 0 {
						bw.WriteByte('\n')
					} else {
						bw.WriteByte(' ')
					}
				}
				bw.Write(strconv.AppendInt(buf[:0], int64(v), 10))
			}
			bw.WriteByte('\n')
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write mesh: %w", err)
	}
	return nil
}

// WriteFile writes pd and fields to path atomically.
func WriteFile(path string, pd *PolyData, fields ...Field) error {
	for _, f := range fields {
		if pd != nil && len(f.Values) != len(pd.Points) {
			return &FieldLengthError{Name: f.Name, Length: len(f.Values), Points: len(pd.Points)}
		}
	}
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, pd, fields...)
	})
}
