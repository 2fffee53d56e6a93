package mesh

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// maxPrealloc bounds slice capacity taken from header counts; longer
// sections grow as they are read.
const maxPrealloc = 1 << 20

// ReadFile opens and parses path.
func ReadFile(path string) (*PolyData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pd, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read mesh %s: %w", path, err)
	}
	return pd, nil
}

// Read parses an ASCII legacy VTK polydata stream.
func Read(r io.Reader) (*PolyData, error) {
	s := newScanner(r)

	header, ok := s.line()
	if !ok || !strings.HasPrefix(header, "# vtk DataFile") {
		return nil, s.fail(ErrMalformed, "missing vtk header")
	}
	title, _ := s.line()
	encoding, ok := s.line()
	if !ok {
		return nil, s.fail(ErrMalformed, "missing encoding line")
	}
	if !strings.EqualFold(strings.TrimSpace(encoding), "ASCII") {
		return nil, s.fail(ErrUnsupported, fmt.Sprintf("encoding %q", strings.TrimSpace(encoding)))
	}

	pd := &PolyData{Title: strings.TrimSpace(title)}
	sawDataset := false
	for {
		keyword, ok := s.word()
		if !ok {
			break
		}
		switch strings.ToUpper(keyword) {
		case "DATASET":
			kind, ok := s.word()
			if !ok || !strings.EqualFold(kind, "POLYDATA") {
				return nil, s.fail(ErrUnsupported, fmt.Sprintf("dataset %q", kind))
			}
			sawDataset = true
		case "POINTS":
			if err := s.readPoints(pd); err != nil {
				return nil, err
			}
		case "POLYGONS":
			polys, err := s.readCells(true)
			if err != nil {
				return nil, err
			}
			pd.Polygons = polys
		case "VERTICES", "LINES", "TRIANGLE_STRIPS":
			if _, err := s.readCells(false); err != nil {
				return nil, err
			}
		case "POINT_DATA", "CELL_DATA", "METADATA", "FIELD":
			// Attribute data is replaced on write.
			return finish(s, pd, sawDataset)
		default:
			return nil, s.fail(ErrMalformed, fmt.Sprintf("unexpected keyword %q", keyword))
		}
	}
	if err := s.err(); err != nil {
		return nil, err
	}
	return finish(s, pd, sawDataset)
}

func finish(s *scanner, pd *PolyData, sawDataset bool) (*PolyData, error) {
	if !sawDataset {
		return nil, s.fail(ErrMalformed, "missing DATASET POLYDATA")
	}
	if pd.Points == nil {
		return nil, s.fail(ErrMalformed, "missing POINTS section")
	}
	return pd, nil
}

func (s *scanner) readPoints(pd *PolyData) error {
	n, err := s.count("point count")
	if err != nil {
		return err
	}
	dataType, ok := s.word()
	if !ok {
		return s.fail(ErrMalformed, "missing point data type")
	}
	pd.PointType = strings.ToLower(dataType)
	pd.Points = make([][3]float64, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		var p [3]float64
		for j := range p {
			tok, ok := s.word()
			if !ok {
				return s.fail(ErrMalformed, fmt.Sprintf("points end after %d of %d", i, n))
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return s.fail(ErrMalformed, fmt.Sprintf("point %d: %v", i, err))
			}
			p[j] = v
		}
		pd.Points = append(pd.Points, p)
	}
	return nil
}

// readCells reads "<cells> <size>" followed by size integers. When keep is
// false the connectivity is consumed and discarded.
func (s *scanner) readCells(keep bool) ([][]int32, error) {
	cells, err := s.count("cell count")
	if err != nil {
		return nil, err
	}
	size, err := s.count("cell list size")
	if err != nil {
		return nil, err
	}
	var out [][]int32
	if keep {
		out = make([][]int32, 0, min(cells, maxPrealloc))
	}
	consumed := 0
	for c := 0; c < cells; c++ {
		k, err := s.count("cell vertex count")
		if err != nil {
			return nil, err
		}
		if k >= size-consumed {
			return nil, s.fail(ErrMalformed, fmt.Sprintf("cell list exceeds declared size %d", size))
		}
		consumed += k + 1
		var cell []int32
		if keep {
			cell = make([]int32, 0, min(k, maxPrealloc))
		}
		for j := 0; j < k; j++ {
			idx, err := s.count("cell vertex index")
			if err != nil {
				return nil, err
			}
			if idx > math.MaxInt32 {
				return nil, s.fail(ErrMalformed, fmt.Sprintf("cell vertex index %d", idx))
			}
			if keep {
				cell = append(cell, int32(idx))
			}
		}
		if keep {
			out = append(out, cell)
		}
	}
	if consumed != size {
		return nil, s.fail(ErrMalformed, fmt.Sprintf("cell list size %d, read %d", size, consumed))
	}
	return out, nil
}

type scanner struct {
	sc     *bufio.Scanner
	lineNo int
	words  []string
	ioErr  error
}

func newScanner(r io.Reader) *scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &scanner{sc: sc}
}

func (s *scanner) line() (string, bool) {
	if !s.sc.Scan() {
		s.ioErr = s.sc.Err()
		return "", false
	}
	s.lineNo++
	return s.sc.Text(), true
}

func (s *scanner) word() (string, bool) {
	for len(s.words) == 0 {
		text, ok := s.line()
		if !ok {
			return "", false
		}
		s.words = strings.Fields(text)
	}
	w := s.words[0]
	s.words = s.words[1:]
	return w, true
}

func (s *scanner) count(what string) (int, error) {
	tok, ok := s.word()
	if !ok {
		return 0, s.fail(ErrMalformed, "missing "+what)
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, s.fail(ErrMalformed, fmt.Sprintf("%s %q", what, tok))
	}
	return n, nil
}

func (s *scanner) err() error {
	if s.ioErr != nil {
		return fmt.Errorf("read vtk: %w", s.ioErr)
	}
	return nil
}

func (s *scanner) fail(kind error, msg string) error {
	if s.ioErr != nil {
		return fmt.Errorf("read vtk: %w", s.ioErr)
	}
	return &ParseError{Line: s.lineNo, Msg: msg, Err: kind}
}
