package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Hemisphere identifies one half of the cortical surface.
type Hemisphere int

const (
	Left Hemisphere = iota
	Right
)

// Hemispheres lists both halves in processing order.
var Hemispheres = []Hemisphere{Left, Right}

func (h Hemisphere) String() string {
	switch h {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("hemisphere(%d)", int(h))
	}
}

// Prefix returns the FreeSurfer file prefix, "lh" or "rh".
func (h Hemisphere) Prefix() string {
	if h == Right {
		return "rh"
	}
	return "lh"
}

// ErrEmptyFragment is returned when Scan is called without a naming fragment.
var ErrEmptyFragment = errors.New("discovery: annotation name fragment is required")

// Groups holds the matched files for one directory and fragment.
type Groups struct {
	Dir      string
	Fragment string
	Left     []string
	Right    []string
	// Unclassified lists matching files that start with neither 'l' nor 'r'.
	Unclassified []string
}

// Files returns the paths for h.
func (g *Groups) Files(h Hemisphere) []string {
	if g == nil {
		return nil
	}
	if h == Right {
		return g.Right
	}
	return g.Left
}

// Total reports how many files matched the fragment, classified or not.
func (g *Groups) Total() int {
	if g == nil {
		return 0
	}
	return len(g.Left) + len(g.Right) + len(g.Unclassified)
}

// Scan lists regular files in dir whose names contain fragment. Names
// starting with 'l' go to Left, 'r' to Right; anything else is kept in
// Unclassified for the caller to report.
func Scan(dir, fragment string) (*Groups, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, ErrEmptyFragment
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan annotation dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), fragment) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	groups := &Groups{Dir: dir, Fragment: fragment}
	for _, name := range names {
		full := filepath.Join(dir, name)
		switch name[0] {
		case 'l':
			groups.Left = append(groups.Left, full)
		case 'r':
			groups.Right = append(groups.Right, full)
		default:
			groups.Unclassified = append(groups.Unclassified, full)
		}
	}
	return groups, nil
}
