package pipeline

import (
	"errors"
	"time"

	"surfvote/internal/catalog"
	"surfvote/internal/discovery"
	"surfvote/internal/stats"
)

// Stage names where a hemisphere can fail.
const (
	StageLoad = "load"
	StageVote = "vote"
	StageMesh = "mesh"
)

var (
	// ErrAllHemispheresFailed is returned when neither hemisphere produced output.
	ErrAllHemispheresFailed = errors.New("pipeline: every hemisphere failed")
	// ErrLocked is returned when another run holds the output lock.
	ErrLocked = errors.New("pipeline: output directory is locked by another run")
)

// HemisphereSummary is the outcome for one side.
type HemisphereSummary struct {
	Hemisphere discovery.Hemisphere
	Files      []string
	Stats      stats.Summary
	// Outputs lists meshes written, in surface order.
	Outputs []string
	Elapsed time.Duration
	// Stage and Err are set when the hemisphere failed.
	Stage string
	Err   error
}

// OK reports whether the hemisphere completed every stage.
func (h HemisphereSummary) OK() bool {
	return h.Err == nil
}

// Summary is the outcome of one Run.
type Summary struct {
	RunID        string
	Subject      string
	AnnotName    string
	LabelDir     string
	SurfDir      string
	OutputDir    string
	Surfaces     []string
	Unclassified []string
	Hemispheres  []HemisphereSummary
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Succeeded counts hemispheres without error.
func (s *Summary) Succeeded() int {
	n := 0
	for _, h := range s.Hemispheres {
		if h.OK() {
			n++
		}
	}
	return n
}

// Status maps the hemisphere outcomes onto a catalog run status.
func (s *Summary) Status() catalog.RunStatus {
	ok := s.Succeeded()
	switch {
	case len(s.Hemispheres) > 0 && ok == len(s.Hemispheres):
		return catalog.StatusSucceeded
	case ok > 0:
		return catalog.StatusPartial
	default:
		return catalog.StatusFailed
	}
}
