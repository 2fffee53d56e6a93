// Package stats summarizes a vote result for logs, tables, and the catalog.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"surfvote/internal/vote"
)

// LabelCount pairs a label with the number of vertices assigned to it.
type LabelCount struct {
	Label    int32
	Vertices int
}

// Summary describes one hemisphere's vote.
type Summary struct {
	Vertices     int
	Contributors int
	// Unlabeled counts vertices whose winner is the no-label marker.
	Unlabeled      int
	DistinctLabels int
	// HasDiversity is false when the vote ran without consensus/diversity;
	// the fields below are zero then.
	HasDiversity bool
	// MeanConsensus is the mean fraction of contributors agreeing with the
	// winner, in (0, 1].
	MeanConsensus   float64
	StdDevConsensus float64
	MeanDiversity   float64
	// Unanimous counts vertices where every contributor agreed.
	Unanimous int
	// Labels is sorted by vertex count, largest first, ties by label.
	Labels []LabelCount
}

// Describe computes a Summary for res.
func Describe(res *vote.Result) Summary {
	if res == nil {
		return Summary{}
	}
	s := Summary{Vertices: res.VertexCount(), Contributors: res.Contributors}

	counts := make(map[int32]int)
	for _, label := range res.Assigned {
		if label == vote.NoVote {
			s.Unlabeled++
			continue
		}
		counts[label]++
	}
	s.DistinctLabels = len(counts)
	s.Labels = make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		s.Labels = append(s.Labels, LabelCount{Label: label, Vertices: n})
	}
	sort.Slice(s.Labels, func(i, j int) bool {
		if s.Labels[i].Vertices != s.Labels[j].Vertices {
			return s.Labels[i].Vertices > s.Labels[j].Vertices
		}
		return s.Labels[i].Label < s.Labels[j].Label
	})

	if !res.HasDiversity() || s.Vertices == 0 || res.Contributors == 0 {
		return s
	}
	s.HasDiversity = true
	fractions := make([]float64, s.Vertices)
	diversity := make([]float64, s.Vertices)
	for i := range fractions {
		fractions[i] = float64(res.Consensus[i]) / float64(res.Contributors)
		diversity[i] = float64(res.Diversity[i])
		if int(res.Consensus[i]) == res.Contributors {
			s.Unanimous++
		}
	}
	s.MeanConsensus, s.StdDevConsensus = stat.MeanStdDev(fractions, nil)
	if s.Vertices < 2 {
		s.StdDevConsensus = 0
	}
	s.MeanDiversity = stat.Mean(diversity, nil)
	return s
}

// Top returns at most n of the largest labels.
func (s Summary) Top(n int) []LabelCount {
	if n <= 0 || n >= len(s.Labels) {
		return s.Labels
	}
	return s.Labels[:n]
}
