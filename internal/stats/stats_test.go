package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfvote/internal/vote"
)

func TestDescribeWithDiversity(t *testing.T) {
	res := &vote.Result{
		Assigned:     []int32{2, 2, 18, vote.NoVote},
		Consensus:    []int32{3, 2, 3, 1},
		Diversity:    []int32{1, 2, 1, 3},
		Contributors: 3,
	}

	s := Describe(res)
	assert.Equal(t, 4, s.Vertices)
	assert.Equal(t, 3, s.Contributors)
	assert.Equal(t, 1, s.Unlabeled)
	assert.Equal(t, 2, s.DistinctLabels)
	assert.Equal(t, 2, s.Unanimous)
	require.True(t, s.HasDiversity)

	// fractions 1, 2/3, 1, 1/3
	assert.InDelta(t, 0.75, s.MeanConsensus, 1e-12)
	wantStd := math.Sqrt((0.0625 + math.Pow(2.0/3-0.75, 2) + 0.0625 + math.Pow(1.0/3-0.75, 2)) / 3)
	assert.InDelta(t, wantStd, s.StdDevConsensus, 1e-12)
	assert.InDelta(t, 1.75, s.MeanDiversity, 1e-12)

	assert.Equal(t, []LabelCount{{Label: 2, Vertices: 2}, {Label: 18, Vertices: 1}}, s.Labels)
	assert.Equal(t, []LabelCount{{Label: 2, Vertices: 2}}, s.Top(1))
	assert.Len(t, s.Top(0), 2)
}

func TestDescribeWithoutDiversity(t *testing.T) {
	s := Describe(&vote.Result{Assigned: []int32{5, 5, 3}, Contributors: 2})
	assert.False(t, s.HasDiversity)
	assert.Zero(t, s.MeanConsensus)
	assert.Equal(t, []LabelCount{{5, 2}, {3, 1}}, s.Labels)
}

func TestDescribeSingleVertex(t *testing.T) {
	s := Describe(&vote.Result{
		Assigned: []int32{1}, Consensus: []int32{1}, Diversity: []int32{1}, Contributors: 1,
	})
	assert.Equal(t, 1.0, s.MeanConsensus)
	assert.Zero(t, s.StdDevConsensus)
}

func TestDescribeNil(t *testing.T) {
	assert.Equal(t, Summary{}, Describe(nil))
}
