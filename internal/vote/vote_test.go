package vote

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfvote/internal/labels"
)

func TestVoteMajority(t *testing.T) {
	collection := []labels.Vector{
		{1, 1, 2},
		{1, 2, 2},
		{2, 2, 1},
	}
	res, err := Vote(context.Background(), collection, Options{ComputeDiversity: true})
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2, 2}, res.Assigned)
	assert.Equal(t, []int32{2, 2, 2}, res.Consensus)
	assert.Equal(t, []int32{2, 2, 2}, res.Diversity)
	assert.Equal(t, 3, res.Contributors)
}

func TestVoteTieGoesToFirstScannedLabel(t *testing.T) {
	ctx := context.Background()

	res, err := Vote(ctx, []labels.Vector{{1}, {2}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, res.Assigned)

	res, err = Vote(ctx, []labels.Vector{{2}, {1}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, res.Assigned, "tie-break follows scan order, not numeric order")

	// 7 is seen first but 3 reaches the same count; 7 keeps the vertex.
	res, err = Vote(ctx, []labels.Vector{{7}, {3}, {3}, {7}, {5}}, Options{ComputeDiversity: true})
	require.NoError(t, err)
	assert.Equal(t, []int32{7}, res.Assigned)
	assert.Equal(t, []int32{2}, res.Consensus)
	assert.Equal(t, []int32{3}, res.Diversity)
}

func TestVoteIdenticalInputs(t *testing.T) {
	vec := labels.Vector{4, 0, 18, 2, 2, 35}
	const n = 21
	collection := make([]labels.Vector, n)
	for i := range collection {
		collection[i] = vec
	}

	res, err := Vote(context.Background(), collection, Options{ComputeDiversity: true})
	require.NoError(t, err)
	assert.Equal(t, []int32(vec), res.Assigned)
	for v := range vec {
		assert.Equal(t, int32(n), res.Consensus[v])
		assert.Equal(t, int32(1), res.Diversity[v])
	}
}

func TestVoteEmptyCollection(t *testing.T) {
	res, err := Vote(context.Background(), nil, Options{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEmptyCollection)
}

func TestVoteInconsistentLengths(t *testing.T) {
	_, err := Vote(context.Background(), []labels.Vector{{1, 2}, {1, 2}, {1}}, Options{})
	require.ErrorIs(t, err, ErrInconsistentVertexCount)

	var lerr *InconsistentLengthError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 2, lerr.Index)
	assert.Equal(t, 2, lerr.Expected)
	assert.Equal(t, 1, lerr.Actual)
}

func TestVoteOptionalOutputsOmittedByDefault(t *testing.T) {
	res, err := Vote(context.Background(), []labels.Vector{{1, 2}}, Options{})
	require.NoError(t, err)
	assert.Nil(t, res.Consensus)
	assert.Nil(t, res.Diversity)
	assert.False(t, res.HasDiversity())

	fields := res.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, FieldAssigned, fields[0].Name)
}

func TestVoteFieldsOrder(t *testing.T) {
	res, err := Vote(context.Background(), []labels.Vector{{1}, {1}}, Options{ComputeDiversity: true})
	require.NoError(t, err)

	var names []string
	for _, f := range res.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{FieldAssigned, FieldDifferent, FieldCommon}, names)
}

func TestVoteChunkedMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const vertices = 1000
	collection := make([]labels.Vector, 9)
	for i := range collection {
		vec := make(labels.Vector, vertices)
		for v := range vec {
			vec[v] = int32(rng.Intn(4))
		}
		collection[i] = vec
	}

	ctx := context.Background()
	sequential, err := Vote(ctx, collection, Options{ComputeDiversity: true, Workers: 1, ChunkSize: vertices})
	require.NoError(t, err)

	var calls, last int
	parallel, err := Vote(ctx, collection, Options{
		ComputeDiversity: true,
		Workers:          4,
		ChunkSize:        37,
		Progress: func(done, total int) {
			calls++
			last = done
			assert.Equal(t, vertices, total)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
	assert.Equal(t, (vertices+36)/37, calls)
	assert.Equal(t, vertices, last)
}

func TestVoteDoesNotModifyInput(t *testing.T) {
	collection := []labels.Vector{{3, 1}, {1, 1}}
	_, err := Vote(context.Background(), collection, Options{ComputeDiversity: true})
	require.NoError(t, err)
	assert.Equal(t, []labels.Vector{{3, 1}, {1, 1}}, collection)
}

func TestVoteCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Vote(ctx, []labels.Vector{{1, 2, 3}}, Options{ChunkSize: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTallyWinnerOnEmpty(t *testing.T) {
	tl := newTally(0)
	label, count := tl.winner()
	assert.Equal(t, NoVote, label)
	assert.Zero(t, count)
}
