package vote

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"surfvote/internal/labels"
)

// NoVote marks a vertex for which no winner could be determined.
const NoVote int32 = -1

// Output field names understood by the mesh writer.
const (
	FieldAssigned  = "Assigned"
	FieldDifferent = "Different"
	FieldCommon    = "Common"
)

const defaultChunkSize = 4096

// Options controls a vote.
type Options struct {
	// ComputeDiversity fills Result.Consensus and Result.Diversity.
	ComputeDiversity bool
	// Workers bounds concurrent chunks. Zero uses GOMAXPROCS.
	Workers int
	// ChunkSize is the number of vertices per unit of work. Zero uses 4096.
	ChunkSize int
	// Progress, when set, is called after each chunk with the number of
	// vertices decided so far. Calls are serialized.
	Progress func(done, total int)
}

// Result is the outcome of a vote over one hemisphere.
type Result struct {
	Assigned []int32
	// Consensus holds the winning label's vote count per vertex.
	Consensus []int32
	// Diversity holds the number of distinct labels seen per vertex.
	Diversity []int32
	// Contributors is the number of label vectors that voted.
	Contributors int
}

// Field is a named per-vertex integer array.
type Field struct {
	Name   string
	Values []int32
}

// VertexCount reports the number of vertices decided.
func (r *Result) VertexCount() int {
	if r == nil {
		return 0
	}
	return len(r.Assigned)
}

// HasDiversity reports whether consensus and diversity were computed.
func (r *Result) HasDiversity() bool {
	return r != nil && r.Consensus != nil && r.Diversity != nil
}

// Fields returns the arrays to attach to a mesh: Assigned, followed by
// Different and Common when they were computed.
func (r *Result) Fields() []Field {
	if r == nil {
		return nil
	}
	fields := []Field{{Name: FieldAssigned, Values: r.Assigned}}
	if r.HasDiversity() {
		fields = append(fields,
			Field{Name: FieldDifferent, Values: r.Diversity},
			Field{Name: FieldCommon, Values: r.Consensus},
		)
	}
	return fields
}

// Vote computes the per-vertex majority label across collection. All
// vectors must have the same length. The collection is only read.
func Vote(ctx context.Context, collection []labels.Vector, opts Options) (*Result, error) {
	if len(collection) == 0 {
		return nil, ErrEmptyCollection
	}
	n := len(collection[0])
	for i, vec := range collection[1:] {
		if len(vec) != n {
			return nil, &InconsistentLengthError{Index: i + 1, Expected: n, Actual: len(vec)}
		}
	}

	res := &Result{
		Assigned:     make([]int32, n),
		Contributors: len(collection),
	}
	if opts.ComputeDiversity {
		res.Consensus = make([]int32, n)
		res.Diversity = make([]int32, n)
	}

	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func(count int) {
		if opts.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done += count
		opts.Progress(done, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decideRange(collection, res, start, end)
			report(end - start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// decideRange fills res for vertices [start, end). Each goroutine owns a
// disjoint range of the output slices.
func decideRange(collection []labels.Vector, res *Result, start, end int) {
	t := newTally(len(collection))
	for v := start; v < end; v++ {
		t.reset()
		for _, vec := range collection {
			t.add(vec[v])
		}
		label, count := t.winner()
		res.Assigned[v] = label
		if res.Consensus != nil {
			res.Consensus[v] = int32(count)
			res.Diversity[v] = int32(t.distinct())
		}
	}
}

// tally counts labels at one vertex, remembering first-seen order.
type tally struct {
	labels []int32
	counts []int
}

func newTally(capacity int) *tally {
	return &tally{
		labels: make([]int32, 0, capacity),
		counts: make([]int, 0, capacity),
	}
}

func (t *tally) reset() {
	t.labels = t.labels[:0]
	t.counts = t.counts[:0]
}

func (t *tally) add(label int32) {
	for i, l := range t.labels {
		if l == label {
			t.counts[i]++
			return
		}
	}
	t.labels = append(t.labels, label)
	t.counts = append(t.counts, 1)
}

// winner returns the most frequent label. Among equally frequent labels the
// one seen first wins.
func (t *tally) winner() (int32, int) {
	best := -1
	for i, c := range t.counts {
		if best < 0 || c > t.counts[best] {
			best = i
		}
	}
	if best < 0 {
		return NoVote, 0
	}
	return t.labels[best], t.counts[best]
}

func (t *tally) distinct() int {
	return len(t.labels)
}
