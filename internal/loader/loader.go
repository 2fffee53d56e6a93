package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"surfvote/internal/annot"
	"surfvote/internal/discovery"
	"surfvote/internal/labels"
	"surfvote/internal/logging"
)

// Labeling is one decoded and combined annotation file.
type Labeling struct {
	Path   string
	Labels labels.Vector
}

// Hemisphere is the load outcome for one side. When Err is set Labelings is
// nil; a hemisphere never carries a partial collection.
type Hemisphere struct {
	Side      discovery.Hemisphere
	Labelings []Labeling
	Err       error
}

// Collection returns the label vectors in scan order, ready for voting.
func (h *Hemisphere) Collection() []labels.Vector {
	if h == nil {
		return nil
	}
	out := make([]labels.Vector, len(h.Labelings))
	for i, l := range h.Labelings {
		out[i] = l.Labels
	}
	return out
}

// Set holds both hemispheres of one load.
type Set struct {
	Left  Hemisphere
	Right Hemisphere
	// Unclassified lists matching files that were skipped.
	Unclassified []string
}

// Hemisphere returns the entry for side.
func (s *Set) Hemisphere(side discovery.Hemisphere) *Hemisphere {
	if side == discovery.Right {
		return &s.Right
	}
	return &s.Left
}

// FileEvent describes one decoded (or rejected) file.
type FileEvent struct {
	Hemisphere discovery.Hemisphere
	Path       string
	Vertices   int
	Format     annot.Format
	Elapsed    time.Duration
	Err        error
}

// Options configures a Loader.
type Options struct {
	Decode annot.DecodeOptions
	// Workers bounds concurrent decodes per hemisphere. Zero uses GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
	// OnFile is called once per attempted file. Calls are serialized.
	OnFile func(FileEvent)
}

// Loader decodes discovery groups into label collections.
type Loader struct {
	opts   Options
	logger *slog.Logger
	mu     sync.Mutex
}

// New returns a Loader for opts.
func New(opts Options) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Loader{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "loader"),
	}
}

// Load decodes every classified file in groups. Per-file failures are
// reported on the owning hemisphere; Load itself fails only when groups is
// nil or ctx is canceled.
func (l *Loader) Load(ctx context.Context, groups *discovery.Groups) (*Set, error) {
	if groups == nil {
		return nil, errors.New("load annotations: no discovery groups")
	}

	logger := logging.WithContext(ctx, l.logger)
	set := &Set{Unclassified: append([]string(nil), groups.Unclassified...)}
	for _, path := range groups.Unclassified {
		logging.WarnWithContext(logger, "annotation file skipped; name has no hemisphere prefix", "discovery_unclassified",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldErrorHint, "rename the file to start with lh. or rh."),
			logging.String(logging.FieldImpact, "file does not contribute to either hemisphere"),
		)
	}

	for _, side := range discovery.Hemispheres {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hemi := set.Hemisphere(side)
		hemi.Side = side
		labelings, err := l.loadHemisphere(ctx, side, groups.Files(side))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			hemi.Err = fmt.Errorf("load %s hemisphere: %w", side, err)
			continue
		}
		hemi.Labelings = labelings
	}
	return set, nil
}

func (l *Loader) loadHemisphere(ctx context.Context, side discovery.Hemisphere, paths []string) ([]Labeling, error) {
	logger := logging.WithContext(logging.WithHemisphere(ctx, side.String()), l.logger)
	out := make([]Labeling, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			ann, err := ReadAnnotation(path, l.opts.Decode)
			event := FileEvent{Hemisphere: side, Path: path, Elapsed: time.Since(start), Err: err}
			if ann != nil {
				event.Vertices = ann.VertexCount()
				event.Format = ann.Format
			}
			l.emit(logger, event)
			if err != nil {
				return err
			}
			out[i] = Labeling{Path: path, Labels: labels.CombineAll(ann.Labels)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) emit(logger *slog.Logger, event FileEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Err != nil {
		logger.Debug("annotation decode failed",
			logging.String(logging.FieldPath, event.Path),
			logging.Error(event.Err),
		)
	} else {
		logger.Debug("annotation decoded",
			logging.String(logging.FieldPath, event.Path),
			logging.Int("vertices", event.Vertices),
			logging.String("format", event.Format.String()),
			logging.Duration("elapsed", event.Elapsed),
		)
	}
	if l.opts.OnFile != nil {
		l.opts.OnFile(event)
	}
}
