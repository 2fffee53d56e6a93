package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"surfvote/internal/annot"
	"surfvote/internal/catalog"
	"surfvote/internal/config"
	"surfvote/internal/discovery"
	"surfvote/internal/loader"
	"surfvote/internal/logging"
	"surfvote/internal/mesh"
	"surfvote/internal/metrics"
	"surfvote/internal/stats"
	"surfvote/internal/vote"
)

const lockFileName = ".surfvote.lock"

// Request selects the subject and per-run options.
type Request struct {
	Subject string
	// SubjectsDir overrides paths.subjects_dir.
	SubjectsDir string
	// AnnotName overrides annot.name.
	AnnotName        string
	ComputeDiversity bool
	// SaveInflated adds the inflated surface to the configured surfaces.
	SaveInflated bool
	// RunID tags logs and catalog rows. Generated when empty.
	RunID string
}

// Runner executes requests. Metrics and Catalog are optional.
type Runner struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	Catalog *catalog.Catalog
}

type runPlan struct {
	subject   string
	annotName string
	labelDir  string
	surfDir   string
	outputDir string
	surfaces  []string
	decode    annot.DecodeOptions
	voteOpts  vote.Options
}

// Run processes one subject.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	if r.Config == nil {
		return nil, errors.New("pipeline: runner has no config")
	}
	plan, err := r.plan(req)
	if err != nil {
		return nil, err
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	ctx = logging.WithSubject(ctx, plan.subject)
	base := logging.NewComponentLogger(r.Logger, "pipeline")
	logger := logging.WithContext(ctx, base)

	summary := &Summary{
		RunID:     runID,
		Subject:   plan.subject,
		AnnotName: plan.annotName,
		LabelDir:  plan.labelDir,
		SurfDir:   plan.surfDir,
		OutputDir: plan.outputDir,
		Surfaces:  plan.surfaces,
		StartedAt: time.Now(),
	}

	groups, err := discovery.Scan(plan.labelDir, plan.annotName)
	if err != nil {
		return nil, err
	}
	if groups.Total() == 0 {
		return nil, fmt.Errorf("no annotation files containing %q in %s", plan.annotName, plan.labelDir)
	}

	if err := os.MkdirAll(plan.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(plan.outputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, plan.outputDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("output lock release failed", logging.Error(err))
		}
	}()

	r.beginCatalog(ctx, logger, summary)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("annot", plan.annotName),
		logging.Int("files", groups.Total()),
		logging.String("output_dir", plan.outputDir),
	)

	ld := loader.New(loader.Options{
		Decode:  plan.decode,
		Workers: plan.voteOpts.Workers,
		Logger:  r.Logger,
		OnFile: func(e loader.FileEvent) {
			r.Metrics.FileDecoded(e.Hemisphere.String(), e.Err)
		},
	})
	set, err := ld.Load(ctx, groups)
	if err != nil {
		r.finishCatalog(logger, summary, catalog.StatusFailed)
		return nil, err
	}
	summary.Unclassified = set.Unclassified

	for _, side := range discovery.Hemispheres {
		if err := ctx.Err(); err != nil {
			r.finishCatalog(logger, summary, catalog.StatusFailed)
			return nil, err
		}
		hs := r.runHemisphere(ctx, base, plan, set.Hemisphere(side))
		summary.Hemispheres = append(summary.Hemispheres, hs)
		r.recordHemisphere(ctx, logger, runID, hs)
	}
	summary.FinishedAt = time.Now()

	status := summary.Status()
	r.finishCatalog(logger, summary, status)
	if status != catalog.StatusFailed {
		r.Metrics.RunSucceeded(summary.FinishedAt)
	}
	if path := r.Config.Metrics.Textfile; path != "" {
		if err := r.Metrics.WriteTextfile(path); err != nil {
			logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "node_exporter keeps the previous values"),
			)
		}
	}

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.String("status", string(status)),
		logging.Int("hemispheres_ok", summary.Succeeded()),
		logging.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	if status == catalog.StatusFailed {
		return summary, fmt.Errorf("%w for subject %s", ErrAllHemispheresFailed, plan.subject)
	}
	return summary, nil
}

func (r *Runner) plan(req Request) (runPlan, error) {
	cfg := r.Config
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return runPlan{}, errors.New("subject is required")
	}
	if strings.ContainsAny(subject, `/\`) {
		return runPlan{}, fmt.Errorf("subject %q must be a directory name, not a path", subject)
	}
	subjectsDir := strings.TrimSpace(req.SubjectsDir)
	if subjectsDir == "" {
		subjectsDir = cfg.Paths.SubjectsDir
	}
	if subjectsDir == "" {
		return runPlan{}, errors.New("subjects directory is not set; pass --subjects-dir, set paths.subjects_dir, or export SUBJECTS_DIR")
	}
	annotName := strings.TrimSpace(req.AnnotName)
	if annotName == "" {
		annotName = cfg.Annot.Name
	}
	unmatched, err := annot.ParseUnmatchedPolicy(cfg.Annot.Unmatched)
	if err != nil {
		return runPlan{}, err
	}

	surfaces := cfg.AllSurfaces()
	if req.SaveInflated && !contains(surfaces, "inflated") {
		surfaces = append(surfaces, "inflated")
	}

	labelDir := filepath.Join(subjectsDir, subject, "label")
	outputDir := labelDir
	if cfg.Paths.OutputDir != "" {
		outputDir = filepath.Join(cfg.Paths.OutputDir, subject)
	}

	return runPlan{
		subject:   subject,
		annotName: annotName,
		labelDir:  labelDir,
		surfDir:   filepath.Join(subjectsDir, subject, "surf"),
		outputDir: outputDir,
		surfaces:  surfaces,
		decode: annot.DecodeOptions{
			KeepOriginalIDs: cfg.Annot.KeepOriginalIDs,
			Unmatched:       unmatched,
		},
		voteOpts: vote.Options{
			ComputeDiversity: req.ComputeDiversity,
			Workers:          cfg.Vote.Workers,
			ChunkSize:        cfg.Vote.ChunkSize,
		},
	}, nil
}

func (r *Runner) runHemisphere(ctx context.Context, base *slog.Logger, plan runPlan, hemi *loader.Hemisphere) HemisphereSummary {
	side := hemi.Side
	hs := HemisphereSummary{Hemisphere: side}
	for _, l := range hemi.Labelings {
		hs.Files = append(hs.Files, l.Path)
	}
	ctx = logging.WithHemisphere(ctx, side.String())
	logger := logging.WithContext(ctx, base)
	start := time.Now()

	fail := func(stage string, err error) HemisphereSummary {
		hs.Stage = stage
		hs.Err = err
		hs.Elapsed = time.Since(start)
		r.Metrics.HemisphereFailed(side.String(), stage)
		logging.ErrorWithContext(logger, "hemisphere skipped", "hemisphere_failed",
			logging.String("stage", stage),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return hs
	}

	if hemi.Err != nil {
		return fail(StageLoad, hemi.Err)
	}

	opts := plan.voteOpts
	sampler := logging.NewProgressSampler(25)
	opts.Progress = func(done, total int) {
		if sampler.ShouldLog(side.String(), done, total) {
			logger.Debug("vote progress",
				logging.Int("done", done),
				logging.Int("total", total),
				logging.Float64("percent", logging.Percent(done, total)),
			)
		}
	}

	voteStart := time.Now()
	res, err := vote.Vote(ctx, hemi.Collection(), opts)
	if err != nil {
		var lenErr *vote.InconsistentLengthError
		if errors.As(err, &lenErr) && lenErr.Index < len(hemi.Labelings) {
			err = fmt.Errorf("%s: %w", hemi.Labelings[lenErr.Index].Path, err)
		}
		return fail(StageVote, fmt.Errorf("vote %s hemisphere: %w", side, err))
	}
	r.Metrics.VoteFinished(side.String(), res.VertexCount(), time.Since(voteStart))
	hs.Stats = stats.Describe(res)

	fields := meshFields(res)
	for _, surface := range plan.surfaces {
		name := side.Prefix() + "." + surface
		in := filepath.Join(plan.surfDir, name+".vtk")
		out := filepath.Join(plan.outputDir, name+".labels.vtk")
		if err := writeSurface(in, out, fields, res.VertexCount()); err != nil {
			return fail(StageMesh, err)
		}
		hs.Outputs = append(hs.Outputs, out)
		logger.Debug("mesh written", logging.String(logging.FieldPath, out))
	}
	hs.Elapsed = time.Since(start)

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "hemisphere_voted"),
		logging.Int("files", len(hs.Files)),
		logging.Int("vertices", hs.Stats.Vertices),
		logging.Int("labels", hs.Stats.DistinctLabels),
		logging.Int("unlabeled", hs.Stats.Unlabeled),
	}
	if hs.Stats.HasDiversity {
		attrs = append(attrs,
			logging.Float64("mean_consensus", hs.Stats.MeanConsensus),
			logging.Float64("mean_diversity", hs.Stats.MeanDiversity),
		)
	}
	logger.Info("hemisphere voted", logging.Args(attrs...)...)
	return hs
}

func writeSurface(in, out string, fields []mesh.Field, vertices int) error {
	pd, err := mesh.ReadFile(in)
	if err != nil {
		return err
	}
	if pd.PointCount() != vertices {
		return &mesh.FieldLengthError{Name: vote.FieldAssigned, Length: vertices, Points: pd.PointCount()}
	}
	if err := mesh.WriteFile(out, pd, fields...); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

func meshFields(res *vote.Result) []mesh.Field {
	src := res.Fields()
	out := make([]mesh.Field, len(src))
	for i, f := range src {
		out[i] = mesh.Field{Name: f.Name, Values: f.Values}
	}
	return out
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, annot.ErrTruncated), errors.Is(err, annot.ErrMalformed):
		return "the annotation file is damaged or not an .annot file; regenerate it"
	case errors.Is(err, annot.ErrUnsupportedTableVersion):
		return "only legacy and version 2 color tables are supported"
	case errors.Is(err, annot.ErrLabelNotFound):
		return "set annot.unmatched = \"sentinel\" to keep going with -1 for unknown values"
	case errors.Is(err, vote.ErrEmptyCollection):
		return "no annotation files for this hemisphere; check the lh./rh. prefixes and annot name"
	case errors.Is(err, vote.ErrInconsistentVertexCount), errors.Is(err, mesh.ErrFieldLength):
		return "annotations and meshes must come from the same surface"
	case errors.Is(err, os.ErrNotExist):
		return "check the subject's surf directory for the expected .vtk meshes"
	default:
		return "check logs for details"
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
