package pipeline

import (
	"context"
	"log/slog"
	"time"

	"surfvote/internal/catalog"
	"surfvote/internal/logging"
)

// Catalog writes are best effort: a broken ledger never fails a vote.

func (r *Runner) beginCatalog(ctx context.Context, logger *slog.Logger, s *Summary) {
	if r.Catalog == nil {
		return
	}
	err := r.Catalog.BeginRun(ctx, catalog.Run{
		ID:        s.RunID,
		Subject:   s.Subject,
		AnnotName: s.AnnotName,
		StartedAt: s.StartedAt,
	})
	if err != nil {
		catalogWarning(logger, err)
	}
}

func (r *Runner) recordHemisphere(ctx context.Context, logger *slog.Logger, runID string, hs HemisphereSummary) {
	if r.Catalog == nil {
		return
	}
	rec := catalog.HemisphereRecord{
		RunID:      runID,
		Hemisphere: hs.Hemisphere.String(),
		Files:      len(hs.Files),
		Vertices:   hs.Stats.Vertices,
		Unlabeled:  hs.Stats.Unlabeled,
	}
	if hs.Err != nil {
		rec.Error = hs.Err.Error()
	} else if hs.Stats.HasDiversity {
		consensus, diversity := hs.Stats.MeanConsensus, hs.Stats.MeanDiversity
		rec.MeanConsensus = &consensus
		rec.MeanDiversity = &diversity
	}
	if err := r.Catalog.RecordHemisphere(ctx, rec); err != nil {
		catalogWarning(logger, err)
	}
}

func (r *Runner) finishCatalog(logger *slog.Logger, s *Summary, status catalog.RunStatus) {
	if r.Catalog == nil {
		return
	}
	finished := s.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	// The run may have been canceled; record the outcome anyway.
	if err := r.Catalog.FinishRun(context.Background(), s.RunID, status, finished); err != nil {
		catalogWarning(logger, err)
	}
}

func catalogWarning(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "catalog write failed", "catalog_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check catalog.path permissions and disk space"),
		logging.String(logging.FieldImpact, "run history is incomplete; outputs are unaffected"),
	)
}
