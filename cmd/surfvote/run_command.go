package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"surfvote/internal/catalog"
	"surfvote/internal/config"
	"surfvote/internal/logging"
	"surfvote/internal/metrics"
	"surfvote/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		subjectsDir string
		annotName   string
		diversity   bool
		inflated    bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "run SUBJECT",
		Short: "Vote a subject's annotations and write labeled meshes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runID := uuid.NewString()
			logger, err := ctx.logger(runID)
			if err != nil {
				return err
			}

			req := pipeline.Request{
				Subject:          args[0],
				SubjectsDir:      subjectsDir,
				AnnotName:        annotName,
				ComputeDiversity: cfg.Vote.ComputeDiversity,
				SaveInflated:     cfg.Mesh.SaveInflated,
				RunID:            runID,
			}
			if cmd.Flags().Changed("diversity") {
				req.ComputeDiversity = diversity
			}
			if cmd.Flags().Changed("inflated") {
				req.SaveInflated = inflated
			}

			runner := &pipeline.Runner{Config: cfg, Logger: logger}
			if cfg.Metrics.Textfile != "" {
				runner.Metrics = metrics.New(req.Subject)
			}
			if cat := openCatalog(cmd.Context(), cfg, logger); cat != nil {
				defer cat.Close()
				runner.Catalog = cat
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, runErr := runner.Run(runCtx, req)
			if summary == nil {
				return runErr
			}
			view := newRunView(summary)
			if jsonOut {
				if err := writeJSON(cmd, view); err != nil {
					return err
				}
				return runErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subject %s (%s) run %s: %s in %s\n", view.Subject, view.AnnotName, view.RunID, view.Status, view.Elapsed)
			parts := []string{renderHemispheres(view.Hemispheres)}
			for _, h := range summary.Hemispheres {
				if h.OK() {
					parts = append(parts, renderTopLabels(h.Hemisphere.String(), h.Stats))
				}
			}
			fmt.Fprint(out, joinLines(parts...))
			for _, h := range view.Hemispheres {
				for _, path := range h.Outputs {
					fmt.Fprintf(out, "Wrote %s\n", path)
				}
				if h.Error != "" {
					fmt.Fprintf(out, "%s failed: %s\n", h.Hemisphere, h.Error)
				}
			}
			if len(view.Unclassified) > 0 {
				fmt.Fprintf(out, "Ignored %d file(s) without an lh./rh. prefix\n", len(view.Unclassified))
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&subjectsDir, "subjects-dir", "", "Override paths.subjects_dir")
	cmd.Flags().StringVar(&annotName, "annot", "", "Override annot.name")
	cmd.Flags().BoolVar(&diversity, "diversity", false, "Write Common and Different fields (default from vote.compute_diversity)")
	cmd.Flags().BoolVar(&inflated, "inflated", false, "Also label the inflated surface (default from mesh.save_inflated)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON")
	return cmd
}

// openCatalog returns nil when the ledger is disabled or cannot be opened.
func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) *catalog.Catalog {
	if !cfg.Catalog.Enabled {
		return nil
	}
	cat, err := catalog.Open(ctx, cfg.Catalog.Path)
	if err != nil {
		logging.WarnWithContext(logger, "run catalog unavailable", "catalog_open_failed",
			logging.String(logging.FieldPath, cfg.Catalog.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is not recorded in history"),
		)
		return nil
	}
	return cat
}
