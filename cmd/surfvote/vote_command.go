package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"surfvote/internal/annot"
	"surfvote/internal/discovery"
	"surfvote/internal/loader"
	"surfvote/internal/logging"
	"surfvote/internal/stats"
	"surfvote/internal/vote"
)

func newVoteCommand(ctx *commandContext) *cobra.Command {
	var (
		annotName string
		diversity bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "vote DIR",
		Short: "Vote the annotations in a directory and print per-hemisphere statistics",
		Long: "Vote the lh./rh. annotation files in DIR whose names contain the annotation\n" +
			"fragment. Nothing is written; use run to label surface meshes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger("")
			if err != nil {
				return err
			}
			if annotName == "" {
				annotName = cfg.Annot.Name
			}
			if !cmd.Flags().Changed("diversity") {
				diversity = cfg.Vote.ComputeDiversity
			}
			unmatched, err := annot.ParseUnmatchedPolicy(cfg.Annot.Unmatched)
			if err != nil {
				return err
			}

			groups, err := discovery.Scan(args[0], annotName)
			if err != nil {
				return err
			}
			if groups.Total() == 0 {
				return fmt.Errorf("no annotation files containing %q in %s", annotName, args[0])
			}
			set, err := loader.New(loader.Options{
				Decode:  annot.DecodeOptions{KeepOriginalIDs: cfg.Annot.KeepOriginalIDs, Unmatched: unmatched},
				Workers: cfg.Vote.Workers,
				Logger:  logger,
			}).Load(cmd.Context(), groups)
			if err != nil {
				return err
			}

			views := make([]hemisphereView, 0, len(discovery.Hemispheres))
			summaries := make(map[discovery.Hemisphere]stats.Summary)
			for _, side := range discovery.Hemispheres {
				hemi := set.Hemisphere(side)
				files := make([]string, 0, len(hemi.Labelings))
				for _, l := range hemi.Labelings {
					files = append(files, l.Path)
				}
				fail := func(stage string, err error) {
					v := hemisphereView{Hemisphere: side.String(), Status: "failed", Files: files, Stage: stage, Error: err.Error()}
					views = append(views, v)
					logger.Warn("hemisphere skipped",
						logging.String(logging.FieldHemisphere, side.String()),
						logging.Error(err),
					)
				}
				if hemi.Err != nil {
					fail("load", hemi.Err)
					continue
				}
				res, err := vote.Vote(cmd.Context(), hemi.Collection(), vote.Options{
					ComputeDiversity: diversity,
					Workers:          cfg.Vote.Workers,
					ChunkSize:        cfg.Vote.ChunkSize,
				})
				if err != nil {
					fail("vote", err)
					continue
				}
				s := stats.Describe(res)
				summaries[side] = s
				views = append(views, newHemisphereView(side.String(), files, s))
			}

			if jsonOut {
				return writeJSON(cmd, views)
			}
			parts := []string{renderHemispheres(views)}
			for _, side := range discovery.Hemispheres {
				if s, ok := summaries[side]; ok {
					parts = append(parts, renderTopLabels(side.String(), s))
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), joinLines(parts...))
			return nil
		},
	}

	cmd.Flags().StringVar(&annotName, "annot", "", "Annotation name fragment (default from annot.name)")
	cmd.Flags().BoolVar(&diversity, "diversity", false, "Compute consensus and diversity (default from vote.compute_diversity)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print statistics as JSON")
	return cmd
}
