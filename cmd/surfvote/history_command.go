package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"surfvote/internal/catalog"
	"surfvote/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history [SUBJECT]",
		Short: "List recorded runs from the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.Catalog.Path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "No runs recorded (catalog %s does not exist)\n", cfg.Catalog.Path)
				return nil
			}
			cat, err := catalog.Open(cmd.Context(), cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer cat.Close()

			if runID != "" {
				records, err := cat.Hemispheres(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return fmt.Errorf("%w: %s", catalog.ErrRunNotFound, runID)
				}
				fmt.Fprintln(out, renderRecords(records))
				return nil
			}

			subject := ""
			if len(args) == 1 {
				subject = args[0]
			}
			runs, err := cat.Runs(cmd.Context(), subject, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				duration := "-"
				if !run.FinishedAt.IsZero() {
					duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
				}
				rows = append(rows, []string{
					run.ID,
					run.Subject,
					run.AnnotName,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					duration,
					textutil.DisplayName(string(run.Status)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Subject", "Annot", "Started", "Duration", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 lists all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show hemisphere outcomes for one run")
	return cmd
}

func renderRecords(records []catalog.HemisphereRecord) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		status := textutil.Ternary(rec.Error == "", "Ok", "Failed")
		rows = append(rows, []string{
			textutil.DisplayName(rec.Hemisphere),
			status,
			fmt.Sprint(rec.Files),
			fmt.Sprint(rec.Vertices),
			fmt.Sprint(rec.Unlabeled),
			formatOptionalFloat(rec.MeanConsensus, "%.1f%%", 100),
			formatOptionalFloat(rec.MeanDiversity, "%.2f", 1),
			rec.Error,
		})
	}
	return renderTable(
		[]string{"Hemisphere", "Status", "Files", "Vertices", "Unlabeled", "Consensus", "Diversity", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}
