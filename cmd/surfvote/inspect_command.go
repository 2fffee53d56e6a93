package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"surfvote/internal/annot"
	"surfvote/internal/loader"
)

type entryView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	R        int32  `json:"r"`
	G        int32  `json:"g"`
	B        int32  `json:"b"`
	PackedID int64  `json:"packed_id"`
	Vertices int    `json:"vertices"`
}

type inspectView struct {
	Path        string      `json:"path"`
	Compression string      `json:"compression"`
	Format      string      `json:"format"`
	OrigPath    string      `json:"color_table_origin"`
	Vertices    int         `json:"vertices"`
	Unlabeled   int         `json:"unlabeled"`
	Entries     []entryView `json:"entries"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		origIDs bool
		used    bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print an annotation file's header and color table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			unmatched, err := annot.ParseUnmatchedPolicy(cfg.Annot.Unmatched)
			if err != nil {
				return err
			}
			path := args[0]
			ann, err := loader.ReadAnnotation(path, annot.DecodeOptions{KeepOriginalIDs: origIDs, Unmatched: unmatched})
			if err != nil {
				return err
			}

			codec, err := loader.DetectFileCompression(path)
			if err != nil {
				return err
			}
			view := buildInspectView(path, ann, origIDs, used)
			view.Compression = codec.String()
			if jsonOut {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:         %s\n", view.Path)
			fmt.Fprintf(out, "Compression:  %s\n", view.Compression)
			fmt.Fprintf(out, "Color table:  %s (%d entries)\n", view.Format, len(ann.ColorTable))
			fmt.Fprintf(out, "Table origin: %s\n", view.OrigPath)
			fmt.Fprintf(out, "Vertices:     %d\n", view.Vertices)
			if view.Unlabeled > 0 {
				fmt.Fprintf(out, "Unlabeled:    %d\n", view.Unlabeled)
			}

			rows := make([][]string, 0, len(view.Entries))
			for _, e := range view.Entries {
				rows = append(rows, []string{
					strconv.Itoa(e.Index),
					e.Name,
					fmt.Sprintf("%d,%d,%d", e.R, e.G, e.B),
					strconv.FormatInt(e.PackedID, 10),
					strconv.Itoa(e.Vertices),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Index", "Name", "RGB", "Packed ID", "Vertices"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&origIDs, "orig-ids", false, "Keep packed color values instead of remapping to table positions")
	cmd.Flags().BoolVar(&used, "used", false, "Only list entries assigned to at least one vertex")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

// buildInspectView counts vertices per entry. Remapped labels are table
// positions; with origIDs they are matched against packed ids.
func buildInspectView(path string, ann *annot.Annotation, origIDs, usedOnly bool) inspectView {
	view := inspectView{
		Path:     path,
		Format:   ann.Format.String(),
		OrigPath: ann.OrigPath,
		Vertices: ann.VertexCount(),
	}
	counts := make(map[int64]int)
	for _, v := range ann.Labels {
		if v == annot.Unlabeled && !origIDs {
			view.Unlabeled++
			continue
		}
		counts[int64(v)]++
	}
	for i, entry := range ann.ColorTable {
		key := int64(i)
		if origIDs {
			key = entry.PackedID
		}
		n := counts[key]
		if usedOnly && n == 0 {
			continue
		}
		view.Entries = append(view.Entries, entryView{
			Index:    i,
			Name:     entry.Name,
			R:        entry.R,
			G:        entry.G,
			B:        entry.B,
			PackedID: entry.PackedID,
			Vertices: n,
		})
	}
	return view
}
