package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"surfvote/internal/pipeline"
	"surfvote/internal/stats"
	"surfvote/internal/textutil"
)

const topLabels = 5

type hemisphereView struct {
	Hemisphere    string   `json:"hemisphere"`
	Status        string   `json:"status"`
	Files         []string `json:"files"`
	Vertices      int      `json:"vertices"`
	Contributors  int      `json:"contributors"`
	Labels        int      `json:"distinct_labels"`
	Unlabeled     int      `json:"unlabeled"`
	Unanimous     *int     `json:"unanimous,omitempty"`
	MeanConsensus *float64 `json:"mean_consensus,omitempty"`
	MeanDiversity *float64 `json:"mean_diversity,omitempty"`
	Outputs       []string `json:"outputs,omitempty"`
	Stage         string   `json:"failed_stage,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type runView struct {
	RunID        string           `json:"run_id"`
	Subject      string           `json:"subject"`
	AnnotName    string           `json:"annot"`
	OutputDir    string           `json:"output_dir"`
	Status       string           `json:"status"`
	Elapsed      string           `json:"elapsed"`
	Unclassified []string         `json:"unclassified,omitempty"`
	Hemispheres  []hemisphereView `json:"hemispheres"`
}

func newHemisphereView(name string, files []string, s stats.Summary) hemisphereView {
	view := hemisphereView{
		Hemisphere:   name,
		Status:       "ok",
		Files:        files,
		Vertices:     s.Vertices,
		Contributors: s.Contributors,
		Labels:       s.DistinctLabels,
		Unlabeled:    s.Unlabeled,
	}
	if s.HasDiversity {
		unanimous, consensus, diversity := s.Unanimous, s.MeanConsensus, s.MeanDiversity
		view.Unanimous = &unanimous
		view.MeanConsensus = &consensus
		view.MeanDiversity = &diversity
	}
	return view
}

func newRunView(s *pipeline.Summary) runView {
	view := runView{
		RunID:        s.RunID,
		Subject:      s.Subject,
		AnnotName:    s.AnnotName,
		OutputDir:    s.OutputDir,
		Status:       string(s.Status()),
		Elapsed:      s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String(),
		Unclassified: s.Unclassified,
	}
	for _, h := range s.Hemispheres {
		hv := newHemisphereView(h.Hemisphere.String(), h.Files, h.Stats)
		hv.Outputs = h.Outputs
		if h.Err != nil {
			hv.Status = "failed"
			hv.Stage = h.Stage
			hv.Error = h.Err.Error()
		}
		view.Hemispheres = append(view.Hemispheres, hv)
	}
	return view
}

func renderHemispheres(views []hemisphereView) string {
	headers := []string{"Hemisphere", "Status", "Files", "Vertices", "Labels", "Unlabeled", "Unanimous", "Consensus", "Diversity"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		status := textutil.DisplayName(v.Status)
		if v.Stage != "" {
			status += " (" + v.Stage + ")"
		}
		rows = append(rows, []string{
			textutil.DisplayName(v.Hemisphere),
			status,
			strconv.Itoa(len(v.Files)),
			strconv.Itoa(v.Vertices),
			strconv.Itoa(v.Labels),
			strconv.Itoa(v.Unlabeled),
			formatOptionalInt(v.Unanimous),
			formatOptionalFloat(v.MeanConsensus, "%.1f%%", 100),
			formatOptionalFloat(v.MeanDiversity, "%.2f", 1),
		})
	}
	return renderTable(headers, rows, aligns)
}

func renderTopLabels(hemisphere string, s stats.Summary) string {
	top := s.Top(topLabels)
	if len(top) == 0 {
		return ""
	}
	rows := make([][]string, 0, len(top))
	for _, lc := range top {
		share := 0.0
		if s.Vertices > 0 {
			share = 100 * float64(lc.Vertices) / float64(s.Vertices)
		}
		rows = append(rows, []string{
			strconv.Itoa(int(lc.Label)),
			strconv.Itoa(lc.Vertices),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	title := textutil.DisplayName(hemisphere) + " top labels"
	return title + "\n" + renderTable(
		[]string{"Label", "Vertices", "Share"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight},
	)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatOptionalFloat(v *float64, format string, scale float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v*scale)
}

func joinLines(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimRight(p, "\n"))
		}
	}
	return strings.Join(kept, "\n\n") + "\n"
}
