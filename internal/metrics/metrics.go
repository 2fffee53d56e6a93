// Package metrics exposes Prometheus collectors for a surfvote run.
//
// Collectors live on a private registry rather than the global default so
// tests and repeated runs in one process never collide. After a run the
// registry can be written to a node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"surfvote/internal/textutil"
)

// Outcome label values for FilesDecoded.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder holds the collectors. A nil *Recorder accepts every call and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	filesDecoded       *prometheus.CounterVec
	verticesVoted      *prometheus.CounterVec
	voteDuration       *prometheus.HistogramVec
	hemisphereFailures *prometheus.CounterVec
	lastSuccess        prometheus.Gauge
}

// New registers the collectors on a fresh registry. Every series carries a
// subject label.
func New(subject string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"subject": textutil.SanitizeToken(subject)}

	return &Recorder{
		registry: reg,
		filesDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "surfvote_annotation_files_total",
				Help:        "Annotation files processed, by hemisphere and outcome",
				ConstLabels: constLabels,
			},
			[]string{"hemisphere", "outcome"},
		),
		verticesVoted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "surfvote_vertices_voted_total",
				Help:        "Vertices decided by majority vote",
				ConstLabels: constLabels,
			},
			[]string{"hemisphere"},
		),
		voteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "surfvote_vote_duration_seconds",
				Help:        "Wall time of one hemisphere vote",
				ConstLabels: constLabels,
				Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"hemisphere"},
		),
		hemisphereFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "surfvote_hemisphere_failures_total",
				Help:        "Hemispheres that produced no output, by failing stage",
				ConstLabels: constLabels,
			},
			[]string{"hemisphere", "stage"},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name:        "surfvote_last_success_timestamp_seconds",
				Help:        "Unix time of the last run that wrote at least one hemisphere",
				ConstLabels: constLabels,
			},
		),
	}
}

// Registry returns the private registry, for exposition or tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// FileDecoded counts one attempted annotation file.
func (r *Recorder) FileDecoded(hemisphere string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	r.filesDecoded.WithLabelValues(hemisphere, outcome).Inc()
}

// VoteFinished records a successful hemisphere vote.
func (r *Recorder) VoteFinished(hemisphere string, vertices int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.verticesVoted.WithLabelValues(hemisphere).Add(float64(vertices))
	r.voteDuration.WithLabelValues(hemisphere).Observe(elapsed.Seconds())
}

// HemisphereFailed counts a hemisphere that stopped at stage
// ("load", "vote", "mesh").
func (r *Recorder) HemisphereFailed(hemisphere, stage string) {
	if r == nil {
		return
	}
	r.hemisphereFailures.WithLabelValues(hemisphere, stage).Inc()
}

// RunSucceeded stamps the last-success gauge.
func (r *Recorder) RunSucceeded(at time.Time) {
	if r == nil {
		return
	}
	r.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes every collected series to path in the text
// exposition format. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
