package testsupport

import (
	"path/filepath"
	"testing"

	"surfvote/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory: subjects
// under <base>/subjects, catalog at <base>/catalog.db (disabled), no log dir,
// two workers, and a small chunk size so tests exercise chunking.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SubjectsDir = filepath.Join(base, "subjects")
	cfgVal.Paths.LogDir = ""
	cfgVal.Catalog.Path = filepath.Join(base, "catalog.db")
	cfgVal.Vote.Workers = 2
	cfgVal.Vote.ChunkSize = 2
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithAnnotName sets the annotation fragment.
func WithAnnotName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Annot.Name = name
	}
}

// WithDiversity toggles consensus/diversity output.
func WithDiversity(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vote.ComputeDiversity = enabled
	}
}

// WithInflated also writes the inflated surface.
func WithInflated() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mesh.SaveInflated = true
	}
}

// WithCatalog enables the run ledger at its temp path.
func WithCatalog() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Enabled = true
	}
}

// WithMetricsTextfile enables the textfile export under the temp dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "surfvote.prom")
	}
}

// WithOutputDir redirects meshes to <base>/out.
func WithOutputDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = filepath.Join(b.baseDir, "out")
	}
}

// WithUnmatched sets the decode policy for unknown vertex values.
func WithUnmatched(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Annot.Unmatched = policy
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SubjectsDir)
}
