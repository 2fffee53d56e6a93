package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"surfvote/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SUBJECTS_DIR", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "surfvote", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Catalog.Path != filepath.Join(tempHome, ".local", "share", "surfvote", "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.Catalog.Path)
	}
	if cfg.Catalog.Enabled {
		t.Fatal("expected catalog disabled by default")
	}
	if cfg.Annot.Name != "aparc" || cfg.Annot.Unmatched != "fail" {
		t.Fatalf("unexpected annot defaults: %+v", cfg.Annot)
	}
	if !cfg.Vote.ComputeDiversity || cfg.Vote.ChunkSize != 4096 {
		t.Fatalf("unexpected vote defaults: %+v", cfg.Vote)
	}
	if got := cfg.AllSurfaces(); len(got) != 1 || got[0] != "pial" {
		t.Fatalf("unexpected surfaces: %v", got)
	}
	if cfg.Paths.SubjectsDir != "" || cfg.Paths.LogDir != "" {
		t.Fatalf("expected empty optional paths, got %+v", cfg.Paths)
	}
}

func TestLoadUsesSubjectsDirEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	subjects := t.TempDir()
	t.Setenv("SUBJECTS_DIR", subjects)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.SubjectsDir != subjects {
		t.Fatalf("expected subjects dir from env, got %q", cfg.Paths.SubjectsDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "surfvote.toml")
	t.Setenv("SUBJECTS_DIR", "/ignored")

	type payload struct {
		Paths struct {
			SubjectsDir string `toml:"subjects_dir"`
		} `toml:"paths"`
		Annot struct {
			Name      string `toml:"name"`
			Unmatched string `toml:"unmatched"`
		} `toml:"annot"`
		Mesh struct {
			Surfaces     []string `toml:"surfaces"`
			SaveInflated bool     `toml:"save_inflated"`
		} `toml:"mesh"`
		Logging struct {
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.SubjectsDir = filepath.Join(tempDir, "subjects")
	custom.Annot.Name = " aparc.a2009s "
	custom.Annot.Unmatched = "SENTINEL"
	custom.Mesh.Surfaces = []string{"Pial", "white", "pial", ""}
	custom.Mesh.SaveInflated = true
	custom.Logging.Level = "WARNING"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.SubjectsDir != custom.Paths.SubjectsDir {
		t.Fatalf("file value should win over SUBJECTS_DIR, got %q", cfg.Paths.SubjectsDir)
	}
	if cfg.Annot.Name != "aparc.a2009s" {
		t.Fatalf("expected trimmed annot name, got %q", cfg.Annot.Name)
	}
	if cfg.Annot.Unmatched != "sentinel" {
		t.Fatalf("expected lowercased policy, got %q", cfg.Annot.Unmatched)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected warning to normalize to warn, got %q", cfg.Logging.Level)
	}
	want := []string{"pial", "white", "inflated"}
	got := cfg.AllSurfaces()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("surfaces = %v, want %v", got, want)
	}
	if !cfg.Vote.ComputeDiversity {
		t.Fatal("unset keys keep their defaults")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "surfvote.toml")
	if err := os.WriteFile(configPath, []byte("[vote]\nworkerz = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(contents) != config.SampleConfig() {
		t.Fatal("sample file differs from embedded sample")
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Annot.Name != "aparc" {
		t.Fatalf("unexpected sample annot name %q", cfg.Annot.Name)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if !exists || !strings.HasSuffix(loaded.Paths.LogDir, filepath.Join("surfvote", "logs")) {
		t.Fatalf("unexpected log dir %q", loaded.Paths.LogDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty annot name", func(c *config.Config) { c.Annot.Name = "" }},
		{"annot name with path", func(c *config.Config) { c.Annot.Name = "label/aparc" }},
		{"unknown unmatched policy", func(c *config.Config) { c.Annot.Unmatched = "drop" }},
		{"negative workers", func(c *config.Config) { c.Vote.Workers = -1 }},
		{"negative chunk size", func(c *config.Config) { c.Vote.ChunkSize = -5 }},
		{"surface with extension", func(c *config.Config) { c.Mesh.Surfaces = []string{"pial.vtk"} }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"negative retention", func(c *config.Config) { c.Logging.RetentionDays = -1 }},
		{"metrics without prom suffix", func(c *config.Config) { c.Metrics.Textfile = "/tmp/surfvote.txt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
