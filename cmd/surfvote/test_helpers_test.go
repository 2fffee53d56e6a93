package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"surfvote/internal/annot"
	"surfvote/internal/config"
	"surfvote/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	labelDir   string
	surfDir    string
}

// setupCLITestEnv writes a config file and a subject "bert" with three
// annotation files and a three-vertex pial mesh per hemisphere.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithCatalog(), testsupport.WithMetricsTextfile())
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	labelDir, surfDir := testsupport.Subject(t, cfg.Paths.SubjectsDir, "bert")
	positions := map[string][]int32{
		"a": {2, 5, 7},
		"b": {2, 6, 7},
		"c": {3, 6, 8},
	}
	for name, p := range positions {
		testsupport.WriteAnnot(t, filepath.Join(labelDir, "lh.aparc."+name+".annot"), annot.FormatLegacy, p)
		testsupport.WriteAnnot(t, filepath.Join(labelDir, "rh.aparc."+name+".annot"), annot.FormatV2, p)
	}
	testsupport.WriteMesh(t, filepath.Join(surfDir, "lh.pial.vtk"), 3)
	testsupport.WriteMesh(t, filepath.Join(surfDir, "rh.pial.vtk"), 3)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, labelDir: labelDir, surfDir: surfDir}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
