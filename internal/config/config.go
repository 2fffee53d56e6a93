package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// SubjectsDir is the FreeSurfer subjects root. Falls back to $SUBJECTS_DIR.
	SubjectsDir string `toml:"subjects_dir"`
	// OutputDir receives labeled meshes. Empty means each subject's label dir.
	OutputDir string `toml:"output_dir"`
	// LogDir receives dated JSON log files. Empty disables file logging.
	LogDir string `toml:"log_dir"`
}

// Annot controls how annotation files are found and decoded.
type Annot struct {
	// Name is the file-name fragment that selects the annotation set.
	Name            string `toml:"name"`
	KeepOriginalIDs bool   `toml:"keep_original_ids"`
	// Unmatched is "fail" or "sentinel".
	Unmatched string `toml:"unmatched"`
}

// Vote tunes the vote engine.
type Vote struct {
	ComputeDiversity bool `toml:"compute_diversity"`
	// Workers bounds parallel decodes and vote chunks. 0 means GOMAXPROCS.
	Workers   int `toml:"workers"`
	ChunkSize int `toml:"chunk_size"`
}

// Mesh selects the surfaces that receive vote fields.
type Mesh struct {
	Surfaces     []string `toml:"surfaces"`
	SaveInflated bool     `toml:"save_inflated"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Catalog configures the SQLite run ledger.
type Catalog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Metrics configures the Prometheus textfile export.
type Metrics struct {
	// Textfile is the .prom file written after each run. Empty disables export.
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for surfvote.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Annot   Annot   `toml:"annot"`
	Vote    Vote    `toml:"vote"`
	Mesh    Mesh    `toml:"mesh"`
	Logging Logging `toml:"logging"`
	Catalog Catalog `toml:"catalog"`
	Metrics Metrics `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. It also reports the resolved path and
// whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// AllSurfaces lists the mesh surfaces a run writes, with "inflated" appended
// when SaveInflated is set and it is not already listed.
func (c *Config) AllSurfaces() []string {
	out := append([]string(nil), c.Mesh.Surfaces...)
	if !c.Mesh.SaveInflated {
		return out
	}
	for _, s := range out {
		if s == inflatedSurface {
			return out
		}
	}
	return append(out, inflatedSurface)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
