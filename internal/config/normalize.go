package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnnot()
	c.normalizeMesh()
	c.normalizeLogging()
	if err := c.normalizeOutputs(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.SubjectsDir) == "" {
		if value, ok := os.LookupEnv(subjectsDirEnv); ok {
			c.Paths.SubjectsDir = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Paths.SubjectsDir, err = expandPath(strings.TrimSpace(c.Paths.SubjectsDir)); err != nil {
		return fmt.Errorf("paths.subjects_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnnot() {
	c.Annot.Name = strings.TrimSpace(c.Annot.Name)
	c.Annot.Unmatched = strings.ToLower(strings.TrimSpace(c.Annot.Unmatched))
	if c.Annot.Unmatched == "" {
		c.Annot.Unmatched = defaultUnmatched
	}
}

func (c *Config) normalizeMesh() {
	surfaces := make([]string, 0, len(c.Mesh.Surfaces))
	seen := make(map[string]struct{}, len(c.Mesh.Surfaces))
	for _, surface := range c.Mesh.Surfaces {
		normalized := strings.ToLower(strings.TrimSpace(surface))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		surfaces = append(surfaces, normalized)
	}
	if len(surfaces) == 0 {
		surfaces = []string{pialSurface}
	}
	c.Mesh.Surfaces = surfaces
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
}

func (c *Config) normalizeOutputs() error {
	var err error
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	if c.Catalog.Path, err = expandPath(strings.TrimSpace(c.Catalog.Path)); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}
