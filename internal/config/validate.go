package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnnot(); err != nil {
		return err
	}
	if err := c.validateVote(); err != nil {
		return err
	}
	if err := c.validateMesh(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnnot() error {
	if c.Annot.Name == "" {
		return errors.New("annot.name must be set")
	}
	if strings.ContainsAny(c.Annot.Name, `/\`) {
		return fmt.Errorf("annot.name %q must be a file-name fragment, not a path", c.Annot.Name)
	}
	switch c.Annot.Unmatched {
	case "fail", "sentinel":
	default:
		return fmt.Errorf("annot.unmatched must be fail or sentinel, got %q", c.Annot.Unmatched)
	}
	return nil
}

func (c *Config) validateVote() error {
	if c.Vote.Workers < 0 {
		return errors.New("vote.workers must be zero (auto) or positive")
	}
	if c.Vote.ChunkSize < 0 {
		return errors.New("vote.chunk_size must be zero (default) or positive")
	}
	return nil
}

func (c *Config) validateMesh() error {
	for _, surface := range c.Mesh.Surfaces {
		if strings.ContainsAny(surface, `/\.`) {
			return fmt.Errorf("mesh.surfaces entry %q must be a bare surface name such as pial", surface)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero (keep forever) or positive")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Textfile != "" && filepath.Ext(c.Metrics.Textfile) != ".prom" {
		return fmt.Errorf("metrics.textfile %q must end in .prom for the node_exporter textfile collector", c.Metrics.Textfile)
	}
	return nil
}
