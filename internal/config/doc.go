// Package config loads, normalizes, and validates surfvote configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the FreeSurfer SUBJECTS_DIR environment variable
// when no subjects directory is configured. The Config type carries every
// knob the CLI and pipeline need so decode policy, vote options, mesh
// surfaces, and output locations are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
