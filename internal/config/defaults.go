package config

const (
	defaultConfigPath       = "~/.config/surfvote/config.toml"
	projectConfigName       = "surfvote.toml"
	defaultAnnotName        = "aparc"
	defaultUnmatched        = "fail"
	defaultChunkSize        = 4096
	defaultLogFormat        = "auto"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultCatalogPath      = "~/.local/share/surfvote/catalog.db"
	pialSurface             = "pial"
	inflatedSurface         = "inflated"
	subjectsDirEnv          = "SUBJECTS_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Annot: Annot{
			Name:      defaultAnnotName,
			Unmatched: defaultUnmatched,
		},
		Vote: Vote{
			ComputeDiversity: true,
			ChunkSize:        defaultChunkSize,
		},
		Mesh: Mesh{
			Surfaces: []string{pialSurface},
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Catalog: Catalog{
			Path: defaultCatalogPath,
		},
	}
}
