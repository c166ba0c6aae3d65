package config

import "path/filepath"

// StagingFolderName is the fixed sibling folder of the library root that is
// watched for newly tagged files, unless overridden in the config.
const StagingFolderName = "Automatically Add to Library"

// Config holds the application configuration. It is loaded once at process
// start; changing the library or staging roots requires a restart.
type Config struct {
	LibraryPath string   `yaml:"libraryPath" validate:"required"`
	StagingPath string   `yaml:"stagingPath"`
	Logger      Logger   `yaml:"logger"`
	Server      Server   `yaml:"server"`
	Database    Database `yaml:"database"`
	Ingest      Ingest   `yaml:"ingest"`
	Telegram    Telegram `yaml:"telegram"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Database holds the configuration for the catalog database.
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Ingest holds the configuration for the library organizer.
type Ingest struct {
	// Workers bounds concurrent ingestions; correctness only requires at
	// most one in-flight ingestion per destination path.
	Workers int `yaml:"workers"`
	// StableSeconds is how long a staged file's size must stay unchanged
	// before it is considered fully written.
	StableSeconds int `yaml:"stable_seconds"`
	// DurationTolerance is the duplicate-detection duration window in
	// seconds.
	DurationTolerance int `yaml:"duration_tolerance"`
}

// Telegram holds configuration for the optional ingest notifier.
type Telegram struct {
	Enabled bool    `yaml:"enabled"`
	Token   string  `yaml:"token"`
	ChatIDs []int64 `yaml:"chat_ids"`
}

// EffectiveStagingPath returns the configured staging root, defaulting to
// the fixed sibling of the library root.
func (c *Config) EffectiveStagingPath() string {
	if c.StagingPath != "" {
		return c.StagingPath
	}
	return filepath.Join(filepath.Dir(c.LibraryPath), StagingFolderName)
}
