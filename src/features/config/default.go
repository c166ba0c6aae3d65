package config

// createDefaultConfig creates a new Config with sensible default values.
func createDefaultConfig() *Config {
	return &Config{
		LibraryPath: "./music",
		StagingPath: "", // sibling "Automatically Add to Library" of the library root
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Server: Server{
			PrintRoutes: false,
			Port:        9235,
		},
		Database: Database{
			Path: "./tracks.db",
		},
		Ingest: Ingest{
			Workers:           4,
			StableSeconds:     5,
			DurationTolerance: 3,
		},
		Telegram: Telegram{
			Enabled: false,
			Token:   "", // Can be obtained with https://t.me/BotFather
		},
	}
}
