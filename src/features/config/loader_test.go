package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
libraryPath: `+filepath.Join(dir, "music")+`
database:
  path: `+filepath.Join(dir, "tracks.db")+`
`)

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := manager.Get()

	if cfg.Ingest.Workers != 4 {
		t.Errorf("workers = %d, want default 4", cfg.Ingest.Workers)
	}
	if cfg.Ingest.StableSeconds != 5 {
		t.Errorf("stable seconds = %d, want default 5", cfg.Ingest.StableSeconds)
	}
	if cfg.Ingest.DurationTolerance != 3 {
		t.Errorf("duration tolerance = %d, want default 3", cfg.Ingest.DurationTolerance)
	}
	if cfg.Server.Port != 9235 {
		t.Errorf("port = %d, want default 9235", cfg.Server.Port)
	}
}

func TestLoadRejectsMissingLibraryPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
database:
  path: `+filepath.Join(dir, "tracks.db")+`
`)

	if _, err := Load(path); err == nil {
		t.Fatal("config without a library path should fail validation")
	}
}

func TestEffectiveStagingPathDefaultsToSibling(t *testing.T) {
	cfg := &Config{LibraryPath: "/music/Library"}
	want := filepath.Join("/music", StagingFolderName)
	if got := cfg.EffectiveStagingPath(); got != want {
		t.Errorf("EffectiveStagingPath = %q, want %q", got, want)
	}

	cfg.StagingPath = "/elsewhere/incoming"
	if got := cfg.EffectiveStagingPath(); got != "/elsewhere/incoming" {
		t.Errorf("explicit staging path should win, got %q", got)
	}
}

func TestLoadTelegramTokenFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
libraryPath: `+filepath.Join(dir, "music")+`
database:
  path: `+filepath.Join(dir, "tracks.db")+`
telegram:
  enabled: true
  token: from-file
`)

	t.Setenv("TELEGRAM_TOKEN", "from-env")
	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := manager.Get().Telegram.Token; got != "from-env" {
		t.Errorf("token = %q, want the environment override", got)
	}
}

func TestLoadCreatesDefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	path := filepath.Join(dir, "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("missing config should be written with defaults")
	}
	if manager.Get().LibraryPath == "" {
		t.Error("default config should carry a library path")
	}
}
