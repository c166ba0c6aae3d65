package ingesting

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// ScanStats summarizes one staging sweep.
type ScanStats struct {
	Ingested int `json:"ingested"`
	Rejected int `json:"rejected"`
	Skipped  int `json:"skipped"`
}

// ScanStaging walks the staging folder and ingests every supported audio
// file found there. The watcher handles files as they arrive; this sweep
// covers files dropped while the process was down, and serves the manual
// rescan endpoint.
func (s *Service) ScanStaging(ctx context.Context) (ScanStats, error) {
	var stats ScanStats
	staging := s.config.Get().EffectiveStagingPath()
	slog.Info("Scanning staging folder", "path", staging)

	err := filepath.WalkDir(staging, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				slog.Warn("Skipping unreadable staging directory", "dir", path, "error", err)
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != staging && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !IsSupportedFile(path) {
			stats.Skipped++
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.IngestFile(ctx, path); err != nil {
			var rej *Rejection
			if errors.As(err, &rej) {
				stats.Rejected++
				return nil
			}
			slog.Error("Scan: ingestion failed", "file", path, "error", err)
			stats.Rejected++
			return nil
		}
		stats.Ingested++
		return nil
	})
	if err != nil {
		return stats, err
	}

	slog.Info("Staging scan finished",
		"ingested", stats.Ingested,
		"rejected", stats.Rejected,
		"skipped", stats.Skipped)
	return stats, nil
}
