package ingesting

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sunclx/seiri/src/features/metrics"
	"github.com/sunclx/seiri/src/music"
)

// ReconcileStats summarizes one reconciliation pass.
type ReconcileStats struct {
	JournalRecovered int `json:"journalRecovered"`
	Orphaned         int `json:"orphaned"`
	Unorphaned       int `json:"unorphaned"`
	Quarantined      int `json:"quarantined"`
}

// Reconcile repairs the catalog/filesystem relationship after crashes or
// manual interference: pending journaled moves are rolled back, rows whose
// file is gone are flagged orphaned, and files under the library root with
// no catalog row are quarantined. After the pass, every file under the
// library root has exactly one catalog row.
func (s *Service) Reconcile(ctx context.Context) (ReconcileStats, error) {
	var stats ReconcileStats
	cfg := s.config.Get()

	// A pending journal entry means a crash happened between the physical
	// move and the catalog commit. The file, if it reached the library,
	// goes back to staging for a clean re-ingestion.
	pending, err := s.catalog.PendingMoves(ctx)
	if err != nil {
		return stats, err
	}
	for _, rec := range pending {
		if _, statErr := os.Stat(rec.DestPath); statErr == nil {
			if _, found, _ := s.trackExistsAtPath(ctx, rec.DestPath); !found {
				if _, mvErr := s.mover.Move(ctx, rec.DestPath, rec.SourcePath); mvErr != nil {
					slog.Error("Reconcile: failed to roll back journaled move", "dest", rec.DestPath, "error", mvErr)
					continue
				}
				stats.JournalRecovered++
			}
		}
		if err := s.catalog.ClearMove(ctx, rec.ID); err != nil {
			slog.Warn("Reconcile: failed to clear journal entry", "id", rec.ID, "error", err)
		}
	}

	// Flag rows whose file is gone; un-flag rows whose file came back.
	entries, err := s.catalog.ListPaths(ctx)
	if err != nil {
		return stats, err
	}
	cataloged := make(map[string]bool, len(entries))
	for _, entry := range entries {
		cataloged[entry.Path] = true
		_, statErr := os.Stat(entry.Path)
		missing := os.IsNotExist(statErr)
		switch {
		case missing && !entry.Orphaned:
			if err := s.catalog.MarkOrphaned(ctx, entry.ID, true); err != nil {
				slog.Error("Reconcile: failed to flag orphan", "id", entry.ID, "error", err)
				continue
			}
			metrics.TracksOrphaned.Inc()
			stats.Orphaned++
		case !missing && entry.Orphaned:
			if err := s.catalog.MarkOrphaned(ctx, entry.ID, false); err != nil {
				slog.Error("Reconcile: failed to clear orphan flag", "id", entry.ID, "error", err)
				continue
			}
			stats.Unorphaned++
		}
	}

	// Quarantine audio files under the library root that no row claims;
	// dropping them back into staging re-ingests them cleanly.
	walkErr := filepath.WalkDir(cfg.LibraryPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSupportedFile(path) || cataloged[path] {
			return nil
		}
		if _, qErr := s.mover.Quarantine(ctx, path); qErr != nil {
			slog.Error("Reconcile: failed to quarantine unknown file", "file", path, "error", qErr)
			return nil
		}
		slog.Warn("Reconcile: quarantined file with no catalog row", "file", path)
		stats.Quarantined++
		return nil
	})
	if walkErr != nil {
		return stats, walkErr
	}

	if count, err := s.catalog.TrackCount(ctx); err == nil {
		metrics.LibraryTracks.Set(float64(count))
	}
	slog.Info("Reconciliation finished",
		"journal_recovered", stats.JournalRecovered,
		"orphaned", stats.Orphaned,
		"unorphaned", stats.Unorphaned,
		"quarantined", stats.Quarantined)
	return stats, nil
}

func (s *Service) trackExistsAtPath(ctx context.Context, path string) (int64, bool, error) {
	track, err := s.catalog.FindTrackByPath(ctx, path)
	if err != nil {
		if errors.Is(err, music.ErrTrackNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return track.ID, true, nil
}
