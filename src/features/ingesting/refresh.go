package ingesting

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sunclx/seiri/src/features/metrics"
	"github.com/sunclx/seiri/src/music"
)

// Refresh re-runs extraction through commit for an already-cataloged track
// whose tags changed externally, re-moving the file when the canonical path
// changed. Refreshing a track whose tags did not change is a no-op.
func (s *Service) Refresh(ctx context.Context, id int64) (*music.Track, error) {
	existing, err := s.catalog.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := slog.With("refresh", id, "file", existing.Path)

	if _, err := os.Stat(existing.Path); os.IsNotExist(err) {
		if markErr := s.catalog.MarkOrphaned(ctx, id, true); markErr != nil {
			return nil, markErr
		}
		metrics.TracksOrphaned.Inc()
		logger.Warn("Refresh found file missing, row flagged orphaned")
		return nil, &ConsistencyError{Path: existing.Path, Detail: "file missing at refresh", Err: os.ErrNotExist}
	}

	fresh, err := s.tags.ReadFileTags(ctx, existing.Path)
	if err != nil {
		return nil, &Rejection{Reason: ReasonUnreadable, Detail: err.Error()}
	}
	if err := CheckTrackRules(fresh, existing.Path); err != nil {
		return nil, err
	}

	// Identity and ingestion provenance survive a refresh.
	fresh.ID = existing.ID
	fresh.Path = existing.Path
	fresh.Source = existing.Source
	fresh.AddedDate = existing.AddedDate

	s.fingerprint(ctx, fresh, existing.ID, logger)

	dest := CanonicalPath(s.config.Get().LibraryPath, fresh, filepath.Ext(existing.Path))
	if dest == existing.Path && tagsEqual(existing, fresh) {
		logger.Debug("Refresh found no changes")
		return existing, nil
	}

	s.locks.lock(dest)
	defer s.locks.unlock(dest)

	if dest == existing.Path {
		fresh.ModifiedDate = existing.ModifiedDate
		if err := fresh.Validate(); err != nil {
			return nil, err
		}
		if err := s.catalog.UpdateTrack(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to update refreshed track: %w", err)
		}
		logger.Info("Track refreshed in place")
		return fresh, nil
	}

	oldPath := existing.Path
	committed, err := s.moveAndCommit(ctx, fresh, oldPath, dest, logger)
	if err != nil {
		return nil, err
	}
	s.mover.CleanupDirs(oldPath, s.config.Get().LibraryPath)
	logger.Info("Track refreshed and re-filed", "path", committed.Path)
	return committed, nil
}

// tagsEqual reports whether a refresh changed anything the catalog stores.
func tagsEqual(a, b *music.Track) bool {
	return a.Title == b.Title &&
		a.Album == b.Album &&
		a.Artist == b.Artist &&
		a.AlbumArtist == b.AlbumArtist &&
		a.TrackNumber == b.TrackNumber &&
		a.DiscNumber == b.DiscNumber &&
		a.Duration == b.Duration &&
		a.Format == b.Format &&
		a.Bitrate == b.Bitrate &&
		a.HasCover == b.HasCover &&
		a.CoverWidth == b.CoverWidth &&
		a.CoverHeight == b.CoverHeight &&
		a.HasMusicBrainzID == b.HasMusicBrainzID &&
		a.Fingerprint == b.Fingerprint
}
