package ingesting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sunclx/seiri/src/features/config"
	"github.com/sunclx/seiri/src/features/dedup"
	"github.com/sunclx/seiri/src/features/metrics"
	"github.com/sunclx/seiri/src/music"
)

// Service is the library organizer: it drives every discovered staging file
// through the ingestion state machine and keeps the catalog and the
// filesystem consistent with each other.
type Service struct {
	catalog  music.Catalog
	tags     TagReader
	detector *dedup.Detector
	mover    FileMover
	config   *config.Manager
	notifier Notifier
	locks    *pathLocks
}

// NewService creates a new organizing service. notifier may be nil.
func NewService(catalog music.Catalog, tags TagReader, detector *dedup.Detector, mover FileMover, cfg *config.Manager, notifier Notifier) *Service {
	return &Service{
		catalog:  catalog,
		tags:     tags,
		detector: detector,
		mover:    mover,
		config:   cfg,
		notifier: notifier,
		locks:    newPathLocks(),
	}
}

// IngestFile runs one staging file through the state machine:
// Discovered → Extracted → Validated → Fingerprinted → Canonicalized →
// Moved → Committed, with Rejected(reason) as the terminal failure state.
// Ingestion of a given file is attempted once per discovery event.
func (s *Service) IngestFile(ctx context.Context, path string) (*music.Track, error) {
	cfg := s.config.Get()
	staging := cfg.EffectiveStagingPath()
	logger := slog.With("attempt", uuid.NewString()[:8], "file", path)

	if InHiddenPath(path, staging) {
		logger.Debug("Skipping file in hidden staging folder")
		return nil, nil
	}
	logger.Debug("Ingestion started", "state", StateDiscovered)

	track, err := s.extract(ctx, path, logger)
	if err != nil {
		return nil, s.reject(ctx, path, err, logger)
	}
	logger.Debug("Tags extracted", "state", StateExtracted, "title", track.Title)

	if err := CheckTrackRules(track, path); err != nil {
		return nil, s.reject(ctx, path, err, logger)
	}
	logger.Debug("Rules passed", "state", StateValidated)

	s.fingerprint(ctx, track, 0, logger)
	logger.Debug("Fingerprinted", "state", StateFingerprinted, "duplicate", track.DuplicateOf != nil)

	track.Source = SourceTag(path, staging)
	dest := CanonicalPath(cfg.LibraryPath, track, filepath.Ext(path))
	logger.Debug("Destination computed", "state", StateCanonicalized, "dest", dest)

	s.locks.lock(dest)
	defer s.locks.unlock(dest)

	committed, err := s.moveAndCommit(ctx, track, path, dest, logger)
	if err != nil {
		return nil, s.reject(ctx, path, err, logger)
	}

	metrics.TracksIngested.Inc()
	if committed.DuplicateOf != nil {
		metrics.DuplicatesFlagged.Inc()
	}
	if count, err := s.catalog.TrackCount(ctx); err == nil {
		metrics.LibraryTracks.Set(float64(count))
	}
	if s.notifier != nil {
		s.notifier.TrackIngested(fmt.Sprintf("%s - %s", committed.Artist, committed.Title), committed.DuplicateOf != nil)
	}
	logger.Info("Track added to catalog", "state", StateCommitted, "id", committed.ID, "path", committed.Path)
	return committed, nil
}

// extract invokes the tag-extraction capability; wav files are refused
// before extraction so they surface as a rule violation, not a read error.
func (s *Service) extract(ctx context.Context, path string, logger *slog.Logger) (*music.Track, error) {
	if err := CheckFileAllowed(path); err != nil {
		return nil, err
	}
	track, err := s.tags.ReadFileTags(ctx, path)
	if err != nil {
		logger.Warn("Tag extraction failed", "error", err)
		return nil, &Rejection{Reason: ReasonUnreadable, Detail: err.Error()}
	}
	return track, nil
}

// fingerprint computes the duplicate signature and annotates the pending
// track with a duplicate reference when the catalog holds a near match.
// Duplicates are cataloged and flagged, never dropped, so failures here
// only log.
func (s *Service) fingerprint(ctx context.Context, track *music.Track, excludeID int64, logger *slog.Logger) {
	sig := dedup.Fingerprint(track.Title, track.Artist, track.Duration)
	track.Fingerprint = sig.Key
	track.DuplicateOf = nil

	candidate, err := s.catalog.FindDuplicateCandidate(ctx, sig.Key, track.Duration, s.detector.DurationTolerance, excludeID)
	if err != nil {
		if !errors.Is(err, music.ErrTrackNotFound) {
			logger.Warn("Duplicate lookup failed", "error", err)
		}
		return
	}
	other := dedup.Fingerprint(candidate.Title, candidate.Artist, candidate.Duration)
	if s.detector.IsDuplicate(sig, other) {
		track.DuplicateOf = &candidate.ID
		logger.Info("Probable duplicate detected", "of", candidate.ID, "of_path", candidate.Path)
	}
}

// moveAndCommit performs the journaled two-phase move and the catalog
// commit. If the commit fails after the file has physically moved, the file
// is rolled back to staging (or quarantined) so no uncataloged file is left
// under the library root.
func (s *Service) moveAndCommit(ctx context.Context, track *music.Track, src, dest string, logger *slog.Logger) (*music.Track, error) {
	journalID, err := s.catalog.JournalMove(ctx, src, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to journal move: %w", err)
	}

	finalPath, err := s.mover.Move(ctx, src, dest)
	if err != nil {
		if clearErr := s.catalog.ClearMove(ctx, journalID); clearErr != nil {
			logger.Warn("Failed to clear journal after failed move", "error", clearErr)
		}
		return nil, err
	}
	logger.Debug("File moved", "state", StateMoved, "final", finalPath)

	now := time.Now()
	track.Path = finalPath
	if track.ID == 0 {
		track.AddedDate = now
	}
	track.ModifiedDate = now

	commitErr := track.Validate()
	if commitErr == nil {
		commitErr = s.catalog.CommitTrack(ctx, track, journalID)
	}
	if commitErr == nil {
		s.mover.CleanupDirs(src, s.config.Get().EffectiveStagingPath())
		return track, nil
	}

	// The file is inside the library root without a catalog row. Roll it
	// back to staging; quarantine if even that fails.
	logger.Error("Catalog commit failed after move, rolling file back", "error", commitErr)
	if _, rbErr := s.mover.Move(ctx, finalPath, src); rbErr != nil {
		logger.Error("Rollback to staging failed, quarantining", "error", rbErr)
		if _, qErr := s.mover.Quarantine(ctx, finalPath); qErr != nil {
			// The journal row stays; reconciliation will find the file.
			return nil, &ConsistencyError{Path: finalPath, Detail: "file moved but commit and rollback failed", Err: commitErr}
		}
	}
	if clearErr := s.catalog.ClearMove(ctx, journalID); clearErr != nil {
		logger.Warn("Failed to clear journal after rollback", "error", clearErr)
	}
	return nil, fmt.Errorf("catalog commit failed: %w", commitErr)
}

// reject finalizes a failed ingestion. Unreadable files are quarantined so
// they stop re-triggering the watcher; rule violations stay in staging for
// the operator to fix.
func (s *Service) reject(ctx context.Context, path string, err error, logger *slog.Logger) error {
	var rej *Rejection
	if errors.As(err, &rej) {
		metrics.IngestRejections.WithLabelValues(string(rej.Reason)).Inc()
		if s.notifier != nil {
			s.notifier.TrackRejected(path, string(rej.Reason))
		}
		if rej.Reason == ReasonUnreadable {
			if quarantined, qErr := s.mover.Quarantine(ctx, path); qErr == nil {
				logger.Info("Unreadable file quarantined", "state", StateRejected, "to", quarantined)
			} else {
				logger.Warn("Failed to quarantine unreadable file", "error", qErr)
			}
		} else {
			logger.Info("File rejected, left in staging", "state", StateRejected, "reason", rej.Reason, "detail", rej.Detail)
		}
		return err
	}
	logger.Error("Ingestion failed", "state", StateRejected, "error", err)
	return err
}
