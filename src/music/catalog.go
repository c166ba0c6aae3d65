package music

import (
	"context"
	"errors"
	"time"
)

// ErrTrackNotFound is returned by lookups that match no row.
var ErrTrackNotFound = errors.New("track not found")

// Selection is a parameterized query fragment produced by the query
// compiler. Where and OrderBy are SQL fragments over the tracks table with
// `?` placeholders only; values travel in Args/OrderArgs.
type Selection struct {
	Where     string
	Args      []any
	OrderBy   string
	OrderArgs []any
}

// MoveRecord is a journal entry for a physical file move that has been (or
// is about to be) performed but not yet committed to the catalog. Pending
// records after a crash drive the reconciliation pass.
type MoveRecord struct {
	ID         int64
	SourcePath string
	DestPath   string
	CreatedAt  time.Time
}

// PathEntry is the minimal per-row view used by reconciliation.
type PathEntry struct {
	ID       int64
	Path     string
	Orphaned bool
}

// LibraryStats is a point-in-time summary of the catalog.
type LibraryStats struct {
	Tracks     int `json:"tracks"`
	Duplicates int `json:"duplicates"`
	Orphaned   int `json:"orphaned"`
	Artists    int `json:"artists"`
	Albums     int `json:"albums"`
}

// Catalog is the durable store of Track records, the system's single source
// of truth.
type Catalog interface {
	// AddTrack inserts a track and sets its ID.
	AddTrack(ctx context.Context, track *Track) error
	// UpdateTrack rewrites an existing track row.
	UpdateTrack(ctx context.Context, track *Track) error
	GetTrack(ctx context.Context, id int64) (*Track, error)
	FindTrackByPath(ctx context.Context, path string) (*Track, error)

	// SelectTracks executes a compiled selection and returns the matching
	// tracks in the selection's order.
	SelectTracks(ctx context.Context, sel Selection) ([]*Track, error)

	// FindDuplicateCandidate returns a non-orphaned track with the same
	// fingerprint whose duration is within tolerance seconds, or
	// ErrTrackNotFound. excludeID skips a row (a track is never its own
	// duplicate during refresh); pass 0 to search everything.
	FindDuplicateCandidate(ctx context.Context, fingerprint string, duration, tolerance int, excludeID int64) (*Track, error)

	MarkOrphaned(ctx context.Context, id int64, orphaned bool) error
	ListPaths(ctx context.Context) ([]PathEntry, error)
	TrackCount(ctx context.Context) (int, error)
	Stats(ctx context.Context) (LibraryStats, error)

	// JournalMove records a physical move before it happens; CommitTrack
	// inserts (or updates, when the track already has an id) the track and
	// clears the journal entry in one transaction.
	JournalMove(ctx context.Context, sourcePath, destPath string) (int64, error)
	ClearMove(ctx context.Context, journalID int64) error
	PendingMoves(ctx context.Context) ([]MoveRecord, error)
	CommitTrack(ctx context.Context, track *Track, journalID int64) error

	Close() error
}
