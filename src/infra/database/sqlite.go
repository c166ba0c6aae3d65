package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sunclx/seiri/src/music"
)

// schemaVersion is bumped whenever migrate gains a new step.
const schemaVersion = 2

// The query compiler folds case with the casefold function, backed by Go's
// Unicode-aware strings.ToLower. SQLite's built-in lower() only folds ASCII,
// which would make compiled queries disagree with the in-memory expression
// interpreter on non-ASCII tags.
func init() {
	sql.Register("sqlite3_seiri", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", strings.ToLower, true)
		},
	})
}

// SqliteCatalog is a SQLite implementation of the Catalog interface.
type SqliteCatalog struct {
	db *sql.DB
}

// NewSqliteCatalog opens (creating if needed) the catalog database.
func NewSqliteCatalog(path string) (*SqliteCatalog, error) {
	db, err := sql.Open("sqlite3_seiri", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteCatalog{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			album TEXT NOT NULL,
			artist TEXT NOT NULL,
			album_artist TEXT,
			track_number INTEGER NOT NULL DEFAULT 0,
			disc_number INTEGER NOT NULL DEFAULT 0,
			duration INTEGER NOT NULL DEFAULT 0,
			format TEXT NOT NULL,
			bitrate INTEGER NOT NULL DEFAULT 0,
			has_cover BOOLEAN NOT NULL DEFAULT FALSE,
			cover_width INTEGER NOT NULL DEFAULT 0,
			cover_height INTEGER NOT NULL DEFAULT 0,
			has_musicbrainz_id BOOLEAN NOT NULL DEFAULT FALSE,
			source TEXT,
			fingerprint TEXT,
			duplicate_of INTEGER REFERENCES tracks(id) ON DELETE SET NULL,
			orphaned BOOLEAN NOT NULL DEFAULT FALSE,
			added_date TEXT,
			modified_date TEXT
		);

		CREATE TABLE IF NOT EXISTS move_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_path TEXT NOT NULL,
			dest_path TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_fingerprint ON tracks(fingerprint);
		CREATE INDEX IF NOT EXISTS idx_tracks_duplicate_of ON tracks(duplicate_of);
		CREATE INDEX IF NOT EXISTS idx_tracks_orphaned ON tracks(orphaned);
	`)
	if err != nil {
		return err
	}

	var version int
	err = db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("catalog schema version %d is newer than supported %d", version, schemaVersion)
	}

	// Migrations are additive only; each step brings version one forward.
	if version < 2 {
		if _, err := db.Exec(`ALTER TABLE tracks ADD COLUMN orphaned BOOLEAN NOT NULL DEFAULT FALSE`); err != nil {
			return err
		}
	}
	if version < schemaVersion {
		if _, err := db.Exec(`UPDATE schema_version SET version = ?`, schemaVersion); err != nil {
			return err
		}
		slog.Info("Catalog schema migrated", "from", version, "to", schemaVersion)
	}
	return nil
}

const trackColumns = `id, path, title, album, artist, album_artist, track_number, disc_number,
	duration, format, bitrate, has_cover, cover_width, cover_height, has_musicbrainz_id,
	source, fingerprint, duplicate_of, orphaned, added_date, modified_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*music.Track, error) {
	var t music.Track
	var format string
	var duplicateOf sql.NullInt64
	var albumArtist, source, fingerprint, added, modified sql.NullString
	err := row.Scan(&t.ID, &t.Path, &t.Title, &t.Album, &t.Artist, &albumArtist,
		&t.TrackNumber, &t.DiscNumber, &t.Duration, &format, &t.Bitrate,
		&t.HasCover, &t.CoverWidth, &t.CoverHeight, &t.HasMusicBrainzID,
		&source, &fingerprint, &duplicateOf, &t.Orphaned, &added, &modified)
	if err != nil {
		return nil, err
	}
	t.Format = music.Format(format)
	t.AlbumArtist = albumArtist.String
	t.Source = source.String
	t.Fingerprint = fingerprint.String
	if duplicateOf.Valid {
		id := duplicateOf.Int64
		t.DuplicateOf = &id
	}
	if added.Valid {
		t.AddedDate, _ = time.Parse(time.RFC3339, added.String)
	}
	if modified.Valid {
		t.ModifiedDate, _ = time.Parse(time.RFC3339, modified.String)
	}
	return &t, nil
}

func trackArgs(t *music.Track) []any {
	var duplicateOf any
	if t.DuplicateOf != nil {
		duplicateOf = *t.DuplicateOf
	}
	return []any{
		t.Path, t.Title, t.Album, t.Artist, t.AlbumArtist, t.TrackNumber, t.DiscNumber,
		t.Duration, string(t.Format), t.Bitrate, t.HasCover, t.CoverWidth, t.CoverHeight,
		t.HasMusicBrainzID, t.Source, t.Fingerprint, duplicateOf, t.Orphaned,
		t.AddedDate.Format(time.RFC3339), t.ModifiedDate.Format(time.RFC3339),
	}
}

const insertTrackSQL = `
	INSERT INTO tracks (path, title, album, artist, album_artist, track_number, disc_number,
		duration, format, bitrate, has_cover, cover_width, cover_height, has_musicbrainz_id,
		source, fingerprint, duplicate_of, orphaned, added_date, modified_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updateTrackSQL = `
	UPDATE tracks
	SET path = ?, title = ?, album = ?, artist = ?, album_artist = ?, track_number = ?,
		disc_number = ?, duration = ?, format = ?, bitrate = ?, has_cover = ?,
		cover_width = ?, cover_height = ?, has_musicbrainz_id = ?, source = ?,
		fingerprint = ?, duplicate_of = ?, orphaned = ?, added_date = ?, modified_date = ?
	WHERE id = ?`

// AddTrack inserts a track and sets its ID.
func (d *SqliteCatalog) AddTrack(ctx context.Context, track *music.Track) error {
	if err := track.Validate(); err != nil {
		slog.Error("AddTrack: validation failed", "error", err, "path", track.Path)
		return err
	}
	res, err := d.db.ExecContext(ctx, insertTrackSQL, trackArgs(track)...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	track.ID = id
	return nil
}

// UpdateTrack rewrites an existing track row.
func (d *SqliteCatalog) UpdateTrack(ctx context.Context, track *music.Track) error {
	if err := track.Validate(); err != nil {
		slog.Error("UpdateTrack: validation failed", "error", err, "trackID", track.ID)
		return err
	}
	args := append(trackArgs(track), track.ID)
	res, err := d.db.ExecContext(ctx, updateTrackSQL, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return music.ErrTrackNotFound
	}
	return nil
}

// GetTrack retrieves a track by ID.
func (d *SqliteCatalog) GetTrack(ctx context.Context, id int64) (*music.Track, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, music.ErrTrackNotFound
	}
	return track, err
}

// FindTrackByPath retrieves the track cataloged at the given path.
func (d *SqliteCatalog) FindTrackByPath(ctx context.Context, path string) (*music.Track, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE path = ?`, path)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, music.ErrTrackNotFound
	}
	return track, err
}

// SelectTracks executes a compiled selection over the tracks table.
func (d *SqliteCatalog) SelectTracks(ctx context.Context, sel music.Selection) ([]*music.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks`
	var args []any
	if sel.Where != "" {
		query += ` WHERE ` + sel.Where
		args = append(args, sel.Args...)
	}
	if sel.OrderBy != "" {
		query += ` ORDER BY ` + sel.OrderBy
		args = append(args, sel.OrderArgs...)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []*music.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// FindDuplicateCandidate returns the oldest non-orphaned track sharing the
// fingerprint within the duration tolerance, or ErrTrackNotFound.
func (d *SqliteCatalog) FindDuplicateCandidate(ctx context.Context, fingerprint string, duration, tolerance int, excludeID int64) (*music.Track, error) {
	if fingerprint == "" {
		return nil, music.ErrTrackNotFound
	}
	row := d.db.QueryRowContext(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE fingerprint = ? AND ABS(duration - ?) <= ? AND id != ? AND NOT orphaned
		ORDER BY id LIMIT 1`,
		fingerprint, duration, tolerance, excludeID)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, music.ErrTrackNotFound
	}
	return track, err
}

// MarkOrphaned flags or unflags a row whose file went missing.
func (d *SqliteCatalog) MarkOrphaned(ctx context.Context, id int64, orphaned bool) error {
	res, err := d.db.ExecContext(ctx, `UPDATE tracks SET orphaned = ? WHERE id = ?`, orphaned, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return music.ErrTrackNotFound
	}
	return nil
}

// ListPaths returns every cataloged path with its orphan flag.
func (d *SqliteCatalog) ListPaths(ctx context.Context) ([]music.PathEntry, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, path, orphaned FROM tracks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []music.PathEntry
	for rows.Next() {
		var e music.PathEntry
		if err := rows.Scan(&e.ID, &e.Path, &e.Orphaned); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TrackCount returns the number of cataloged tracks.
func (d *SqliteCatalog) TrackCount(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&count)
	return count, err
}

// Stats returns a point-in-time summary of the catalog.
func (d *SqliteCatalog) Stats(ctx context.Context) (music.LibraryStats, error) {
	var stats music.LibraryStats
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(duplicate_of),
			COALESCE(SUM(orphaned), 0),
			COUNT(DISTINCT artist),
			COUNT(DISTINCT album)
		FROM tracks`).Scan(&stats.Tracks, &stats.Duplicates, &stats.Orphaned, &stats.Artists, &stats.Albums)
	return stats, err
}

// JournalMove records an intended physical move before it happens.
func (d *SqliteCatalog) JournalMove(ctx context.Context, sourcePath, destPath string) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO move_journal (source_path, dest_path, created_at)
		VALUES (?, ?, ?)`,
		sourcePath, destPath, time.Now().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ClearMove removes a journal entry without touching the tracks table.
func (d *SqliteCatalog) ClearMove(ctx context.Context, journalID int64) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM move_journal WHERE id = ?`, journalID)
	return err
}

// PendingMoves lists journal entries left behind by a crash.
func (d *SqliteCatalog) PendingMoves(ctx context.Context) ([]music.MoveRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, source_path, dest_path, created_at FROM move_journal ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []music.MoveRecord
	for rows.Next() {
		var rec music.MoveRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.SourcePath, &rec.DestPath, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, created)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CommitTrack writes the track row and clears its journal entry in one
// transaction. A track with ID 0 is inserted, otherwise its row is updated.
func (d *SqliteCatalog) CommitTrack(ctx context.Context, track *music.Track, journalID int64) error {
	if err := track.Validate(); err != nil {
		slog.Error("CommitTrack: validation failed", "error", err, "path", track.Path)
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if track.ID == 0 {
		res, err := tx.ExecContext(ctx, insertTrackSQL, trackArgs(track)...)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		track.ID = id
	} else {
		args := append(trackArgs(track), track.ID)
		res, err := tx.ExecContext(ctx, updateTrackSQL, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return music.ErrTrackNotFound
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM move_journal WHERE id = ?`, journalID); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (d *SqliteCatalog) Close() error {
	return d.db.Close()
}
