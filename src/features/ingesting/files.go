package ingesting

import "context"

// FileMover performs the physical file operations of the organizer. Moves
// must be two-phase safe across filesystem boundaries (copy, verify, delete
// source) and must never overwrite an existing file: on collision the
// destination is disambiguated deterministically.
type FileMover interface {
	// Move places src at dst (or a deterministically disambiguated
	// sibling) and returns the final destination path.
	Move(ctx context.Context, src, dst string) (string, error)
	// Quarantine moves a file that cannot be ingested out of the way and
	// returns its new location.
	Quarantine(ctx context.Context, src string) (string, error)
	// CleanupDirs removes now-empty directories above path, stopping at
	// root.
	CleanupDirs(path, root string)
}
