package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sunclx/seiri/src/features/config"
	"github.com/sunclx/seiri/src/features/ingesting"
)

// quarantineFolder is the hidden staging subfolder rejected files land in,
// grouped by day.
const quarantineFolder = ".notadded"

// maxCollisionSuffix bounds the " (n)" probe before a move gives up.
const maxCollisionSuffix = 64

// FileOrganizer is the filesystem implementation of the FileMover interface.
type FileOrganizer struct {
	config *config.Manager
}

// NewFileOrganizer creates a new file organizer implementation.
func NewFileOrganizer(cfg *config.Manager) *FileOrganizer {
	return &FileOrganizer{config: cfg}
}

// Move moves src to dest, creating parent directories and suffixing the
// file name with " (n)" when dest is already occupied by a different file.
// It returns the path the file actually landed on.
func (o *FileOrganizer) Move(ctx context.Context, src, dest string) (string, error) {
	final, err := resolveCollision(src, dest)
	if err != nil {
		return "", err
	}
	if final == src {
		return src, nil
	}
	if err := os.MkdirAll(filepath.Dir(final), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := moveFile(src, final); err != nil {
		return "", err
	}
	return final, nil
}

// Quarantine moves a file into the dated quarantine folder under staging.
func (o *FileOrganizer) Quarantine(ctx context.Context, src string) (string, error) {
	staging := o.config.Get().EffectiveStagingPath()
	dest := filepath.Join(staging, quarantineFolder, time.Now().Format("2006-01-02"), filepath.Base(src))
	return o.Move(ctx, src, dest)
}

// CleanupDirs removes empty directories from path's parent up to (but never
// including) root. Best effort; a shared album folder simply stops the walk.
func (o *FileOrganizer) CleanupDirs(path, root string) {
	root = filepath.Clean(root)
	dir := filepath.Dir(filepath.Clean(path))
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			slog.Debug("Failed to remove empty directory", "dir", dir, "error", err)
			return
		}
		dir = filepath.Dir(dir)
	}
}

// resolveCollision finds the first free " (n)" variant of dest. Probing is
// bounded; a directory that full means something else is wrong.
func resolveCollision(src, dest string) (string, error) {
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)

	candidate := dest
	for i := 0; i <= maxCollisionSuffix; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		if candidate == src {
			return candidate, nil
		}
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", &ingesting.Rejection{
		Reason: ingesting.ReasonCollision,
		Detail: fmt.Sprintf("no free name for %s after %d attempts", dest, maxCollisionSuffix),
	}
}

// moveFile renames, falling back to copy-verify-delete across filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	} else if !isCrossDeviceError(err) {
		return fmt.Errorf("failed to move file: %w", err)
	}

	if err := copyFile(src, dest); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to copy file across filesystems: %w", err)
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	destInfo, err := os.Stat(dest)
	if err != nil {
		return err
	}
	if srcInfo.Size() != destInfo.Size() {
		os.Remove(dest)
		return fmt.Errorf("size mismatch after copy: %d != %d", srcInfo.Size(), destInfo.Size())
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove original file after copy: %w", err)
	}
	return nil
}

// isCrossDeviceError checks if an error is due to cross-device link (moving across filesystems)
func isCrossDeviceError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "cross-device link")
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
