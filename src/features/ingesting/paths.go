package ingesting

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/unidecode"
	"github.com/sunclx/seiri/src/music"
)

// invalidPathChar reports characters that cannot appear in a library path
// component on any supported filesystem.
func invalidPathChar(c rune) bool {
	switch c {
	case '"', '<', '>', '|', 0, ':', '*', '?', '\\', '/':
		return true
	}
	return false
}

// SanitizePathComponent folds a tag value into a safe path component:
// ASCII-folded, with forbidden characters replaced by underscores.
func SanitizePathComponent(s string) string {
	s = unidecode.Unidecode(s)
	return strings.Map(func(c rune) rune {
		if invalidPathChar(c) {
			return '_'
		}
		return c
	}, s)
}

// CanonicalFilename is the track's file name (without extension) at its
// canonical location: "<disc>-<track 02d> <title>".
func CanonicalFilename(t *music.Track) string {
	return SanitizePathComponent(fmt.Sprintf("%d-%02d %s", t.DiscNumber, t.TrackNumber, t.Title))
}

// CanonicalPath computes the track's required on-disk location. It is a
// pure function of the track's tags and the library root:
// <root>/<album artist (or track artist)>/<album>/<filename><ext>.
func CanonicalPath(libraryRoot string, t *music.Track, ext string) string {
	return filepath.Join(
		libraryRoot,
		SanitizePathComponent(t.ArtistFolder()),
		SanitizePathComponent(t.Album),
		CanonicalFilename(t)+ext,
	)
}

// SourceTag derives the source-folder tag from the first path component of
// the file under the staging root. Empty when the file sits directly in the
// staging root or outside it.
func SourceTag(filePath, stagingRoot string) string {
	rel, err := filepath.Rel(stagingRoot, filepath.Dir(filePath))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	first := strings.Split(filepath.ToSlash(rel), "/")[0]
	first = SanitizePathComponent(first)
	// Everything after an underscore is folder bookkeeping, not source.
	if i := strings.Index(first, "_"); i >= 0 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}

// InHiddenPath reports whether the file sits under a dot-prefixed staging
// subfolder; those are skipped entirely (the quarantine folder lives
// there).
func InHiddenPath(filePath, stagingRoot string) bool {
	rel, err := filepath.Rel(stagingRoot, filepath.Dir(filePath))
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// supportedExtensions are the containers the organizer will attempt to
// extract; everything else in staging is quarantined as a non-track.
var supportedExtensions = map[string]bool{
	".flac": true,
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".opus": true,
	".wv":   true,
}

// IsSupportedFile reports whether the path has a supported audio extension.
func IsSupportedFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}
