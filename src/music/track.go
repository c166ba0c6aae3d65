package music

import (
	"fmt"
	"strings"
	"time"
)

// Format identifies the audio container/encoding of a track. The set is
// closed: anything else is rejected at ingestion time.
type Format string

const (
	FormatFLAC16  Format = "flac16"
	FormatFLAC24  Format = "flac24"
	FormatMP3CBR  Format = "mp3-cbr"
	FormatMP3VBR  Format = "mp3-vbr"
	FormatALAC    Format = "alac"
	FormatAAC     Format = "aac"
	FormatVorbis  Format = "vorbis"
	FormatOpus    Format = "opus"
	FormatWavpack Format = "wavpack"
)

var allFormats = []Format{
	FormatFLAC16, FormatFLAC24,
	FormatMP3CBR, FormatMP3VBR,
	FormatALAC, FormatAAC,
	FormatVorbis, FormatOpus,
	FormatWavpack,
}

// ParseFormat returns the Format for a concrete enum value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allFormats {
		if f == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ExpandFormatAlias resolves a query-side format name to the concrete formats
// it covers. Bare "flac" covers both bit depths and bare "mp3" both bitrate
// modes; "cbr" and "vbr" name the mp3 modes directly.
func ExpandFormatAlias(alias string) ([]Format, bool) {
	switch strings.ToLower(strings.TrimSpace(alias)) {
	case "flac":
		return []Format{FormatFLAC16, FormatFLAC24}, true
	case "mp3":
		return []Format{FormatMP3CBR, FormatMP3VBR}, true
	case "cbr":
		return []Format{FormatMP3CBR}, true
	case "vbr":
		return []Format{FormatMP3VBR}, true
	}
	if f, err := ParseFormat(alias); err == nil {
		return []Format{f}, true
	}
	return nil, false
}

// Track represents a single cataloged audio file.
type Track struct {
	ID          int64
	Path        string
	Title       string
	Album       string
	Artist      string
	AlbumArtist string
	TrackNumber int
	DiscNumber  int
	Duration    int // seconds
	Format      Format
	Bitrate     int // kbps

	HasCover    bool
	CoverWidth  int
	CoverHeight int

	HasMusicBrainzID bool

	// Source is the top-level staging subfolder the track was ingested
	// from, or empty.
	Source string

	// Fingerprint is the normalized title/artist signature used for
	// duplicate detection; DuplicateOf points at the track this one was
	// flagged a duplicate of.
	Fingerprint string
	DuplicateOf *int64

	// Orphaned marks rows whose file was missing at the last
	// reconciliation pass.
	Orphaned bool

	AddedDate    time.Time
	ModifiedDate time.Time
}

// ArtistFolder returns the artist used for the track's canonical directory:
// the album artist when present, the track artist otherwise.
func (t *Track) ArtistFolder() string {
	if strings.TrimSpace(t.AlbumArtist) != "" {
		return t.AlbumArtist
	}
	return t.Artist
}

// Validate enforces the catalog invariants before a track may be inserted
// or updated.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.Path) == "" {
		return fmt.Errorf("track path cannot be empty")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("track title cannot be empty: path -> %s", t.Path)
	}
	if strings.TrimSpace(t.Artist) == "" {
		return fmt.Errorf("track artist cannot be empty: title -> %s", t.Title)
	}
	if strings.TrimSpace(t.Album) == "" {
		return fmt.Errorf("track album cannot be empty: title -> %s", t.Title)
	}
	if _, err := ParseFormat(string(t.Format)); err != nil {
		return fmt.Errorf("invalid track format: %w", err)
	}
	if t.Duration < 0 {
		return fmt.Errorf("duration cannot be negative, got %d", t.Duration)
	}
	if t.Bitrate < 0 {
		return fmt.Errorf("bitrate cannot be negative, got %d", t.Bitrate)
	}
	if t.TrackNumber < 0 {
		return fmt.Errorf("track number cannot be negative, got %d", t.TrackNumber)
	}
	if t.DiscNumber < 0 {
		return fmt.Errorf("disc number cannot be negative, got %d", t.DiscNumber)
	}
	if t.HasCover {
		if t.CoverWidth <= 0 || t.CoverHeight <= 0 {
			return fmt.Errorf("cover art present but dimensions missing: title -> %s", t.Title)
		}
	} else if t.CoverWidth != 0 || t.CoverHeight != 0 {
		return fmt.Errorf("cover dimensions set without cover art: title -> %s", t.Title)
	}
	return nil
}
