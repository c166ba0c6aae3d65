// Package dedup flags probable duplicate tracks from normalized metadata,
// without touching audio content.
package dedup

import (
	"regexp"
	"strings"
)

var (
	// editionMarkerRe strips common reissue/edition suffixes so that
	// "Song (Remastered 2011)" and "Song" fingerprint identically.
	editionMarkerRe = regexp.MustCompile(`(?i)\s*[(\[](re-?master(ed)?|remaster(ed)?\s+\d{4}|\d{4}\s+remaster(ed)?|deluxe( edition)?|anniversary edition|bonus track( version)?|mono|stereo|live|single version|album version|radio edit)[)\]]\s*`)
	punctuationRe   = regexp.MustCompile(`[^\pL\pN\s]`)
	multipleSpaceRe = regexp.MustCompile(`\s+`)
)

// Signature is a content fingerprint of a track's metadata: a normalized
// title/artist key plus the track duration in seconds.
type Signature struct {
	Key      string
	Duration int
}

// Normalize folds a metadata string for comparison: lowercase, edition
// markers removed, punctuation replaced by spaces, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = editionMarkerRe.ReplaceAllString(s, " ")
	s = punctuationRe.ReplaceAllString(s, " ")
	s = multipleSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint computes the duplicate-detection signature for a track's
// title, artist and duration.
func Fingerprint(title, artist string, duration int) Signature {
	return Signature{
		Key:      Normalize(title) + "|" + Normalize(artist),
		Duration: duration,
	}
}

// Detector compares signatures under a duration tolerance window. The
// tolerance is a configured constant, not a guarantee of transitivity:
// A≈B and B≈C does not imply A≈C is reported.
type Detector struct {
	// DurationTolerance is the maximum allowed difference in seconds.
	DurationTolerance int
}

// NewDetector creates a Detector with the given duration tolerance in
// seconds.
func NewDetector(toleranceSeconds int) *Detector {
	return &Detector{DurationTolerance: toleranceSeconds}
}

// IsDuplicate reports whether two signatures identify probable duplicates:
// same normalized title/artist key and duration within tolerance,
// independent of format or bitrate. The comparison is symmetric.
func (d *Detector) IsDuplicate(a, b Signature) bool {
	if a.Key == "" || a.Key != b.Key {
		return false
	}
	diff := a.Duration - b.Duration
	if diff < 0 {
		diff = -diff
	}
	return diff <= d.DurationTolerance
}
