package querying

import (
	"strings"

	"github.com/sunclx/seiri/src/music"
)

// Expr is a node of a parsed bang expression. Every node can evaluate
// itself directly against a track; the compiled SQL must agree with this
// interpretation.
type Expr interface {
	Matches(t *music.Track) bool
}

// LogicalOp combines two adjacent bang terms.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

// MatchAll matches every track; produced by empty input and the empty bang.
type MatchAll struct{}

func (MatchAll) Matches(*music.Track) bool { return true }

// Logical is a left-associative binary combinator.
type Logical struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (l *Logical) Matches(t *music.Track) bool {
	if l.Op == OpAnd {
		return l.Left.Matches(t) && l.Right.Matches(t)
	}
	return l.Left.Matches(t) || l.Right.Matches(t)
}

// Group is the `!!{…}` combinator: its payload is evaluated in isolation.
type Group struct {
	Inner Expr
}

func (g *Group) Matches(t *music.Track) bool { return g.Inner.Matches(t) }

// TitleContains is a bare operand with no bang prefix: a partial,
// case-insensitive title match.
type TitleContains struct {
	Text string
}

func (e *TitleContains) Matches(t *music.Track) bool {
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(e.Text))
}

// FullText searches title, album title and artist with OR semantics.
// Exact selects exact/case-sensitive matching instead of
// partial/case-insensitive.
type FullText struct {
	Text  string
	Exact bool
}

func (e *FullText) Matches(t *music.Track) bool {
	if e.Exact {
		return t.Title == e.Text || t.Album == e.Text || t.Artist == e.Text
	}
	needle := strings.ToLower(e.Text)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Album), needle) ||
		strings.Contains(strings.ToLower(t.Artist), needle)
}

// AlbumMatch matches the album title, partial or exact.
type AlbumMatch struct {
	Text  string
	Exact bool
}

func (e *AlbumMatch) Matches(t *music.Track) bool {
	if e.Exact {
		return t.Album == e.Text
	}
	return strings.Contains(strings.ToLower(t.Album), strings.ToLower(e.Text))
}

// AlbumArtistMatch matches the album artist, partial or exact.
type AlbumArtistMatch struct {
	Text  string
	Exact bool
}

func (e *AlbumArtistMatch) Matches(t *music.Track) bool {
	if e.Exact {
		return t.AlbumArtist == e.Text
	}
	return strings.Contains(strings.ToLower(t.AlbumArtist), strings.ToLower(e.Text))
}

// FormatIs matches the closed format enum, after alias expansion ("flac"
// covers both bit depths, "mp3" both bitrate modes).
type FormatIs struct {
	Formats []music.Format
}

func (e *FormatIs) Matches(t *music.Track) bool {
	for _, f := range e.Formats {
		if t.Format == f {
			return true
		}
	}
	return false
}

// BitrateCompare is a strict less-than / greater-than bitrate predicate.
type BitrateCompare struct {
	Less  bool
	Value int
}

func (e *BitrateCompare) Matches(t *music.Track) bool {
	if e.Less {
		return t.Bitrate < e.Value
	}
	return t.Bitrate > e.Value
}

// CoverDimCompare compares cover width or height strictly. Tracks without
// cover art never match.
type CoverDimCompare struct {
	Width bool
	Less  bool
	Value int
}

func (e *CoverDimCompare) Matches(t *music.Track) bool {
	if !t.HasCover {
		return false
	}
	dim := t.CoverHeight
	if e.Width {
		dim = t.CoverWidth
	}
	if e.Less {
		return dim < e.Value
	}
	return dim > e.Value
}

// BoolField names a boolean track property queryable by a bang.
type BoolField int

const (
	FieldHasCover BoolField = iota
	FieldHasMusicBrainzID
	FieldDuplicate
)

// BoolPred is a boolean predicate; a bare boolean bang with no payload is
// equivalent to Value=true.
type BoolPred struct {
	Field BoolField
	Value bool
}

func (e *BoolPred) Matches(t *music.Track) bool {
	var v bool
	switch e.Field {
	case FieldHasCover:
		v = t.HasCover
	case FieldHasMusicBrainzID:
		v = t.HasMusicBrainzID
	case FieldDuplicate:
		v = t.DuplicateOf != nil
	}
	return v == e.Value
}
