package querying

import (
	"errors"
	"testing"

	"github.com/sunclx/seiri/src/music"
)

func mustParse(t *testing.T, expr string) Expr {
	t.Helper()
	ast, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", expr, err)
	}
	return ast
}

func expectParseError(t *testing.T, expr string, kind ErrorKind, offset int) {
	t.Helper()
	_, err := Parse(expr)
	if err == nil {
		t.Fatalf("Parse(%q) should have failed", expr)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse(%q) returned %T, want *ParseError", expr, err)
	}
	if perr.Kind != kind {
		t.Errorf("Parse(%q) kind = %s, want %s", expr, perr.Kind, kind)
	}
	if perr.Offset != offset {
		t.Errorf("Parse(%q) offset = %d, want %d", expr, perr.Offset, offset)
	}
}

func TestParseEmptyMatchesAll(t *testing.T) {
	if _, ok := mustParse(t, "").(MatchAll); !ok {
		t.Error("empty input should parse to MatchAll")
	}
	if _, ok := mustParse(t, "!").(MatchAll); !ok {
		t.Error("bare empty bang should parse to MatchAll")
	}
}

func TestParseBareTextIsTitleSearch(t *testing.T) {
	ast := mustParse(t, "deep purple")
	title, ok := ast.(*TitleContains)
	if !ok {
		t.Fatalf("got %T, want *TitleContains", ast)
	}
	if title.Text != "deep purple" {
		t.Errorf("text = %q, want %q", title.Text, "deep purple")
	}
}

func TestParseTextBangCaseVariants(t *testing.T) {
	tests := []struct {
		expr  string
		exact bool
	}{
		{"!q{smoke}", false},
		{"!Q{Smoke}", true},
	}
	for _, tt := range tests {
		ast := mustParse(t, tt.expr)
		ft, ok := ast.(*FullText)
		if !ok {
			t.Fatalf("Parse(%q): got %T, want *FullText", tt.expr, ast)
		}
		if ft.Exact != tt.exact {
			t.Errorf("Parse(%q): exact = %v, want %v", tt.expr, ft.Exact, tt.exact)
		}
	}

	// Mixed-case spellings select the partial variant.
	if ast := mustParse(t, "!aL{machine head}"); ast.(*AlbumMatch).Exact {
		t.Error("!aL should be the partial album match")
	}
	if ast := mustParse(t, "!AL{Machine Head}"); !ast.(*AlbumMatch).Exact {
		t.Error("!AL should be the exact album match")
	}
	if ast := mustParse(t, "!ALA{Deep Purple}"); !ast.(*AlbumArtistMatch).Exact {
		t.Error("!ALA should be the exact album artist match")
	}
	if ast := mustParse(t, "!Ala{deep}"); ast.(*AlbumArtistMatch).Exact {
		t.Error("!Ala should be the partial album artist match")
	}
}

func TestParseFormatAliases(t *testing.T) {
	ast := mustParse(t, "!f{flac}")
	fi := ast.(*FormatIs)
	if len(fi.Formats) != 2 || fi.Formats[0] != music.FormatFLAC16 || fi.Formats[1] != music.FormatFLAC24 {
		t.Errorf("!f{flac} expanded to %v", fi.Formats)
	}

	ast = mustParse(t, "!f{cbr}")
	fi = ast.(*FormatIs)
	if len(fi.Formats) != 1 || fi.Formats[0] != music.FormatMP3CBR {
		t.Errorf("!f{cbr} expanded to %v", fi.Formats)
	}

	expectParseError(t, "!f{midi}", ErrInvalidOperand, 3)
	expectParseError(t, "!f", ErrInvalidOperand, 0)
}

func TestParseNumericBangs(t *testing.T) {
	ast := mustParse(t, "!brgt{320}")
	br := ast.(*BitrateCompare)
	if br.Less || br.Value != 320 {
		t.Errorf("!brgt{320} parsed as %+v", br)
	}

	ast = mustParse(t, "!cwlt{500}")
	cd := ast.(*CoverDimCompare)
	if !cd.Width || !cd.Less || cd.Value != 500 {
		t.Errorf("!cwlt{500} parsed as %+v", cd)
	}

	expectParseError(t, "!brlt{high}", ErrInvalidOperand, 6)
	expectParseError(t, "!chgt", ErrInvalidOperand, 0)
}

func TestParseBoolBangs(t *testing.T) {
	bare := mustParse(t, "!dup").(*BoolPred)
	explicit := mustParse(t, "!dup{true}").(*BoolPred)
	if *bare != *explicit {
		t.Error("!dup and !dup{true} should parse identically")
	}
	if bare.Field != FieldDuplicate || !bare.Value {
		t.Errorf("!dup parsed as %+v", bare)
	}

	neg := mustParse(t, "!c{false}").(*BoolPred)
	if neg.Field != FieldHasCover || neg.Value {
		t.Errorf("!c{false} parsed as %+v", neg)
	}

	expectParseError(t, "!mb{maybe}", ErrInvalidOperand, 4)
}

func TestParseLeftAssociativity(t *testing.T) {
	// a & b | c groups as (a & b) | c.
	ast := mustParse(t, "water & fire | smoke")
	or, ok := ast.(*Logical)
	if !ok || or.Op != OpOr {
		t.Fatalf("top node should be OR, got %T", ast)
	}
	and, ok := or.Left.(*Logical)
	if !ok || and.Op != OpAnd {
		t.Fatalf("left of OR should be AND, got %T", or.Left)
	}
	if or.Right.(*TitleContains).Text != "smoke" {
		t.Errorf("right of OR = %q", or.Right.(*TitleContains).Text)
	}
}

func TestParseGrouping(t *testing.T) {
	ast := mustParse(t, "!!{!f{flac16}|!f{flac24}}&!dup{false}")
	and, ok := ast.(*Logical)
	if !ok || and.Op != OpAnd {
		t.Fatalf("top node should be AND, got %T", ast)
	}
	group, ok := and.Left.(*Group)
	if !ok {
		t.Fatalf("left of AND should be a group, got %T", and.Left)
	}
	inner, ok := group.Inner.(*Logical)
	if !ok || inner.Op != OpOr {
		t.Fatalf("group body should be OR, got %T", group.Inner)
	}
}

func TestParseGroupPayloadLiteralBraces(t *testing.T) {
	// A literal `{` inside an inner payload must not count toward the
	// group's brace depth.
	ast := mustParse(t, "!!{!q{a{b}}")
	group, ok := ast.(*Group)
	if !ok {
		t.Fatalf("got %T, want *Group", ast)
	}
	ft, ok := group.Inner.(*FullText)
	if !ok {
		t.Fatalf("group body is %T, want *FullText", group.Inner)
	}
	if ft.Text != "a{b" {
		t.Errorf("text = %q, want %q", ft.Text, "a{b")
	}

	// Nested groups still nest.
	outer := mustParse(t, "!!{!!{smoke}}").(*Group)
	inner, ok := outer.Inner.(*Group)
	if !ok {
		t.Fatalf("nested group body is %T, want *Group", outer.Inner)
	}
	if inner.Inner.(*TitleContains).Text != "smoke" {
		t.Errorf("nested group text = %q", inner.Inner.(*TitleContains).Text)
	}
}

func TestParsePayloadEscapes(t *testing.T) {
	ast := mustParse(t, `!q{a\}b}`)
	if got := ast.(*FullText).Text; got != "a}b" {
		t.Errorf(`escaped brace: got %q, want "a}b"`, got)
	}

	ast = mustParse(t, `!q{a\\b}`)
	if got := ast.(*FullText).Text; got != `a\b` {
		t.Errorf(`escaped backslash: got %q, want "a\b"`, got)
	}

	// \n is not a recognized escape; the error points at the backslash.
	expectParseError(t, `!q{a\nb}`, ErrInvalidEscape, 4)
}

func TestParseErrorOffsets(t *testing.T) {
	expectParseError(t, "!al{Foo", ErrUnterminatedPayload, 7)
	expectParseError(t, "!xyz{1}", ErrUnknownBang, 0)
	expectParseError(t, "water &", ErrDanglingCombinator, 7)
	expectParseError(t, "& water", ErrDanglingCombinator, 0)
	expectParseError(t, "!q", ErrInvalidOperand, 0)
	expectParseError(t, "!!{!al{Foo}", ErrUnterminatedPayload, 11)
}

func TestParseErrorOffsetInsideGroup(t *testing.T) {
	// Errors inside a group payload report absolute offsets.
	expectParseError(t, "!c&!!{!xyz}", ErrUnknownBang, 6)
}

func TestMatchesAgreesWithPredicates(t *testing.T) {
	dupID := int64(7)
	track := &music.Track{
		Title:       "Smoke on the Water",
		Album:       "Machine Head",
		Artist:      "Deep Purple",
		AlbumArtist: "Deep Purple",
		Format:      music.FormatFLAC24,
		Bitrate:     1411,
		HasCover:    true,
		CoverWidth:  1200,
		CoverHeight: 1200,
		DuplicateOf: &dupID,
	}

	matching := []string{
		"smoke",
		"!q{machine}",
		"!Q{Machine Head}",
		"!al{machine}",
		"!ALA{Deep Purple}",
		"!f{flac}",
		"!brgt{900}",
		"!cwgt{1000}",
		"!c",
		"!dup",
		"!!{!f{flac}&!brgt{900}}",
		"!f{mp3}|!c",
	}
	for _, expr := range matching {
		if !mustParse(t, expr).Matches(track) {
			t.Errorf("%q should match the fixture track", expr)
		}
	}

	nonMatching := []string{
		"highway",
		"!Q{machine head}", // exact is case-sensitive
		"!f{mp3}",
		"!brlt{900}",
		"!chlt{1200}", // strict comparison
		"!dup{false}",
		"!mb",
	}
	for _, expr := range nonMatching {
		if mustParse(t, expr).Matches(track) {
			t.Errorf("%q should not match the fixture track", expr)
		}
	}
}
