package querying

import (
	"fmt"
	"strings"

	"github.com/sunclx/seiri/src/music"
)

// CompiledQuery is a bang expression lowered to parameterized SQL fragments
// over the tracks table. Operand values always travel as bound parameters,
// never interpolated text. Case-insensitive matches go through the casefold
// SQL function, which the catalog connection backs with strings.ToLower so
// that compiled and interpreted evaluation agree on non-ASCII text (SQLite's
// built-in lower() folds ASCII only).
type CompiledQuery struct {
	Where     string
	Args      []any
	OrderBy   string
	OrderArgs []any
}

// Selection adapts the compiled query to the catalog's execution contract.
func (q *CompiledQuery) Selection() music.Selection {
	return music.Selection{
		Where:     q.Where,
		Args:      q.Args,
		OrderBy:   q.OrderBy,
		OrderArgs: q.OrderArgs,
	}
}

// Compile parses a bang expression and lowers its AST bottom-up into a
// parameterized query.
func Compile(expr string) (*CompiledQuery, error) {
	ast, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return CompileExpr(ast), nil
}

// CompileExpr lowers an already-parsed expression.
func CompileExpr(ast Expr) *CompiledQuery {
	where, args := lower(ast)
	q := &CompiledQuery{Where: where, Args: args}
	if text, ok := relevanceText(ast); ok {
		// Partial title/full-text queries order by earliest match
		// position in the title, then by title.
		q.OrderBy = "CASE WHEN instr(casefold(title), casefold(?)) > 0 THEN instr(casefold(title), casefold(?)) ELSE 1000000 END, title COLLATE NOCASE"
		q.OrderArgs = []any{text, text}
	} else {
		q.OrderBy = "id"
	}
	return q
}

func lower(e Expr) (string, []any) {
	switch n := e.(type) {
	case MatchAll:
		return "1=1", nil
	case *Logical:
		lw, la := lower(n.Left)
		rw, ra := lower(n.Right)
		op := "AND"
		if n.Op == OpOr {
			op = "OR"
		}
		return fmt.Sprintf("(%s %s %s)", lw, op, rw), append(la, ra...)
	case *Group:
		w, a := lower(n.Inner)
		return "(" + w + ")", a
	case *TitleContains:
		return "instr(casefold(title), casefold(?)) > 0", []any{n.Text}
	case *FullText:
		if n.Exact {
			return "(title = ? OR album = ? OR artist = ?)", []any{n.Text, n.Text, n.Text}
		}
		return "(instr(casefold(title), casefold(?)) > 0 OR instr(casefold(album), casefold(?)) > 0 OR instr(casefold(artist), casefold(?)) > 0)",
			[]any{n.Text, n.Text, n.Text}
	case *AlbumMatch:
		if n.Exact {
			return "album = ?", []any{n.Text}
		}
		return "instr(casefold(album), casefold(?)) > 0", []any{n.Text}
	case *AlbumArtistMatch:
		if n.Exact {
			return "album_artist = ?", []any{n.Text}
		}
		return "instr(casefold(album_artist), casefold(?)) > 0", []any{n.Text}
	case *FormatIs:
		placeholders := make([]string, len(n.Formats))
		args := make([]any, len(n.Formats))
		for i, f := range n.Formats {
			placeholders[i] = "?"
			args[i] = string(f)
		}
		return "format IN (" + strings.Join(placeholders, ", ") + ")", args
	case *BitrateCompare:
		if n.Less {
			return "bitrate < ?", []any{n.Value}
		}
		return "bitrate > ?", []any{n.Value}
	case *CoverDimCompare:
		col := "cover_height"
		if n.Width {
			col = "cover_width"
		}
		op := ">"
		if n.Less {
			op = "<"
		}
		return fmt.Sprintf("(has_cover AND %s %s ?)", col, op), []any{n.Value}
	case *BoolPred:
		switch n.Field {
		case FieldHasCover:
			return "has_cover = ?", []any{n.Value}
		case FieldHasMusicBrainzID:
			return "has_musicbrainz_id = ?", []any{n.Value}
		case FieldDuplicate:
			// Lowered against the precomputed duplicate reference, not
			// recomputed at query time.
			if n.Value {
				return "duplicate_of IS NOT NULL", nil
			}
			return "duplicate_of IS NULL", nil
		}
	}
	return "1=1", nil
}

// relevanceText returns the first partial title/full-text operand in the
// expression, scanning left to right.
func relevanceText(e Expr) (string, bool) {
	switch n := e.(type) {
	case *TitleContains:
		return n.Text, true
	case *FullText:
		if !n.Exact {
			return n.Text, true
		}
	case *Group:
		return relevanceText(n.Inner)
	case *Logical:
		if text, ok := relevanceText(n.Left); ok {
			return text, ok
		}
		return relevanceText(n.Right)
	}
	return "", false
}
