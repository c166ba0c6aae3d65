package querying

import (
	"reflect"
	"testing"
)

func mustCompile(t *testing.T, expr string) *CompiledQuery {
	t.Helper()
	q, err := Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", expr, err)
	}
	return q
}

func TestCompileEmptyExpression(t *testing.T) {
	q := mustCompile(t, "")
	if q.Where != "1=1" {
		t.Errorf("where = %q", q.Where)
	}
	if len(q.Args) != 0 {
		t.Errorf("args = %v, want none", q.Args)
	}
	if q.OrderBy != "id" {
		t.Errorf("order by = %q, want id", q.OrderBy)
	}
}

func TestCompileBareTextUsesRelevanceOrder(t *testing.T) {
	q := mustCompile(t, "smoke")
	if q.Where != "instr(casefold(title), casefold(?)) > 0" {
		t.Errorf("where = %q", q.Where)
	}
	if !reflect.DeepEqual(q.Args, []any{"smoke"}) {
		t.Errorf("args = %v", q.Args)
	}
	if !reflect.DeepEqual(q.OrderArgs, []any{"smoke", "smoke"}) {
		t.Errorf("order args = %v", q.OrderArgs)
	}
	if q.OrderBy == "id" {
		t.Error("partial text queries should not fall back to id ordering")
	}
}

func TestCompileExactTextSkipsRelevanceOrder(t *testing.T) {
	q := mustCompile(t, "!Q{Machine Head}")
	if q.Where != "(title = ? OR album = ? OR artist = ?)" {
		t.Errorf("where = %q", q.Where)
	}
	if q.OrderBy != "id" {
		t.Errorf("order by = %q, want id", q.OrderBy)
	}
}

func TestCompileFormatAliasExpandsToIn(t *testing.T) {
	q := mustCompile(t, "!f{flac}&!brgt{900}")
	want := "(format IN (?, ?) AND bitrate > ?)"
	if q.Where != want {
		t.Errorf("where = %q, want %q", q.Where, want)
	}
	if !reflect.DeepEqual(q.Args, []any{"flac16", "flac24", 900}) {
		t.Errorf("args = %v", q.Args)
	}
}

func TestCompileDuplicatePredicate(t *testing.T) {
	q := mustCompile(t, "!dup")
	if q.Where != "duplicate_of IS NOT NULL" {
		t.Errorf("where = %q", q.Where)
	}
	if len(q.Args) != 0 {
		t.Errorf("args = %v, want none", q.Args)
	}

	q = mustCompile(t, "!dup{false}")
	if q.Where != "duplicate_of IS NULL" {
		t.Errorf("where = %q", q.Where)
	}
}

func TestCompileCoverDimsRequireCover(t *testing.T) {
	q := mustCompile(t, "!cwlt{500}")
	if q.Where != "(has_cover AND cover_width < ?)" {
		t.Errorf("where = %q", q.Where)
	}
	q = mustCompile(t, "!chgt{1000}")
	if q.Where != "(has_cover AND cover_height > ?)" {
		t.Errorf("where = %q", q.Where)
	}
}

func TestCompileGroupedExpression(t *testing.T) {
	q := mustCompile(t, "!!{!c|!mb}&!dup{false}")
	want := "(((has_cover = ? OR has_musicbrainz_id = ?)) AND duplicate_of IS NULL)"
	if q.Where != want {
		t.Errorf("where = %q, want %q", q.Where, want)
	}
	if !reflect.DeepEqual(q.Args, []any{true, true}) {
		t.Errorf("args = %v", q.Args)
	}
}

func TestCompileRelevancePicksLeftmostPartialText(t *testing.T) {
	q := mustCompile(t, "!Q{Exact}|smoke&water")
	if !reflect.DeepEqual(q.OrderArgs, []any{"smoke", "smoke"}) {
		t.Errorf("order args = %v, want the leftmost partial operand", q.OrderArgs)
	}
}

func TestCompileEscapedOperandTravelsAsParameter(t *testing.T) {
	q := mustCompile(t, `!al{Weird \} Album}`)
	if !reflect.DeepEqual(q.Args, []any{"Weird } Album"}) {
		t.Errorf("args = %v", q.Args)
	}
	if q.Where != "instr(casefold(album), casefold(?)) > 0" {
		t.Errorf("where = %q", q.Where)
	}
}
