package dedup

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  Spaced   Out  ", "spaced out"},
		{"Song (Remastered)", "song"},
		{"Song (Remastered 2011)", "song"},
		{"Song [Live]", "song"},
		{"Song (Deluxe Edition)", "song"},
		{"Don't Stop", "don t stop"},
		{"MiXeD CaSe", "mixed case"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsDuplicate_MatchesWithinTolerance(t *testing.T) {
	d := NewDetector(3)

	a := Fingerprint("Song (Remastered)", "The Artist", 200)
	b := Fingerprint("song", "the artist!", 202)

	if !d.IsDuplicate(a, b) {
		t.Error("expected tracks within tolerance to be duplicates")
	}
}

func TestIsDuplicate_RejectsOutsideTolerance(t *testing.T) {
	d := NewDetector(3)

	a := Fingerprint("Song", "Artist", 200)
	b := Fingerprint("Song", "Artist", 210)

	if d.IsDuplicate(a, b) {
		t.Error("expected tracks outside duration tolerance to not be duplicates")
	}
}

func TestIsDuplicate_DifferentTitles(t *testing.T) {
	d := NewDetector(3)

	a := Fingerprint("Song One", "Artist", 200)
	b := Fingerprint("Song Two", "Artist", 200)

	if d.IsDuplicate(a, b) {
		t.Error("expected different titles to not be duplicates")
	}
}

func TestIsDuplicate_Symmetric(t *testing.T) {
	d := NewDetector(3)

	pairs := [][2]Signature{
		{Fingerprint("Song", "Artist", 200), Fingerprint("Song", "Artist", 203)},
		{Fingerprint("Song", "Artist", 200), Fingerprint("Song", "Artist", 204)},
		{Fingerprint("A", "B", 10), Fingerprint("C", "D", 10)},
	}
	for _, p := range pairs {
		if d.IsDuplicate(p[0], p[1]) != d.IsDuplicate(p[1], p[0]) {
			t.Errorf("IsDuplicate not symmetric for %v", p)
		}
	}
}

func TestIsDuplicate_EmptyKeyNeverMatches(t *testing.T) {
	d := NewDetector(3)

	a := Fingerprint("", "", 200)
	b := Fingerprint("", "", 200)

	if d.IsDuplicate(a, b) {
		t.Error("tracks with empty metadata must not match each other")
	}
}

func TestIsDuplicate_FormatIndependent(t *testing.T) {
	// The signature carries no format or bitrate at all; two rips of the
	// same recording fingerprint identically.
	a := Fingerprint("Baz", "Foo", 181)
	b := Fingerprint("Baz", "Foo", 181)
	if a != b {
		t.Errorf("identical metadata produced different signatures: %v vs %v", a, b)
	}
}
