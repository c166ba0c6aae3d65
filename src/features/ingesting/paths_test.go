package ingesting

import (
	"path/filepath"
	"testing"

	"github.com/sunclx/seiri/src/music"
)

func TestSanitizePathComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "AC_DC"},
		{"Björk", "Bjork"},
		{"What?", "What_"},
		{`He said "no"`, "He said _no_"},
		{"a<b>c:d|e*f", "a_b_c_d_e_f"},
		{`back\slash`, "back_slash"},
		{"plain name", "plain name"},
	}
	for _, tt := range tests {
		if got := SanitizePathComponent(tt.in); got != tt.want {
			t.Errorf("SanitizePathComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalPathUsesAlbumArtistAndPadding(t *testing.T) {
	track := &music.Track{
		Title:       "Smoke on the Water",
		Album:       "Machine Head",
		Artist:      "Deep Purple Live Band",
		AlbumArtist: "Deep Purple",
		TrackNumber: 5,
		DiscNumber:  1,
	}
	got := CanonicalPath("/lib", track, ".flac")
	want := filepath.Join("/lib", "Deep Purple", "Machine Head", "1-05 Smoke on the Water.flac")
	if got != want {
		t.Errorf("CanonicalPath = %q, want %q", got, want)
	}

	// Without an album artist the track artist names the folder.
	track.AlbumArtist = ""
	got = CanonicalPath("/lib", track, ".flac")
	want = filepath.Join("/lib", "Deep Purple Live Band", "Machine Head", "1-05 Smoke on the Water.flac")
	if got != want {
		t.Errorf("CanonicalPath = %q, want %q", got, want)
	}
}

func TestCanonicalPathIsPureAndDeterministic(t *testing.T) {
	track := &music.Track{
		Title:       "Intro/Outro?",
		Album:       "Odd: Album",
		Artist:      "Señor",
		TrackNumber: 12,
		DiscNumber:  2,
	}
	first := CanonicalPath("/lib", track, ".mp3")
	second := CanonicalPath("/lib", track, ".mp3")
	if first != second {
		t.Errorf("CanonicalPath not deterministic: %q vs %q", first, second)
	}
	want := filepath.Join("/lib", "Senor", "Odd_ Album", "2-12 Intro_Outro_.mp3")
	if first != want {
		t.Errorf("CanonicalPath = %q, want %q", first, want)
	}
}

func TestSourceTag(t *testing.T) {
	staging := filepath.Join("/music", "Automatically Add to Library")
	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(staging, "bandcamp_2024-05", "album", "track.flac"), "bandcamp"},
		{filepath.Join(staging, "rips", "track.flac"), "rips"},
		{filepath.Join(staging, "track.flac"), ""},
		{filepath.Join("/elsewhere", "track.flac"), ""},
	}
	for _, tt := range tests {
		if got := SourceTag(tt.path, staging); got != tt.want {
			t.Errorf("SourceTag(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestInHiddenPath(t *testing.T) {
	staging := "/staging"
	if !InHiddenPath(filepath.Join(staging, ".notadded", "2026-08-23", "x.flac"), staging) {
		t.Error("file under the quarantine folder should be hidden")
	}
	if InHiddenPath(filepath.Join(staging, "source", "x.flac"), staging) {
		t.Error("regular staging subfolder should not be hidden")
	}
	if InHiddenPath(filepath.Join(staging, "x.flac"), staging) {
		t.Error("file at the staging root should not be hidden")
	}
}

func TestIsSupportedFile(t *testing.T) {
	supported := []string{"a.flac", "b.MP3", "c.m4a", "d.ogg", "e.opus", "f.wv", "g.aac"}
	for _, name := range supported {
		if !IsSupportedFile(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	unsupported := []string{"a.wav", "b.txt", "c.cue", "d.jpg", "noext"}
	for _, name := range unsupported {
		if IsSupportedFile(name) {
			t.Errorf("%s should not be supported", name)
		}
	}
}
