package tag

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrameHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     []byte
		ok         bool
		bitrate    int
		sampleRate int
		samples    int
		mono       bool
	}{
		{"mpeg1 stereo 320", []byte{0xFF, 0xFB, 0xE0, 0x00}, true, 320, 44100, 1152, false},
		{"mpeg1 mono 128 48k", []byte{0xFF, 0xFB, 0x94, 0xC0}, true, 128, 48000, 1152, true},
		{"mpeg2 stereo 64 22k", []byte{0xFF, 0xF3, 0x80, 0x00}, true, 64, 22050, 576, false},
		{"mpeg2.5 mono 64 11k", []byte{0xFF, 0xE3, 0x80, 0xC0}, true, 64, 11025, 576, true},
		{"reserved version", []byte{0xFF, 0xEB, 0xE0, 0x00}, false, 0, 0, 0, false},
		{"layer II", []byte{0xFF, 0xFD, 0xE0, 0x00}, false, 0, 0, 0, false},
		{"free bitrate", []byte{0xFF, 0xFB, 0x00, 0x00}, false, 0, 0, 0, false},
		{"bad bitrate index", []byte{0xFF, 0xFB, 0xF0, 0x00}, false, 0, 0, 0, false},
		{"bad sample rate index", []byte{0xFF, 0xFB, 0xEC, 0x00}, false, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := parseFrameHeader(tt.header)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if h.bitrate != tt.bitrate || h.sampleRate != tt.sampleRate || h.samplesPerFrame != tt.samples {
				t.Errorf("got %+v", h)
			}
			if h.mono != tt.mono {
				t.Errorf("mono = %v, want %v", h.mono, tt.mono)
			}
		})
	}
}

func TestSideInfoSize(t *testing.T) {
	tests := []struct {
		mpeg1, mono bool
		want        int
	}{
		{true, false, 32},
		{true, true, 17},
		{false, false, 17},
		{false, true, 9},
	}
	for _, tt := range tests {
		h := frameHeader{mpeg1: tt.mpeg1, mono: tt.mono}
		if got := h.sideInfoSize(); got != tt.want {
			t.Errorf("sideInfoSize(mpeg1=%v, mono=%v) = %d, want %d", tt.mpeg1, tt.mono, got, tt.want)
		}
	}
}

func TestSkipID3v2(t *testing.T) {
	dir := t.TempDir()

	// Syncsafe size 0x02 0x01 = 257 bytes, plus the 10-byte header.
	tagged := filepath.Join(dir, "tagged.mp3")
	body := append([]byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0x02, 0x01}, make([]byte, 300)...)
	if err := os.WriteFile(tagged, body, 0644); err != nil {
		t.Fatal(err)
	}
	file, err := os.Open(tagged)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	offset, err := skipID3v2(file)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 267 {
		t.Errorf("offset = %d, want 267", offset)
	}

	bare := filepath.Join(dir, "bare.mp3")
	if err := os.WriteFile(bare, make([]byte, 20), 0644); err != nil {
		t.Fatal(err)
	}
	file2, err := os.Open(bare)
	if err != nil {
		t.Fatal(err)
	}
	defer file2.Close()
	offset, err = skipID3v2(file2)
	if err != nil || offset != 0 {
		t.Errorf("offset = %d (%v), want 0 for a file without a tag", offset, err)
	}
}

func TestScanMPEGDetectsCBR(t *testing.T) {
	// 80000 audio bytes at 320 kbps is 2 seconds.
	body := make([]byte, 80010)
	copy(body, []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, 0})
	copy(body[10:], []byte{0xFF, 0xFB, 0xE0, 0x00})

	path := filepath.Join(t.TempDir(), "cbr.mp3")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	stream, err := scanMPEG(path)
	if err != nil {
		t.Fatalf("scanMPEG failed: %v", err)
	}
	if stream.vbr {
		t.Error("a frame without a Xing block is CBR")
	}
	if stream.bitrate != 320 {
		t.Errorf("bitrate = %d, want 320", stream.bitrate)
	}
	if stream.duration != 2 {
		t.Errorf("duration = %d, want 2", stream.duration)
	}
}

func TestScanMPEGDetectsXingVBR(t *testing.T) {
	// MPEG1 stereo puts the Xing block 32 bytes of side info after the
	// header. 3830 frames of 1152 samples at 44100 Hz is 100 seconds, and
	// 1250000 audio bytes over that make a 100 kbps average.
	body := make([]byte, 1250000)
	copy(body, []byte{0xFF, 0xFB, 0xE0, 0x00})
	xing := 4 + 32
	copy(body[xing:], "Xing")
	binary.BigEndian.PutUint32(body[xing+4:], 0x1)
	binary.BigEndian.PutUint32(body[xing+8:], 3830)

	path := filepath.Join(t.TempDir(), "vbr.mp3")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	stream, err := scanMPEG(path)
	if err != nil {
		t.Fatalf("scanMPEG failed: %v", err)
	}
	if !stream.vbr {
		t.Error("a Xing block marks a VBR stream")
	}
	if stream.duration != 100 {
		t.Errorf("duration = %d, want 100", stream.duration)
	}
	if stream.bitrate != 100 {
		t.Errorf("average bitrate = %d, want 100", stream.bitrate)
	}
}

func TestScanMPEGRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.mp3")
	if err := os.WriteFile(path, make([]byte, 4096), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := scanMPEG(path); err == nil {
		t.Error("a file without a frame sync should be refused")
	}
}
