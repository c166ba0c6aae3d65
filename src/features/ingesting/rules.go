package ingesting

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sunclx/seiri/src/music"
)

// sidecarCoverNames are the external cover-file conventions the library
// forbids: cover art must be embedded in tags, not shipped as a sibling
// file.
var sidecarCoverNames = map[string]bool{
	"cover.jpg":  true,
	"cover.jpeg": true,
	"cover.png":  true,
	"folder.jpg": true,
	"folder.png": true,
	"front.jpg":  true,
	"front.png":  true,
}

// CheckFileAllowed enforces the rules that need no extracted metadata.
// Raw WAV is rejected outright; wavpack is the accepted lossless container
// for that material.
func CheckFileAllowed(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".wav" {
		return &Rejection{Reason: ReasonForbiddenFormat, Detail: "raw WAV is not accepted; repack as wavpack"}
	}
	return nil
}

// CheckTrackRules enforces the library rules on an extracted track still
// sitting at its staging path.
func CheckTrackRules(track *music.Track, stagingPath string) error {
	var missing []string
	if strings.TrimSpace(track.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(track.Artist) == "" {
		missing = append(missing, "artist")
	}
	if strings.TrimSpace(track.Album) == "" {
		missing = append(missing, "album")
	}
	if len(missing) > 0 {
		return &Rejection{Reason: ReasonMissingTags, Detail: strings.Join(missing, ", ")}
	}

	dir := filepath.Dir(stagingPath)
	if !track.HasCover && hasSidecarCover(dir) {
		return &Rejection{Reason: ReasonExternalCover, Detail: "cover art must be embedded in tags, not a sibling file"}
	}

	if isSingleFileCueRip(stagingPath) {
		return &Rejection{Reason: ReasonCueRip, Detail: "single-file CUE rip must be split per track"}
	}
	return nil
}

func hasSidecarCover(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && sidecarCoverNames[strings.ToLower(e.Name())] {
			return true
		}
	}
	return false
}

// isSingleFileCueRip reports whether path is the only audio file in its
// directory and a cue sheet there references it, the shape of an unsplit
// CUE+image rip.
func isSingleFileCueRip(path string) bool {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	audioCount := 0
	var cueSheets []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if IsSupportedFile(name) {
			audioCount++
		}
		if strings.EqualFold(filepath.Ext(name), ".cue") {
			cueSheets = append(cueSheets, filepath.Join(dir, name))
		}
	}
	if audioCount != 1 || len(cueSheets) == 0 {
		return false
	}
	base := filepath.Base(path)
	for _, cue := range cueSheets {
		if cueSheetReferences(cue, base) {
			return true
		}
	}
	return false
}
