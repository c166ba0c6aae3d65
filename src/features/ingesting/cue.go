package ingesting

import (
	"bufio"
	"io"
	"os"
	"regexp"
)

// Cue sheets are only inspected far enough to recognize single-file
// CUE+image rips; times and per-track indexes are irrelevant here.
var cueFileRe = regexp.MustCompile(`^\s*FILE\s+"?([^"]+)"?`)

// cueReferencedFiles returns the FILE entries of a cue sheet.
func cueReferencedFiles(r io.Reader) []string {
	var files []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := cueFileRe.FindStringSubmatch(scanner.Text()); m != nil {
			files = append(files, m[1])
		}
	}
	return files
}

// cueSheetReferences reports whether the cue sheet at cuePath references the
// given file name.
func cueSheetReferences(cuePath, fileName string) bool {
	f, err := os.Open(cuePath)
	if err != nil {
		return false
	}
	defer f.Close()
	for _, ref := range cueReferencedFiles(f) {
		if ref == fileName {
			return true
		}
	}
	return false
}
