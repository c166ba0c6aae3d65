package ingesting

import (
	"context"

	"github.com/sunclx/seiri/src/music"
)

// TagReader is the tag-extraction capability: given a file path it returns
// the structured metadata already embedded in the file, or a read failure.
// The engine depends only on this contract, not on any specific tagging
// implementation.
type TagReader interface {
	ReadFileTags(ctx context.Context, filePath string) (*music.Track, error)
}
