package tag

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/sunclx/seiri/src/features/ingesting"
	"github.com/sunclx/seiri/src/music"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// TagReader extracts catalog metadata from audio files. FLAC and MP3 get
// format-native readers so bit depth and bitrate mode come out exact;
// everything else goes through the dhowden/tag generic parser.
type TagReader struct{}

// NewTagReader creates a new TagReader.
func NewTagReader() ingesting.TagReader {
	return &TagReader{}
}

// ReadFileTags reads metadata from a music file.
func (r *TagReader) ReadFileTags(ctx context.Context, filePath string) (*music.Track, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".flac":
		return r.readFLAC(filePath)
	case ".mp3":
		return r.readMP3(filePath)
	default:
		return r.readGeneric(filePath)
	}
}

// readGeneric covers m4a, ogg, opus and wavpack via dhowden/tag. The parser
// exposes no stream properties, so duration and bitrate stay zero.
func (r *TagReader) readGeneric(filePath string) (*music.Track, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	track := trackFromCommonTags(filePath, tags)

	format, err := genericFormat(filePath, tags.FileType())
	if err != nil {
		return nil, err
	}
	track.Format = format

	if pic := tags.Picture(); pic != nil {
		applyCover(track, pic.Data)
	}
	track.HasMusicBrainzID = rawHasMusicBrainzID(tags.Raw())

	return track, nil
}

// trackFromCommonTags fills the fields every container exposes the same way.
func trackFromCommonTags(filePath string, tags tag.Metadata) *music.Track {
	trackNumber, _ := tags.Track()
	discNumber, _ := tags.Disc()
	if discNumber == 0 {
		discNumber = 1
	}
	return &music.Track{
		Path:        filePath,
		Title:       strings.TrimSpace(tags.Title()),
		Album:       strings.TrimSpace(tags.Album()),
		Artist:      strings.TrimSpace(tags.Artist()),
		AlbumArtist: strings.TrimSpace(tags.AlbumArtist()),
		TrackNumber: trackNumber,
		DiscNumber:  discNumber,
	}
}

func genericFormat(filePath string, fileType tag.FileType) (music.Format, error) {
	switch fileType {
	case tag.ALAC:
		return music.FormatALAC, nil
	case tag.FileType("AAC"), tag.M4A, tag.M4B, tag.M4P:
		return music.FormatAAC, nil
	case tag.OGG:
		if strings.ToLower(filepath.Ext(filePath)) == ".opus" {
			return music.FormatOpus, nil
		}
		return music.FormatVorbis, nil
	}
	// dhowden/tag reads APEv2 tags off wavpack but reports no file type.
	if strings.ToLower(filepath.Ext(filePath)) == ".wv" {
		return music.FormatWavpack, nil
	}
	return "", fmt.Errorf("unsupported container %q", fileType)
}

// applyCover records the embedded art and its pixel dimensions. Art whose
// dimensions cannot be decoded counts as no art at all, keeping the
// has-cover/dimensions pairing consistent.
func applyCover(track *music.Track, data []byte) {
	if len(data) == 0 {
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return
	}
	track.HasCover = true
	track.CoverWidth = cfg.Width
	track.CoverHeight = cfg.Height
}

// rawHasMusicBrainzID scans raw tag fields for a MusicBrainz track or
// recording identifier.
func rawHasMusicBrainzID(raw map[string]interface{}) bool {
	for key, value := range raw {
		upper := strings.ToUpper(key)
		if !strings.Contains(upper, "MUSICBRAINZ") {
			continue
		}
		if str, ok := value.(string); ok && strings.TrimSpace(str) != "" {
			return true
		}
		if b, ok := value.([]byte); ok && len(b) > 0 {
			return true
		}
	}
	return false
}
