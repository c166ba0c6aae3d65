package tag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/sunclx/seiri/src/music"
)

// readMP3 reads ID3v2 tags and scans the MPEG frames for the stream
// properties, which is the only way to tell a CBR file from a VBR one.
func (r *TagReader) readMP3(filePath string) (*music.Track, error) {
	id3, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read id3 tags: %w", err)
	}
	defer id3.Close()

	track := &music.Track{
		Path:        filePath,
		Title:       strings.TrimSpace(id3.Title()),
		Album:       strings.TrimSpace(id3.Album()),
		Artist:      strings.TrimSpace(id3.Artist()),
		AlbumArtist: strings.TrimSpace(id3.GetTextFrame(id3.CommonID("Band/Orchestra/Accompaniment")).Text),
		DiscNumber:  1,
	}
	track.TrackNumber = leadingInt(id3.GetTextFrame(id3.CommonID("Track number/Position in set")).Text)
	if disc := leadingInt(id3.GetTextFrame(id3.CommonID("Part of a set")).Text); disc > 0 {
		track.DiscNumber = disc
	}
	track.HasMusicBrainzID = id3HasMusicBrainzID(id3)

	for _, frame := range id3.GetFrames(id3.CommonID("Attached picture")) {
		if pic, ok := frame.(id3v2.PictureFrame); ok {
			applyCover(track, pic.Picture)
			if track.HasCover {
				break
			}
		}
	}

	stream, err := scanMPEG(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan mpeg stream: %w", err)
	}
	if stream.vbr {
		track.Format = music.FormatMP3VBR
	} else {
		track.Format = music.FormatMP3CBR
	}
	track.Bitrate = stream.bitrate
	track.Duration = stream.duration

	return track, nil
}

// leadingInt parses the number before an optional "/total" suffix, as in
// the TRCK frame's "3/12" form.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// id3HasMusicBrainzID looks for the identifiers Picard writes: a UFID frame
// owned by musicbrainz.org or a MusicBrainz TXXX frame.
func id3HasMusicBrainzID(id3 *id3v2.Tag) bool {
	for _, frame := range id3.GetFrames("UFID") {
		if ufid, ok := frame.(id3v2.UFIDFrame); ok {
			if strings.Contains(ufid.OwnerIdentifier, "musicbrainz") && len(ufid.Identifier) > 0 {
				return true
			}
		}
	}
	for _, frame := range id3.GetFrames(id3.CommonID("User defined text information frame")) {
		if udt, ok := frame.(id3v2.UserDefinedTextFrame); ok {
			if strings.Contains(strings.ToLower(udt.Description), "musicbrainz") && strings.TrimSpace(udt.Value) != "" {
				return true
			}
		}
	}
	return false
}
