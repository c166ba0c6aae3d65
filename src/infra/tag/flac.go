package tag

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/sunclx/seiri/src/music"
)

// readFLAC parses the FLAC metadata blocks directly: STREAMINFO for the
// stream properties that decide flac16 vs flac24, the vorbis comment block
// for tags and the picture block for embedded art.
func (r *TagReader) readFLAC(filePath string) (*music.Track, error) {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac: %w", err)
	}

	track := &music.Track{Path: filePath, DiscNumber: 1}
	var haveStreamInfo bool

	for _, meta := range f.Meta {
		switch meta.Type {
		case goflac.StreamInfo:
			info, err := parseStreamInfo(meta.Data)
			if err != nil {
				return nil, err
			}
			haveStreamInfo = true
			if info.bitsPerSample > 16 {
				track.Format = music.FormatFLAC24
			} else {
				track.Format = music.FormatFLAC16
			}
			if info.sampleRate > 0 {
				track.Duration = int(info.totalSamples / int64(info.sampleRate))
			}

		case goflac.VorbisComment:
			comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil, fmt.Errorf("failed to parse vorbis comment: %w", err)
			}
			applyVorbisComment(track, comment)

		case goflac.Picture:
			if track.HasCover {
				continue
			}
			pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
			if err != nil {
				continue
			}
			applyCover(track, pic.ImageData)
		}
	}

	if !haveStreamInfo {
		return nil, fmt.Errorf("flac file has no STREAMINFO block")
	}
	if track.Duration > 0 {
		if stat, err := os.Stat(filePath); err == nil {
			track.Bitrate = int(stat.Size() * 8 / int64(track.Duration) / 1000)
		}
	}
	return track, nil
}

type streamInfo struct {
	sampleRate    int
	bitsPerSample int
	totalSamples  int64
}

// parseStreamInfo unpacks the bit-packed tail of the STREAMINFO block:
// 20 bits sample rate, 3 bits channels, 5 bits bits-per-sample minus one,
// 36 bits total samples, starting at byte 10.
func parseStreamInfo(data []byte) (streamInfo, error) {
	if len(data) < 18 {
		return streamInfo{}, fmt.Errorf("STREAMINFO block too short: %d bytes", len(data))
	}
	var info streamInfo
	info.sampleRate = int(data[10])<<12 | int(data[11])<<4 | int(data[12])>>4
	info.bitsPerSample = (int(data[12])&0x01)<<4 | int(data[13])>>4
	info.bitsPerSample++
	info.totalSamples = int64(data[13]&0x0F)<<32 |
		int64(data[14])<<24 |
		int64(data[15])<<16 |
		int64(data[16])<<8 |
		int64(data[17])
	return info, nil
}

func applyVorbisComment(track *music.Track, comment *flacvorbis.MetaDataBlockVorbisComment) {
	track.Title = firstComment(comment, flacvorbis.FIELD_TITLE)
	track.Album = firstComment(comment, flacvorbis.FIELD_ALBUM)
	track.Artist = firstComment(comment, flacvorbis.FIELD_ARTIST)
	track.AlbumArtist = firstComment(comment, "ALBUMARTIST")
	if n, err := strconv.Atoi(firstComment(comment, flacvorbis.FIELD_TRACKNUMBER)); err == nil {
		track.TrackNumber = n
	}
	if n, err := strconv.Atoi(firstComment(comment, "DISCNUMBER")); err == nil && n > 0 {
		track.DiscNumber = n
	}
	track.HasMusicBrainzID = firstComment(comment, "MUSICBRAINZ_TRACKID") != "" ||
		firstComment(comment, "MUSICBRAINZ_RELEASETRACKID") != ""
}

func firstComment(comment *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := comment.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
