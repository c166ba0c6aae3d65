package tag

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// mpegStream is what the frame scan learns about an MP3 file.
type mpegStream struct {
	bitrate  int // kbps; the average for VBR files
	duration int // seconds
	vbr      bool
}

// kbps by bitrate index, MPEG1 Layer III.
var mpeg1Bitrates = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

// kbps by bitrate index, MPEG2/2.5 Layer III.
var mpeg2Bitrates = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}

var mpeg1SampleRates = [4]int{44100, 48000, 32000, 0}

// scanMPEG locates the first audio frame and reads its header. A Xing or
// VBRI block inside that frame marks a VBR stream and carries the total
// frame count; without one the stream is CBR and the first header's
// bitrate holds for the whole file.
func scanMPEG(filePath string) (mpegStream, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return mpegStream{}, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return mpegStream{}, err
	}

	audioStart, err := skipID3v2(file)
	if err != nil {
		return mpegStream{}, err
	}
	audioSize := stat.Size() - audioStart

	frame, frameOffset, err := findFrameHeader(file, audioStart)
	if err != nil {
		return mpegStream{}, err
	}

	var stream mpegStream
	stream.bitrate = frame.bitrate

	// The Xing/Info/VBRI block sits inside the first frame, after the side
	// information.
	buf := make([]byte, frame.sideInfoSize()+16)
	if _, err := file.ReadAt(buf, frameOffset+4); err == nil {
		tagOffset := frame.sideInfoSize()
		tagName := string(buf[tagOffset : tagOffset+4])
		switch tagName {
		case "Xing", "Info":
			stream.vbr = tagName == "Xing"
			flags := binary.BigEndian.Uint32(buf[tagOffset+4 : tagOffset+8])
			if flags&0x1 != 0 { // frame count present
				frames := int64(binary.BigEndian.Uint32(buf[tagOffset+8 : tagOffset+12]))
				samples := frames * int64(frame.samplesPerFrame)
				if frame.sampleRate > 0 && samples > 0 {
					stream.duration = int(samples / int64(frame.sampleRate))
				}
			}
		case "VBRI":
			stream.vbr = true
		}
	}

	if stream.duration == 0 && stream.bitrate > 0 {
		stream.duration = int(audioSize * 8 / int64(stream.bitrate) / 1000)
	}
	if stream.vbr && stream.duration > 0 {
		stream.bitrate = int(audioSize * 8 / int64(stream.duration) / 1000)
	}
	return stream, nil
}

// skipID3v2 returns the offset of the first byte after the ID3v2 tag, or 0
// when there is none.
func skipID3v2(file *os.File) (int64, error) {
	header := make([]byte, 10)
	if _, err := io.ReadFull(file, header); err != nil {
		return 0, err
	}
	if string(header[:3]) != "ID3" {
		return 0, nil
	}
	// Syncsafe 28-bit size, not counting the 10-byte header.
	size := int64(header[6]&0x7F)<<21 | int64(header[7]&0x7F)<<14 |
		int64(header[8]&0x7F)<<7 | int64(header[9]&0x7F)
	return size + 10, nil
}

type frameHeader struct {
	mpeg1           bool
	mono            bool
	bitrate         int
	sampleRate      int
	samplesPerFrame int
}

// sideInfoSize is the gap between a frame header and its Xing block.
func (h frameHeader) sideInfoSize() int {
	switch {
	case h.mpeg1 && !h.mono:
		return 32
	case h.mpeg1:
		return 17
	case !h.mono:
		return 17
	default:
		return 9
	}
}

// findFrameHeader scans forward from start for a valid Layer III frame sync.
func findFrameHeader(file *os.File, start int64) (frameHeader, int64, error) {
	const scanLimit = 1 << 20
	buf := make([]byte, scanLimit)
	n, err := file.ReadAt(buf, start)
	if n == 0 && err != nil {
		return frameHeader{}, 0, err
	}
	buf = buf[:n]

	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] != 0xFF || buf[i+1]&0xE0 != 0xE0 {
			continue
		}
		h, ok := parseFrameHeader(buf[i : i+4])
		if !ok {
			continue
		}
		return h, start + int64(i), nil
	}
	return frameHeader{}, 0, fmt.Errorf("no mpeg frame sync found")
}

func parseFrameHeader(b []byte) (frameHeader, bool) {
	version := (b[1] >> 3) & 0x3 // 3 = MPEG1, 2 = MPEG2, 0 = MPEG2.5
	layer := (b[1] >> 1) & 0x3   // 1 = Layer III
	if version == 1 || layer != 1 {
		return frameHeader{}, false
	}

	var h frameHeader
	h.mpeg1 = version == 3

	bitrateIndex := (b[2] >> 4) & 0xF
	sampleRateIndex := (b[2] >> 2) & 0x3
	if bitrateIndex == 0 || bitrateIndex == 15 || sampleRateIndex == 3 {
		return frameHeader{}, false
	}

	if h.mpeg1 {
		h.bitrate = mpeg1Bitrates[bitrateIndex]
		h.sampleRate = mpeg1SampleRates[sampleRateIndex]
		h.samplesPerFrame = 1152
	} else {
		h.bitrate = mpeg2Bitrates[bitrateIndex]
		h.sampleRate = mpeg1SampleRates[sampleRateIndex] / 2
		if version == 0 { // MPEG2.5
			h.sampleRate /= 2
		}
		h.samplesPerFrame = 576
	}

	h.mono = (b[3]>>6)&0x3 == 3
	return h, true
}
