package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes MP3 bytes into a mono Clip. The decoder always yields
// 16-bit little-endian stereo frames; the two channels are averaged.
func DecodeMP3(data []byte) (Clip, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Clip{}, fmt.Errorf("open mp3: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return Clip{}, fmt.Errorf("decode mp3: %w", err)
	}

	const frameBytes = 4
	samples := make([]float32, len(pcm)/frameBytes)
	for i := range samples {
		off := i * frameBytes
		left := int16(binary.LittleEndian.Uint16(pcm[off:]))
		right := int16(binary.LittleEndian.Uint16(pcm[off+2:]))
		samples[i] = (float32(left) + float32(right)) / 2 / 32768
	}

	return Clip{Samples: samples, SampleRate: dec.SampleRate()}, nil
}

// IsWAV reports whether data starts with a RIFF header.
func IsWAV(data []byte) bool {
	return bytes.HasPrefix(data, []byte("RIFF"))
}

func isMP3(data []byte) bool {
	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}
	return len(data) >= 2 && data[0] == 0xff && data[1]&0xe0 == 0xe0
}

// Decode decodes a synthesizer payload, WAV or MP3, into a Clip.
func Decode(data []byte) (Clip, error) {
	if isMP3(data) {
		return DecodeMP3(data)
	}
	return DecodeWAV(data)
}
