package audio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cwbudde/wav"
)

// Clips are mono 16-bit PCM; the sample rate is whatever the synthesizer produced.
const (
	ExpectedChannels = 1
	ExpectedBitDepth = 16
)

var (
	// ErrFormatMismatch is returned when a WAV or clip does not have the expected format.
	ErrFormatMismatch = errors.New("WAV format mismatch")
	// ErrNoClips is returned by Concat when called without input.
	ErrNoClips = errors.New("no clips to concatenate")
)

// Clip is a run of mono float32 PCM samples at a fixed sample rate.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length in milliseconds.
func (c Clip) Duration() int {
	if c.SampleRate <= 0 {
		return 0
	}
	return len(c.Samples) * 1000 / c.SampleRate
}

// DecodeWAV decodes WAV bytes into a Clip.
// It requires mono 16-bit PCM and accepts any sample rate.
func DecodeWAV(data []byte) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, errors.New("empty WAV input")
	}

	r := bytes.NewReader(data)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Clip{}, errors.New("invalid WAV file")
	}

	if dec.SampleRate == 0 {
		return Clip{}, fmt.Errorf("%w: sample rate 0", ErrFormatMismatch)
	}
	if dec.NumChans != ExpectedChannels {
		return Clip{}, fmt.Errorf("%w: channels %d, want %d", ErrFormatMismatch, dec.NumChans, ExpectedChannels)
	}
	if dec.BitDepth != ExpectedBitDepth {
		return Clip{}, fmt.Errorf("%w: bit depth %d, want %d", ErrFormatMismatch, dec.BitDepth, ExpectedBitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("reading PCM data: %w", err)
	}

	return Clip{Samples: buf.Data, SampleRate: int(dec.SampleRate)}, nil
}
