package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

// EncodeWAV encodes a clip as mono 16-bit PCM WAV at the clip's sample rate.
func EncodeWAV(c Clip) ([]byte, error) {
	if c.SampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", c.SampleRate)
	}

	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, c.SampleRate, ExpectedBitDepth, ExpectedChannels, 1) // 1 = PCM

	pcm := &goaudio.Float32Buffer{
		Data:           clamp(c.Samples),
		Format:         &goaudio.Format{SampleRate: c.SampleRate, NumChannels: ExpectedChannels},
		SourceBitDepth: ExpectedBitDepth,
	}
	if err := enc.Write(pcm); err != nil {
		return nil, fmt.Errorf("encode wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finish wav: %w", err)
	}

	return ws.data, nil
}

// clamp limits samples to [-1, 1] and silences NaNs.
func clamp(samples []float32) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		if math.IsNaN(float64(s)) {
			continue
		}
		out[i] = max(-1, min(1, s))
	}
	return out
}

// writeSeeker is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes on Close.
type writeSeeker struct {
	data []byte
	pos  int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.data) {
		w.data = append(w.data, make([]byte, end-len(w.data))...)
	}
	n := copy(w.data[w.pos:], p)
	w.pos += n
	return n, nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	base := 0
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = w.pos
	case io.SeekEnd:
		base = len(w.data)
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	pos := base + int(offset)
	if pos < 0 {
		return 0, fmt.Errorf("seek: negative position %d", pos)
	}
	w.pos = pos
	return int64(pos), nil
}
