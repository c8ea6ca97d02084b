package audio

import "fmt"

// Silence returns ms milliseconds of zero samples at sampleRate.
func Silence(sampleRate, ms int) Clip {
	n := 0
	if sampleRate > 0 && ms > 0 {
		n = sampleRate * ms / 1000
	}
	return Clip{Samples: make([]float32, n), SampleRate: sampleRate}
}

// Concat joins clips end to end. All clips must share a sample rate.
func Concat(clips ...Clip) (Clip, error) {
	if len(clips) == 0 {
		return Clip{}, ErrNoClips
	}

	rate := clips[0].SampleRate
	total := 0
	for i, c := range clips {
		if c.SampleRate != rate {
			return Clip{}, fmt.Errorf("%w: clip %d sample rate %d, want %d", ErrFormatMismatch, i, c.SampleRate, rate)
		}
		total += len(c.Samples)
	}

	out := make([]float32, 0, total)
	for _, c := range clips {
		out = append(out, c.Samples...)
	}

	return Clip{Samples: out, SampleRate: rate}, nil
}

// ConcatWAV decodes each payload (WAV or MP3), joins them with gapMS of
// silence between consecutive clips and encodes the result as WAV. A single
// WAV payload is returned unchanged.
func ConcatWAV(payloads [][]byte, gapMS int) ([]byte, error) {
	if len(payloads) == 0 {
		return nil, ErrNoClips
	}
	if len(payloads) == 1 && IsWAV(payloads[0]) {
		return payloads[0], nil
	}

	clips := make([]Clip, 0, len(payloads)*2-1)
	for i, p := range payloads {
		c, err := Decode(p)
		if err != nil {
			return nil, fmt.Errorf("decode chunk %d: %w", i+1, err)
		}
		if i > 0 && gapMS > 0 {
			clips = append(clips, Silence(c.SampleRate, gapMS))
		}
		clips = append(clips, c)
	}

	joined, err := Concat(clips...)
	if err != nil {
		return nil, err
	}

	return EncodeWAV(joined)
}
