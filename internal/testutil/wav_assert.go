package testutil

import (
	"bytes"
	"testing"

	"github.com/example/go-taibun/internal/audio"
)

// AssertValidWAV checks that data decodes as a non-empty mono 16-bit PCM WAV.
// A wantRate of 0 accepts any sample rate.
func AssertValidWAV(tb testing.TB, data []byte, wantRate int) audio.Clip {
	tb.Helper()

	if !bytes.HasPrefix(data, []byte("RIFF")) {
		tb.Fatalf("WAV: missing RIFF header in %d bytes", len(data))
	}

	clip, err := audio.DecodeWAV(data)
	if err != nil {
		tb.Fatalf("WAV: %v", err)
	}
	if wantRate > 0 && clip.SampleRate != wantRate {
		tb.Fatalf("WAV: sample rate %d, want %d", clip.SampleRate, wantRate)
	}
	if len(clip.Samples) == 0 {
		tb.Fatal("WAV: no samples")
	}

	return clip
}

// AssertWAVDurationApprox checks the decoded duration lies in [minSec, maxSec].
func AssertWAVDurationApprox(tb testing.TB, data []byte, minSec, maxSec float64) {
	tb.Helper()

	clip, err := audio.DecodeWAV(data)
	if err != nil {
		tb.Fatalf("WAV duration check: %v", err)
	}

	sec := float64(len(clip.Samples)) / float64(clip.SampleRate)
	if sec < minSec || sec > maxSec {
		tb.Fatalf("WAV duration %.3fs outside [%.3fs, %.3fs]", sec, minSec, maxSec)
	}
}
