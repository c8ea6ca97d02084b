// Package testutil provides shared skip helpers and WAV fixtures for tests.
//
// Each Require helper calls t.Skip with a clear human-readable reason when
// the named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
//
// Typical usage:
//
//	func TestRemoteIntegration(t *testing.T) {
//	    baseURL := testutil.RequireSynthServer(t)
//	    ...
//	}
package testutil

import (
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/example/go-taibun/internal/audio"
)

// SynthURLEnv names the variable integration tests read the synthesis server from.
const SynthURLEnv = "TAIBUN_SYNTH_BASE_URL"

// RequireSynthServer skips the test unless TAIBUN_SYNTH_BASE_URL points at a
// server that answers HTTP. It returns the base URL.
func RequireSynthServer(tb testing.TB) string {
	tb.Helper()

	base := os.Getenv(SynthURLEnv)
	if base == "" {
		tb.Skipf("synthesis server not configured; set %s to run", SynthURLEnv)
		return ""
	}

	client := &http.Client{Timeout: 2 * time.Second}
	// #nosec G107 -- Integration tests intentionally probe an operator-provided URL.
	resp, err := client.Get(base)
	if err != nil {
		tb.Skipf("synthesis server at %q not reachable: %v", base, err)
		return ""
	}
	_ = resp.Body.Close()

	return base
}

// RequireExecutable skips the test if name cannot be found in PATH.
// It returns the resolved path.
func RequireExecutable(tb testing.TB, name string) string {
	tb.Helper()

	p, err := exec.LookPath(name)
	if err != nil {
		tb.Skipf("%q not available in PATH", name)
		return ""
	}

	return p
}

// SilenceWAV returns ms milliseconds of encoded mono silence at sampleRate.
func SilenceWAV(tb testing.TB, sampleRate, ms int) []byte {
	tb.Helper()

	data, err := audio.EncodeWAV(audio.Silence(sampleRate, ms))
	if err != nil {
		tb.Fatalf("encode silence fixture: %v", err)
	}

	return data
}
