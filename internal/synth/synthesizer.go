// Package synth turns numeric-tone text into speech through an external
// synthesizer and joins the results into a single WAV payload.
package synth

import (
	"context"
	"errors"
	"fmt"
)

// Synthesizer produces WAV bytes from numeric-tone text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

var (
	// ErrNotAudio is returned when the synthesizer answers with something other than audio.
	ErrNotAudio = errors.New("synthesizer response is not audio")
	// ErrEmptyText is returned when there is nothing left to synthesize after conversion.
	ErrEmptyText = errors.New("nothing to synthesize")
	// ErrNoExecutable is returned when the cli backend has no executable configured.
	ErrNoExecutable = errors.New("synthesis executable not configured")
)

// StatusError reports a non-200 answer from a remote synthesizer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("synthesizer returned status %d", e.Code)
	}
	return fmt.Sprintf("synthesizer returned status %d: %s", e.Code, e.Body)
}

// excerptLen bounds how much of a non-audio body ends up in an error.
const excerptLen = 200

func excerpt(body []byte) string {
	if len(body) > excerptLen {
		body = body[:excerptLen]
	}
	return string(body)
}
