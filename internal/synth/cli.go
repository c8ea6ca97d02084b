package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CLISynthesizer pipes text to an executable on stdin and reads WAV from stdout.
type CLISynthesizer struct {
	ExecutablePath string
	Args           []string
}

func (c *CLISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(c.ExecutablePath) == "" {
		return nil, ErrNoExecutable
	}

	cmd := exec.CommandContext(ctx, c.ExecutablePath, c.Args...)
	cmd.Stdin = strings.NewReader(text)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("synthesis executable %q not found: %w", c.ExecutablePath, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				return nil, fmt.Errorf("synthesis executable exited with code %d: %s", exitErr.ExitCode(), msg)
			}
			return nil, fmt.Errorf("synthesis executable exited with code %d", exitErr.ExitCode())
		}
		return nil, fmt.Errorf("run synthesis executable: %w", err)
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: executable wrote no output", ErrNotAudio)
	}
	return out.Bytes(), nil
}

// Probe reports whether the executable can be resolved.
func (c *CLISynthesizer) Probe(context.Context) error {
	if strings.TrimSpace(c.ExecutablePath) == "" {
		return ErrNoExecutable
	}
	if _, err := exec.LookPath(c.ExecutablePath); err != nil {
		return fmt.Errorf("synthesis executable %q: %w", c.ExecutablePath, err)
	}
	return nil
}
