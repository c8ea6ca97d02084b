package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-taibun/internal/audio"
	"github.com/example/go-taibun/internal/synth"
	"github.com/spf13/cobra"
)

type synthOptions struct {
	text      string
	out       string
	numeric   bool
	normalize bool
	dcBlock   bool
	fadeInMS  int
	fadeOutMS int
}

func newSynthCmd() *cobra.Command {
	var o synthOptions

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Convert Tâi-lô and synthesize it to a WAV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			input, err := readInputText(o.text, os.Stdin)
			if err != nil {
				return err
			}

			svc, err := synth.NewFromConfig(cfg, slog.Default(), synth.WithHooks(o.hooks()...))
			if err != nil {
				return err
			}

			res, err := runSynth(cmd.Context(), svc, input, o.numeric)
			if err != nil {
				return mapSynthError(err)
			}

			slog.Info("synthesized",
				slog.String("numeric", res.Numeric),
				slog.Int("bytes", len(res.WAV)),
				slog.String("out", o.out),
			)

			return writeOutput(o.out, res.WAV, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&o.text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().StringVar(&o.out, "out", "out.wav", "Output WAV path, or - for stdout")
	cmd.Flags().BoolVar(&o.numeric, "numeric", false, "Treat input as numeric-tone text and skip conversion")
	cmd.Flags().BoolVar(&o.normalize, "normalize", false, "Peak-normalize output audio")
	cmd.Flags().BoolVar(&o.dcBlock, "dc-block", false, "Apply DC-blocking filter")
	cmd.Flags().IntVar(&o.fadeInMS, "fade-in-ms", 0, "Linear fade-in duration in milliseconds")
	cmd.Flags().IntVar(&o.fadeOutMS, "fade-out-ms", 0, "Linear fade-out duration in milliseconds")

	return cmd
}

func (o synthOptions) hooks() []audio.Hook {
	var hooks []audio.Hook
	if o.dcBlock {
		hooks = append(hooks, audio.DCBlock)
	}
	if o.fadeInMS > 0 {
		ms := float64(o.fadeInMS)
		hooks = append(hooks, func(s []float32, rate int) []float32 {
			return audio.FadeIn(s, rate, ms)
		})
	}
	if o.fadeOutMS > 0 {
		ms := float64(o.fadeOutMS)
		hooks = append(hooks, func(s []float32, rate int) []float32 {
			return audio.FadeOut(s, rate, ms)
		})
	}
	if o.normalize {
		hooks = append(hooks, audio.NormalizeHook)
	}
	return hooks
}

func runSynth(ctx context.Context, svc *synth.Service, input string, numeric bool) (synth.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if numeric {
		return svc.SpeakNumeric(ctx, input)
	}
	return svc.Speak(ctx, input)
}

func mapSynthError(err error) error {
	var statusErr *synth.StatusError
	switch {
	case errors.Is(err, synth.ErrEmptyText):
		return fmt.Errorf("nothing to synthesize: input has no speakable syllables")
	case errors.Is(err, synth.ErrNotAudio):
		return fmt.Errorf("synthesis backend returned non-audio data: %w", err)
	case errors.As(err, &statusErr):
		return fmt.Errorf("synthesis backend rejected the request (HTTP %d): %w", statusErr.Code, err)
	case errors.Is(err, synth.ErrNoExecutable):
		return fmt.Errorf("cli backend needs --synth-cli-path: %w", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("synthesis timed out: %w", err)
	default:
		return fmt.Errorf("synthesize: %w", err)
	}
}
