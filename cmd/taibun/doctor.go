package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/go-taibun/internal/config"
	"github.com/example/go-taibun/internal/doctor"
	"github.com/example/go-taibun/internal/synth"
	"github.com/spf13/cobra"
)

const doctorProbeTimeout = 10 * time.Second

func newDoctorCmd() *cobra.Command {
	var skipSynth bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := activeCfg

			dcfg := doctor.Config{
				SkipSynth: skipSynth,
				LogFile:   cfg.LogFile,
			}

			var cfgErr error
			if err := cfg.Validate(); err != nil {
				cfgErr = err
				dcfg.SkipSynth = true
			} else if !skipSynth {
				dcfg.SynthLabel, dcfg.SynthProbe = synthProbe(cfg.Synth)
			}

			result := doctor.Run(dcfg, cmd.OutOrStdout())
			if cfgErr != nil {
				result.AddFailure(fmt.Sprintf("configuration: %v", cfgErr))
			}

			if result.Failed() {
				for _, f := range result.Failures() {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}
				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "doctor checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSynth, "skip-synth", false, "Skip the synthesis backend check")

	return cmd
}

// synthProbe returns a label and probe for the configured backend.
func synthProbe(cfg config.SynthConfig) (string, doctor.ProbeFunc) {
	backend, err := synth.NewSynthesizer(cfg, slog.Default())
	if err != nil {
		return cfg.Backend, func() error { return err }
	}

	label := cfg.Backend
	switch b := backend.(type) {
	case *synth.RemoteSynthesizer:
		label = "remote " + b.BaseURL()
	case *synth.CLISynthesizer:
		label = "cli " + b.ExecutablePath
	}

	prober, ok := backend.(synth.Prober)
	if !ok {
		return label, func() error { return fmt.Errorf("backend %s cannot be probed", label) }
	}

	return label, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), doctorProbeTimeout)
		defer cancel()
		return prober.Probe(ctx)
	}
}
