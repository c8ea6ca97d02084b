package synth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/go-taibun/internal/config"
)

// Prober is implemented by synthesizers that can check their backend is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// NewSynthesizer builds the backend named by cfg.Backend.
func NewSynthesizer(cfg config.SynthConfig, log *slog.Logger) (Synthesizer, error) {
	backend, err := config.NormalizeBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendRemote:
		return NewRemote(cfg.BaseURL,
			WithEndpoint(cfg.Endpoint),
			WithTimeout(time.Duration(cfg.Timeout)*time.Second),
			WithRemoteLogger(log),
		), nil
	case config.BackendCLI:
		return &CLISynthesizer{ExecutablePath: cfg.CLIPath}, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}

// NewFromConfig builds a Service with the converter and synthesizer named by cfg.
func NewFromConfig(cfg config.Config, log *slog.Logger, extra ...Option) (*Service, error) {
	conv, err := cfg.Converter()
	if err != nil {
		return nil, err
	}

	backend, err := NewSynthesizer(cfg.Synth, log)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithFixLongFinal(cfg.Synth.FixLongFinal),
		WithMicroSplit(cfg.Synth.MicroSplit, cfg.Synth.MicroSplitMS),
		WithChunkChars(cfg.Synth.ChunkChars),
		WithLogger(log),
	}

	return NewService(conv, backend, append(opts, extra...)...), nil
}
