package synth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/go-taibun/internal/audio"
	"github.com/example/go-taibun/internal/text"
)

// joinFadeMS smooths the edges of micro-split parts before they are joined.
const joinFadeMS = 5

// Result is the outcome of one Speak call.
type Result struct {
	Romanization string
	Numeric      string
	WAV          []byte
}

// Service converts Tâi-lô text to numeric tones and synthesizes it.
type Service struct {
	conv         text.Converter
	synth        Synthesizer
	fixLongFinal bool
	microSplit   bool
	microSplitMS int
	chunkChars   int
	hooks        []audio.Hook
	log          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFixLongFinal toggles the te5 to te7 rewrite of the phrase-final syllable.
func WithFixLongFinal(on bool) Option {
	return func(s *Service) { s.fixLongFinal = on }
}

// WithMicroSplit synthesizes a short phrase's final te5/te7 on its own and
// joins the parts with gapMS of silence.
func WithMicroSplit(on bool, gapMS int) Option {
	return func(s *Service) {
		s.microSplit = on
		s.microSplitMS = gapMS
	}
}

// WithChunkChars splits input into sentence chunks of at most n bytes.
// Zero disables chunking.
func WithChunkChars(n int) Option {
	return func(s *Service) { s.chunkChars = n }
}

// WithHooks post-processes the final clip.
func WithHooks(hooks ...audio.Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(conv text.Converter, synth Synthesizer, opts ...Option) *Service {
	s := &Service{
		conv:         conv,
		synth:        synth,
		fixLongFinal: true,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Converter returns the service's default converter.
func (s *Service) Converter() text.Converter { return s.conv }

// Speak converts romanization and synthesizes it. Converter options override
// the service defaults for this call only.
func (s *Service) Speak(ctx context.Context, romanization string, opts ...text.ConverterOption) (Result, error) {
	conv := s.conv
	if len(opts) > 0 {
		base := []text.ConverterOption{text.WithSandhi(s.conv.Sandhi()), text.WithVariant(s.conv.Variant())}
		conv = text.NewConverter(append(base, opts...)...)
	}

	chunks := []string{romanization}
	if s.chunkChars > 0 {
		chunks = text.ChunkBySentence(romanization, s.chunkChars)
	}

	res, err := s.render(ctx, conv.ConvertBatch(chunks))
	if err != nil {
		return Result{}, err
	}
	res.Romanization = romanization
	return res, nil
}

// SpeakNumeric synthesizes text that is already in numeric-tone form.
func (s *Service) SpeakNumeric(ctx context.Context, numeric string) (Result, error) {
	return s.render(ctx, []string{numeric})
}

// render synthesizes each numeric chunk, joins the audio and applies hooks.
func (s *Service) render(ctx context.Context, numerics []string) (Result, error) {
	var spoken []string
	var payloads [][]byte
	for i, numeric := range numerics {
		numeric = PrepareText(numeric, s.fixLongFinal)
		if numeric == "" {
			continue
		}

		start := time.Now()
		wav, err := s.synthesize(ctx, numeric)
		if err != nil {
			return Result{}, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(numerics), err)
		}
		s.log.DebugContext(ctx, "chunk synthesized",
			slog.Int("chunk", i+1),
			slog.Int("chunks", len(numerics)),
			slog.String("numeric", numeric),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)

		spoken = append(spoken, numeric)
		payloads = append(payloads, wav)
	}

	if len(payloads) == 0 {
		return Result{}, ErrEmptyText
	}

	wav, err := audio.ConcatWAV(payloads, 0)
	if err != nil {
		return Result{}, fmt.Errorf("join chunks: %w", err)
	}

	if len(s.hooks) > 0 {
		wav, err = s.postProcess(wav)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{Numeric: strings.Join(spoken, " "), WAV: wav}, nil
}

// synthesize sends one prepared phrase to the backend, micro-splitting it
// when enabled.
func (s *Service) synthesize(ctx context.Context, prepared string) ([]byte, error) {
	if s.microSplit {
		if prefix, final, ok := splitFinal(prepared); ok {
			wav, err := s.speakSplit(ctx, prefix, final)
			if err == nil {
				return wav, nil
			}
			if ctx.Err() != nil {
				return nil, err
			}
			s.log.WarnContext(ctx, "micro-split synthesis failed, retrying as one phrase",
				slog.String("numeric", prepared),
				slog.String("error", err.Error()),
			)
		}
	}

	return s.synth.Synthesize(ctx, prepared)
}

func (s *Service) speakSplit(ctx context.Context, prefix, final string) ([]byte, error) {
	parts := make([]string, 0, 2)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, final)

	clips := make([]audio.Clip, 0, len(parts)*2-1)
	for i, p := range parts {
		wav, err := s.synth.Synthesize(ctx, p)
		if err != nil {
			return nil, err
		}
		clip, err := audio.Decode(wav)
		if err != nil {
			return nil, fmt.Errorf("decode part %q: %w", p, err)
		}
		if i > 0 && s.microSplitMS > 0 {
			clips = append(clips, audio.Silence(clip.SampleRate, s.microSplitMS))
		}
		clips = append(clips, audio.ApplyHooks(clip, audio.FadeHook(joinFadeMS)))
	}

	joined, err := audio.Concat(clips...)
	if err != nil {
		return nil, err
	}
	return audio.EncodeWAV(joined)
}

func (s *Service) postProcess(wav []byte) ([]byte, error) {
	clip, err := audio.Decode(wav)
	if err != nil {
		return nil, fmt.Errorf("decode for post-processing: %w", err)
	}
	out, err := audio.EncodeWAV(audio.ApplyHooks(clip, s.hooks...))
	if err != nil {
		return nil, fmt.Errorf("encode post-processed audio: %w", err)
	}
	return out, nil
}
