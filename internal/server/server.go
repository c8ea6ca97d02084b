package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-taibun/internal/config"
	"github.com/example/go-taibun/internal/synth"
	"github.com/example/go-taibun/internal/text"
	"github.com/google/uuid"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Speaker turns Tâi-lô text into speech. *synth.Service implements it.
type Speaker interface {
	Speak(ctx context.Context, romanization string, opts ...text.ConverterOption) (synth.Result, error)
}

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-Id"

// maxBodyBytes caps any JSON request body.
const maxBodyBytes = 1 << 20

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	maxBatchItems  int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   4096,
		maxBatchItems:  256,
		workers:        2,
		requestTimeout: 60 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes per input.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithMaxBatchItems sets the maximum number of inputs in POST /convert/batch.
func WithMaxBatchItems(n int) Option {
	return func(o *options) { o.maxBatchItems = n }
}

// WithWorkers sets the maximum number of concurrent synthesis calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request synthesis deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	conv    text.Converter
	speaker Speaker
	opts    options
	sem     chan struct{} // semaphore for worker pool
	log     *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /convert,
// /convert/batch and /tts. A nil speaker disables /tts.
func NewHandler(conv text.Converter, speaker Speaker, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}

	h := &handler{
		conv:    conv,
		speaker: speaker,
		opts:    opts,
		log:     opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/convert", h.handleConvert)
	mux.HandleFunc("/convert/batch", h.handleConvertBatch)
	mux.HandleFunc("/tts", h.handleTTS)
	return withRequestID(mux)
}

type requestIDKey struct{}

// withRequestID tags every request with an id, taken from the client when present.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

// conversionFields are the per-request overrides shared by every endpoint.
type conversionFields struct {
	Sandhi  *bool  `json:"sandhi,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// overrides returns converter options for the fields the client set.
func (f conversionFields) overrides() ([]text.ConverterOption, error) {
	var opts []text.ConverterOption
	if f.Sandhi != nil {
		opts = append(opts, text.WithSandhi(*f.Sandhi))
	}
	if f.Variant != "" {
		v, err := text.ParseVariant(f.Variant)
		if err != nil {
			return nil, err
		}
		opts = append(opts, text.WithVariant(v))
	}
	return opts, nil
}

func (h *handler) converterFor(f conversionFields) (text.Converter, error) {
	opts, err := f.overrides()
	if err != nil {
		return text.Converter{}, err
	}
	if len(opts) == 0 {
		return h.conv, nil
	}
	base := []text.ConverterOption{text.WithSandhi(h.conv.Sandhi()), text.WithVariant(h.conv.Variant())}
	return text.NewConverter(append(base, opts...)...), nil
}

type convertRequest struct {
	Text string `json:"text"`
	conversionFields
}

type convertResponse struct {
	Romanization string       `json:"romanization"`
	Numeric      string       `json:"numeric"`
	Sandhi       bool         `json:"sandhi"`
	Variant      text.Variant `json:"variant"`
}

func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !h.checkText(w, req.Text) {
		return
	}

	conv, err := h.converterFor(req.conversionFields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	numeric := conv.Convert(req.Text)

	h.log.DebugContext(r.Context(), "converted",
		slog.String("request_id", requestID(r.Context())),
		slog.Int("text_len", len(req.Text)),
		slog.Bool("sandhi", conv.Sandhi()),
		slog.String("variant", conv.Variant().String()),
	)

	writeJSON(w, http.StatusOK, convertResponse{
		Romanization: req.Text,
		Numeric:      numeric,
		Sandhi:       conv.Sandhi(),
		Variant:      conv.Variant(),
	})
}

type batchRequest struct {
	Texts []string `json:"texts"`
	conversionFields
}

type batchResponse struct {
	Numeric []string `json:"numeric"`
}

func (h *handler) handleConvertBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts field is required")
		return
	}
	if h.opts.maxBatchItems > 0 && len(req.Texts) > h.opts.maxBatchItems {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch exceeds maximum of %d texts", h.opts.maxBatchItems))
		return
	}
	for i, t := range req.Texts {
		if len(t) > h.opts.maxTextBytes {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("texts[%d] exceeds maximum size of %d bytes", i, h.opts.maxTextBytes))
			return
		}
	}

	conv, err := h.converterFor(req.conversionFields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Numeric: conv.ConvertBatch(req.Texts)})
}

type ttsRequest struct {
	Text string `json:"text"`
	conversionFields
}

func (h *handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	if h.speaker == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis is not configured")
		return
	}

	var req ttsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !h.checkText(w, req.Text) {
		return
	}

	overrides, err := req.overrides()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Acquire a worker slot; honour context cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	id := requestID(r.Context())
	start := time.Now()
	res, err := h.speaker.Speak(ctx, req.Text, overrides...)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			h.log.WarnContext(r.Context(), "synthesis timed out",
				slog.String("request_id", id),
				slog.Int("text_len", len(req.Text)),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusGatewayTimeout, "synthesis timed out")
		case errors.Is(err, synth.ErrEmptyText):
			writeError(w, http.StatusBadRequest, "text has no syllables to synthesize")
		default:
			h.log.ErrorContext(r.Context(), "synthesis failed",
				slog.String("request_id", id),
				slog.Int("text_len", len(req.Text)),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	h.log.InfoContext(r.Context(), "synthesis complete",
		slog.String("request_id", id),
		slog.Int("text_len", len(req.Text)),
		slog.String("numeric", res.Numeric),
		slog.Int64("duration_ms", durationMS),
		slog.Int("wav_bytes", len(res.WAV)),
	)

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.WAV)
}

// decodeBody enforces POST and decodes a JSON body into v. It writes the
// error response itself and reports whether the caller should continue.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}

	if r.Body == nil || r.Body == http.NoBody {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (h *handler) checkText(w http.ResponseWriter, s string) bool {
	if strings.TrimSpace(s) == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return false
	}
	if len(s) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	svc             *synth.Service
	shutdownTimeout time.Duration
	log             *slog.Logger
}

// New returns a Server for cfg. A nil svc is built from cfg on Start.
func New(cfg config.Config, svc *synth.Service) *Server {
	shutdown := 30 * time.Second
	if cfg.Server.ShutdownTimeout > 0 {
		shutdown = time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	}
	return &Server{
		cfg:             cfg,
		svc:             svc,
		shutdownTimeout: shutdown,
		log:             slog.Default(),
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	if l != nil {
		s.log = l
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	conv, err := s.cfg.Converter()
	if err != nil {
		return err
	}

	svc := s.svc
	if svc == nil {
		svc, err = synth.NewFromConfig(s.cfg, s.log)
		if err != nil {
			return fmt.Errorf("initialize synthesis: %w", err)
		}
	}

	h := NewHandler(conv, svc,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithLogger(s.log),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.log.Info("listening", slog.String("addr", s.cfg.Server.ListenAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks GET /health on addr.
func ProbeHTTP(addr string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
