package synth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the synthesis path on the remote server.
	DefaultEndpoint = "/bangtsam"
	// DefaultTimeout bounds one remote synthesis call.
	DefaultTimeout = 45 * time.Second

	userAgent = "TaiwaneseVoiceChat/1.0"
	accept    = "audio/wav, audio/*, */*"

	// Bodies larger than this are taken to be audio even without a known header.
	minAudioBytes = 1000
	// maxResponseBytes caps what is read from the remote server.
	maxResponseBytes = 64 << 20
)

// RemoteSynthesizer calls an HTTP synthesis server with
// GET <base><endpoint>?taibun=<text>.
type RemoteSynthesizer struct {
	baseURL  string
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// RemoteOption configures a RemoteSynthesizer.
type RemoteOption func(*RemoteSynthesizer)

// WithEndpoint overrides the synthesis path.
func WithEndpoint(p string) RemoteOption {
	return func(r *RemoteSynthesizer) {
		if p != "" {
			r.endpoint = p
		}
	}
}

// WithTimeout sets the client timeout. Zero keeps the default.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *RemoteSynthesizer) {
		if d > 0 {
			r.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteSynthesizer) {
		if c != nil {
			r.client = c
		}
	}
}

// WithRemoteLogger sets the logger used for per-call diagnostics.
func WithRemoteLogger(l *slog.Logger) RemoteOption {
	return func(r *RemoteSynthesizer) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRemote(baseURL string, opts ...RemoteOption) *RemoteSynthesizer {
	r := &RemoteSynthesizer{
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// URL returns the request URL for text.
func (r *RemoteSynthesizer) URL(text string) string {
	return r.baseURL + r.endpoint + "?" + url.Values{"taibun": {text}}.Encode()
}

// BaseURL returns the server address requests are sent to.
func (r *RemoteSynthesizer) BaseURL() string { return r.baseURL }

func (r *RemoteSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(text), nil)
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}

	r.log.DebugContext(ctx, "remote synthesis",
		slog.String("text", text),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.String("content_type", resp.Header.Get("Content-Type")),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: excerpt(body)}
	}
	if !isAudio(resp.Header.Get("Content-Type"), body) {
		return nil, fmt.Errorf("%w: %s", ErrNotAudio, excerpt(body))
	}

	return body, nil
}

// Probe checks that the server answers HTTP at all. Any status counts.
func (r *RemoteSynthesizer) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", r.baseURL, err)
	}
	_ = resp.Body.Close()
	return nil
}

var audioMagic = [][]byte{
	[]byte("RIFF"),
	[]byte("ID3"),
	{0xff, 0xfb},
}

func isAudio(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "audio") {
		return true
	}
	if len(body) > minAudioBytes {
		return true
	}
	for _, m := range audioMagic {
		if bytes.HasPrefix(body, m) {
			return true
		}
	}
	return false
}
