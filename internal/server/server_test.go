package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/go-taibun/internal/server"
	"github.com/example/go-taibun/internal/synth"
	"github.com/example/go-taibun/internal/text"
)

// stubSpeaker implements server.Speaker for tests.
type stubSpeaker struct {
	wav []byte
	err error

	gotText string
	gotConv text.Converter
}

func (s *stubSpeaker) Speak(_ context.Context, romanization string, opts ...text.ConverterOption) (synth.Result, error) {
	s.gotText = romanization
	s.gotConv = text.NewConverter(opts...)
	if s.err != nil {
		return synth.Result{}, s.err
	}
	return synth.Result{Romanization: romanization, Numeric: text.ToNumericTone(romanization), WAV: s.wav}, nil
}

func newTestHandler(sp server.Speaker, opts ...server.Option) http.Handler {
	return server.NewHandler(text.NewConverter(), sp, opts...)
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := newTestHandler(&stubSpeaker{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	err := json.NewDecoder(rec.Body).Decode(&body)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}

	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	h := newTestHandler(&stubSpeaker{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get(server.RequestIDHeader) == "" {
		t.Error("want generated request id header")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, "abc-123")
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(server.RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q; want client id echoed", got)
	}
}

// ---------------------------------------------------------------------------
// POST /convert
// ---------------------------------------------------------------------------

type convertBody struct {
	Romanization string `json:"romanization"`
	Numeric      string `json:"numeric"`
	Sandhi       bool   `json:"sandhi"`
	Variant      string `json:"variant"`
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantNumeric string
		wantVariant string
	}{
		{
			name:        "server defaults",
			body:        `{"text":"guá sī Tâi-oân-lâng。"}`,
			wantNumeric: "gua2 si7 Tai5-oan5-lang5",
			wantVariant: "chang",
		},
		{
			name:        "sandhi chang",
			body:        `{"text":"guá sī Tâi-oân-lâng。","sandhi":true}`,
			wantNumeric: "gua1 si3 Tai7-oan7-lang5",
			wantVariant: "chang",
		},
		{
			name:        "sandhi chuan",
			body:        `{"text":"guá sī Tâi-oân-lâng。","sandhi":true,"variant":"chuan"}`,
			wantNumeric: "gua1 si3 Tai3-oan3-lang5",
			wantVariant: "chuan",
		},
	}

	h := newTestHandler(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, "/convert", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("want 200, got %d (body: %s)", rec.Code, rec.Body.String())
			}

			var got convertBody
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if got.Numeric != tt.wantNumeric {
				t.Errorf("numeric = %q; want %q", got.Numeric, tt.wantNumeric)
			}
			if got.Variant != tt.wantVariant {
				t.Errorf("variant = %q; want %q", got.Variant, tt.wantVariant)
			}
			if got.Romanization != "guá sī Tâi-oân-lâng。" {
				t.Errorf("romanization = %q; want input echoed", got.Romanization)
			}
		})
	}
}

func TestConvert_UsesHandlerDefaults(t *testing.T) {
	conv := text.NewConverter(text.WithSandhi(true), text.WithVariant(text.VariantChuan))
	h := server.NewHandler(conv, nil)

	rec := post(h, "/convert", `{"text":"Tâi-oân"}`)

	var got convertBody
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Numeric != "Tai3-oan5" || !got.Sandhi || got.Variant != "chuan" {
		t.Errorf("got %+v; want chuan sandhi from handler defaults", got)
	}

	// An explicit false turns sandhi off for this request only.
	rec = post(h, "/convert", `{"text":"Tâi-oân","sandhi":false}`)
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Numeric != "Tai5-oan5" || got.Sandhi {
		t.Errorf("got %+v; want no sandhi", got)
	}
}

func TestConvert_BadRequests(t *testing.T) {
	h := newTestHandler(nil, server.WithMaxTextBytes(16))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{"text":`, http.StatusBadRequest},
		{"empty text", `{"text":""}`, http.StatusBadRequest},
		{"blank text", `{"text":"   "}`, http.StatusBadRequest},
		{"unknown variant", `{"text":"ka","variant":"hakka"}`, http.StatusBadRequest},
		{"too long", `{"text":"aaaaaaaaaaaaaaaaa"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, "/convert", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d", tt.want, rec.Code)
			}

			var errBody map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if errBody["error"] == "" {
				t.Error("want non-empty error field")
			}
		})
	}
}

func TestConvert_RejectsGET(t *testing.T) {
	h := newTestHandler(nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/convert", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /convert/batch
// ---------------------------------------------------------------------------

func TestConvertBatch_PreservesOrder(t *testing.T) {
	h := newTestHandler(nil)

	rec := post(h, "/convert/batch", `{"texts":["lí hó","--lah","bak","ńg"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var got struct {
		Numeric []string `json:"numeric"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	want := []string{"li2 ho2", "lah0", "bak4", "ng2"}
	if len(got.Numeric) != len(want) {
		t.Fatalf("numeric = %q; want %q", got.Numeric, want)
	}
	for i := range want {
		if got.Numeric[i] != want[i] {
			t.Errorf("numeric[%d] = %q; want %q", i, got.Numeric[i], want[i])
		}
	}
}

func TestConvertBatch_Limits(t *testing.T) {
	h := newTestHandler(nil, server.WithMaxBatchItems(2), server.WithMaxTextBytes(4))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty list", `{"texts":[]}`, http.StatusBadRequest},
		{"too many", `{"texts":["a","b","c"]}`, http.StatusRequestEntityTooLarge},
		{"item too long", `{"texts":["a","abcde"]}`, http.StatusRequestEntityTooLarge},
		{"bad variant", `{"texts":["a"],"variant":"x"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := post(h, "/convert/batch", tt.body); rec.Code != tt.want {
				t.Errorf("want %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// POST /tts
// ---------------------------------------------------------------------------

func TestTTS_ReturnsMissingBodyAs400(t *testing.T) {
	h := newTestHandler(&stubSpeaker{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tts", nil)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}

	var body map[string]string
	err := json.NewDecoder(rec.Body).Decode(&body)
	if err != nil {
		t.Fatalf("decode error body: %v", err)
	}

	if body["error"] == "" {
		t.Error("want non-empty error field")
	}
}

func TestTTS_ReturnsEmptyTextAs400(t *testing.T) {
	h := newTestHandler(&stubSpeaker{})

	if rec := post(h, "/tts", `{"text":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestTTS_ReturnsWAVBytesOnSuccess(t *testing.T) {
	fakeWAV := []byte("RIFF\x00\x00\x00\x00WAVEfmt ")
	sp := &stubSpeaker{wav: fakeWAV}
	h := newTestHandler(sp)

	rec := post(h, "/tts", `{"text":"lí hó","sandhi":true,"variant":"chuan"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("want Content-Type audio/wav, got %q", ct)
	}

	if !bytes.Equal(rec.Body.Bytes(), fakeWAV) {
		t.Errorf("want WAV bytes back, got %d bytes", rec.Body.Len())
	}

	if sp.gotText != "lí hó" {
		t.Errorf("speaker got %q; want request text", sp.gotText)
	}
	if !sp.gotConv.Sandhi() || sp.gotConv.Variant() != text.VariantChuan {
		t.Error("request overrides not passed to speaker")
	}
}

func TestTTS_SpeakerErrorReturns502(t *testing.T) {
	h := newTestHandler(&stubSpeaker{err: errSynthFailed})

	rec := post(h, "/tts", `{"text":"lí hó"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", rec.Code)
	}

	var errBody map[string]string
	err := json.NewDecoder(rec.Body).Decode(&errBody)
	if err != nil {
		t.Fatalf("decode error body: %v", err)
	}

	if errBody["error"] == "" {
		t.Error("want non-empty error field")
	}
}

func TestTTS_NothingToSpeakReturns400(t *testing.T) {
	h := newTestHandler(&stubSpeaker{err: synth.ErrEmptyText})

	if rec := post(h, "/tts", `{"text":"。"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestTTS_WithoutSpeakerReturns503(t *testing.T) {
	h := newTestHandler(nil)

	if rec := post(h, "/tts", `{"text":"lí hó"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rec.Code)
	}
}

var errSynthFailed = &synthError{"synthesis failed"}

type synthError struct{ msg string }

func (e *synthError) Error() string { return e.msg }
