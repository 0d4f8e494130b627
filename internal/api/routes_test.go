package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mgpai22/recut/internal/logging"
)

const sampleSRT = `1
00:00:01,200 --> 00:00:03,800
<i>Hello</i> there

2
00:00:20,000 --> 00:00:24,000
Second caption

3
not a timecode
`

func testConfig() ServerConfig {
	return ServerConfig{
		MaxBodyBytes: 1 << 20,
		Logger:       logging.Nop(),
		StartTime:    time.Now().Add(-90 * time.Second),
		Version:      "test",
	}
}

func serve(t *testing.T, cfg ServerConfig, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	NewRouter(cfg).ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	rr := serve(t, testConfig(), http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var resp HealthResponse
	decodeInto(t, rr, &resp)
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("unexpected health response: %+v", resp)
	}
	if resp.UptimeS < 90 {
		t.Errorf("expected uptime >= 90s, got %d", resp.UptimeS)
	}
}

func TestExtract(t *testing.T) {
	rr := serve(t, testConfig(), http.MethodPost, "/v1/captions/extract", sampleSRT)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp ExtractResponse
	decodeInto(t, rr, &resp)
	want := []CaptionJSON{
		{Start: 2, End: 3, Text: "Hello there"},
		{Start: 20, End: 24, Text: "Second caption"},
	}
	if len(resp.Captions) != len(want) {
		t.Fatalf("expected %d captions, got %+v", len(want), resp.Captions)
	}
	for i := range want {
		if resp.Captions[i] != want[i] {
			t.Errorf("caption %d = %+v, want %+v", i, resp.Captions[i], want[i])
		}
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Line != 9 {
		t.Errorf("expected one warning at line 9, got %+v", resp.Warnings)
	}
}

func TestExtractEmptyBody(t *testing.T) {
	rr := serve(t, testConfig(), http.MethodPost, "/v1/captions/extract", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"captions":[]`) {
		t.Errorf("expected empty caption array, got %s", rr.Body.String())
	}
}

func TestCombine(t *testing.T) {
	body := `{"ranges":[{"start":7,"end":8},{"start":0,"end":3},{"start":2,"end":5},{"start":5,"end":6}]}`
	rr := serve(t, testConfig(), http.MethodPost, "/v1/ranges/combine", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp CombineResponse
	decodeInto(t, rr, &resp)
	want := []RangeJSON{{Start: 0, End: 6}, {Start: 7, End: 8}}
	if len(resp.Ranges) != len(want) {
		t.Fatalf("expected %v, got %v", want, resp.Ranges)
	}
	for i := range want {
		if resp.Ranges[i] != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, resp.Ranges[i], want[i])
		}
	}
}

func TestReconcile(t *testing.T) {
	body := `{
		"captions": [
			{"start": 0, "end": 2, "text": "A"},
			{"start": 4, "end": 6, "text": "B"},
			{"start": 10, "end": 12, "text": "C"}
		],
		"removed": [{"start": 3, "end": 5}, {"start": 7, "end": 9}]
	}`
	rr := serve(t, testConfig(), http.MethodPost, "/v1/captions/reconcile", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp ReconcileResponse
	decodeInto(t, rr, &resp)
	want := []CaptionJSON{
		{Start: 0, End: 2, Text: "A"},
		{Start: 6, End: 8, Text: "C"},
	}
	if len(resp.Captions) != len(want) {
		t.Fatalf("expected %v, got %v", want, resp.Captions)
	}
	for i := range want {
		if resp.Captions[i] != want[i] {
			t.Errorf("caption %d = %+v, want %+v", i, resp.Captions[i], want[i])
		}
	}
}

func TestExport(t *testing.T) {
	body := `{"captions":[{"start":1.5,"end":3,"text":"Hi"}]}`

	rr := serve(t, testConfig(), http.MethodPost, "/v1/captions/export?format=vtt", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vtt") {
		t.Errorf("unexpected content type %q", ct)
	}
	want := "WEBVTT\n\n1\n00:00:01.500 --> 00:00:03.000\nHi\n\n"
	if rr.Body.String() != want {
		t.Errorf("got %q want %q", rr.Body.String(), want)
	}

	rr = serve(t, testConfig(), http.MethodPost, "/v1/captions/export", body)
	if !strings.HasPrefix(rr.Body.String(), "1\n00:00:01,500 --> 00:00:03,000\n") {
		t.Errorf("expected default SRT output, got %q", rr.Body.String())
	}
}

func TestErrors(t *testing.T) {
	small := testConfig()
	small.MaxBodyBytes = 16

	tests := []struct {
		name     string
		cfg      ServerConfig
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed json", testConfig(), "/v1/ranges/combine", `{"ranges":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", testConfig(), "/v1/ranges/combine", `{"spans":[]}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"inverted range", testConfig(), "/v1/ranges/combine", `{"ranges":[{"start":5,"end":1}]}`, http.StatusBadRequest, "INVALID_RANGE"},
		{"negative removed", testConfig(), "/v1/captions/reconcile", `{"captions":[],"removed":[{"start":-1,"end":1}]}`, http.StatusBadRequest, "INVALID_RANGE"},
		{"caption past max duration", testConfig(), "/v1/captions/reconcile", `{"captions":[{"start":1e10,"end":1e10,"text":"late"}],"removed":[]}`, http.StatusBadRequest, "INVALID_RANGE"},
		{"removed past max duration", testConfig(), "/v1/captions/reconcile", `{"captions":[],"removed":[{"start":0,"end":1e10}]}`, http.StatusBadRequest, "INVALID_RANGE"},
		{"combine past max duration", testConfig(), "/v1/ranges/combine", `{"ranges":[{"start":0,"end":1e10}]}`, http.StatusBadRequest, "INVALID_RANGE"},
		{"export past max duration", testConfig(), "/v1/captions/export", `{"captions":[{"start":-1e10,"end":1,"text":"x"}]}`, http.StatusBadRequest, "INVALID_RANGE"},
		{"bad format", testConfig(), "/v1/captions/export?format=txt", `{"captions":[]}`, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{"json too large", small, "/v1/ranges/combine", `{"ranges":[{"start":0,"end":1}]}`, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
		{"srt too large", small, "/v1/captions/extract", sampleSRT, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, tt.cfg, http.MethodPost, tt.target, tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			var resp ErrorResponse
			decodeInto(t, rr, &resp)
			if resp.Code != tt.wantErr {
				t.Errorf("error code = %q, want %q", resp.Code, tt.wantErr)
			}
			if resp.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestOutOfRangeSecondsMessage(t *testing.T) {
	rr := serve(t, testConfig(), http.MethodPost, "/v1/ranges/combine", `{"ranges":[{"start":0,"end":1e10}]}`)
	var resp ErrorResponse
	decodeInto(t, rr, &resp)
	if !strings.Contains(resp.Error, "range 0: time out of range") {
		t.Errorf("unexpected error message %q", resp.Error)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RequestIDMiddleware()(RecoveryMiddleware(logging.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	var resp ErrorResponse
	decodeInto(t, rr, &resp)
	if resp.Code != "INTERNAL_ERROR" {
		t.Errorf("unexpected error code %q", resp.Code)
	}
}

func TestLoggingMiddlewareRecordsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := testConfig()
	cfg.Logger = logging.NewWithCore(core)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	NewRouter(cfg).ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-42" || fields["path"] != "/health" {
		t.Errorf("unexpected log fields: %v", fields)
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("expected status 200, got %v (%T)", fields["status"], fields["status"])
	}
}

func TestPanickingRequestIsAccessLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := testConfig()
	cfg.Logger = logging.NewWithCore(core)

	router := NewRouter(cfg)
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if n := logs.FilterMessage("panic recovered").Len(); n != 1 {
		t.Errorf("expected 1 panic log entry, got %d", n)
	}
	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 access log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("access log level = %v, want error", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusInternalServerError) || fields["path"] != "/boom" {
		t.Errorf("unexpected log fields: %v", fields)
	}
	if fields["bytes"] != int64(rr.Body.Len()) {
		t.Errorf("bytes = %v, want %d", fields["bytes"], rr.Body.Len())
	}
}

func TestRecoveryKeepsStartedResponse(t *testing.T) {
	handler := RecoveryMiddleware(logging.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("partial"))
			panic("late")
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusAccepted || rr.Body.String() != "partial" {
		t.Errorf("got %d %q, want the handler's own response", rr.Code, rr.Body.String())
	}
}
