package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	appanalysis "github.com/bryanwahyu/safeweb/internal/application/analysis"
	appchecks "github.com/bryanwahyu/safeweb/internal/application/checks"
	apphistory "github.com/bryanwahyu/safeweb/internal/application/history"
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/domain/history"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/fake"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/prompt"
	"github.com/bryanwahyu/safeweb/internal/infra/storage"
	"github.com/bryanwahyu/safeweb/internal/middleware"
)

type testServer struct {
	handler  http.Handler
	analyzer *fake.Analyzer
	store    *apphistory.Store
}

func newTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	analyzer := fake.NewAnalyzer()
	s := newTestServerWith(t, apiKey, analyzer, storage.NewMemorySlot())
	s.analyzer = analyzer
	return s
}

func newTestServerWith(t *testing.T, apiKey string, analyzer analysis.Analyzer, slot history.Slot) *testServer {
	t.Helper()
	store := apphistory.NewStore(slot, nil, nil)
	store.Load(context.Background())

	svc := &appchecks.Service{
		Builder:        appanalysis.NewBuilder(prompt.LangPT),
		Gateway:        appanalysis.NewGateway(analyzer, nil),
		History:        store,
		MaxUploadBytes: 1 << 10,
	}
	h := NewRouter(Options{
		Checks:         svc,
		History:        store,
		APIKey:         apiKey,
		MaxUploadBytes: 1 << 10,
		HealthCheckers: map[string]middleware.HealthChecker{
			"history_persistence": middleware.DegradedChecker{Degraded: store.Degraded},
		},
	})
	return &testServer{handler: h, store: store}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body
}

func TestCheckURL_Success(t *testing.T) {
	s := newTestServer(t, "")
	s.analyzer.Reply = `{"riskLevel":"HIGH","summary":"s","details":["d"],"recommendation":"r"}`

	rec := s.do(jsonRequest(http.MethodPost, "/v1/checks/url", `{"url":"example.com"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out appchecks.Outcome
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.Result.RiskLevel != "HIGH" || out.Item == nil || out.Item.Input != "example.com" {
		t.Errorf("Unexpected outcome %+v", out)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	var st history.Stats
	_ = json.NewDecoder(rec.Body).Decode(&st)
	if st.Total != 1 || st.High != 1 {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestCheckURL_InvalidInputLocalized(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(jsonRequest(http.MethodPost, "/v1/checks/url", `{"url":""}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != kindInvalidInput || body.Message != messages[prompt.LangPT][msgInvalidURL] {
		t.Errorf("Unexpected error body %+v", body)
	}

	req := jsonRequest(http.MethodPost, "/v1/checks/url", `{"url":""}`)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	body = decodeError(t, s.do(req))
	if body.Message != messages[prompt.LangEN][msgInvalidURL] {
		t.Errorf("Expected English message, got %q", body.Message)
	}
}

func TestCheckText_ProviderFailures(t *testing.T) {
	s := newTestServer(t, "")

	s.analyzer.Reply = `{}`
	rec := s.do(jsonRequest(http.MethodPost, "/v1/checks/text", `{"text":"oi"}`))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != kindInvalidResponseShape {
		t.Errorf("Unexpected kind %q", body.Error)
	}

	s.analyzer.Reply = "   "
	rec = s.do(jsonRequest(http.MethodPost, "/v1/checks/text", `{"text":"oi"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != kindAnalysisUnavailable || strings.Contains(body.Message, "analyzer") {
		t.Errorf("Unexpected error body %+v", body)
	}

	if len(s.store.Items()) != 0 {
		t.Error("Failed checks must not be recorded")
	}
}

func multipartFile(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/checks/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCheckFile(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(multipartFile(t, "msg.txt", "", []byte("Sua conta foi bloqueada, clique aqui")))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if req := s.analyzer.Requests()[0]; req.HasAttachment() {
		t.Error("Sniffed text must be sent as text, not as an attachment")
	}

	rec = s.do(multipartFile(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != messages[prompt.LangPT][msgUnsupportedFileType] {
		t.Errorf("Unexpected message %q", body.Message)
	}

	rec = s.do(multipartFile(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 2<<10)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != messages[prompt.LangPT][msgFileTooLarge] {
		t.Errorf("Unexpected message %q", body.Message)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/checks/file", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "text/plain")
	if rec := s.do(req); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-multipart body, got %d", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected empty array, got %s", rec.Body.String())
	}

	s.do(jsonRequest(http.MethodPost, "/v1/checks/url", `{"url":"a.com"}`))
	s.do(jsonRequest(http.MethodPost, "/v1/checks/url", `{"url":"b.com"}`))

	var items []history.Item
	rec = s.do(httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(items) != 2 || items[0].Input != "b.com" {
		t.Fatalf("Expected newest first, got %+v", items)
	}

	var page history.PaginatedResult
	rec = s.do(httptest.NewRequest(http.MethodGet, "/v1/history?page=2&page_size=1", nil))
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("Failed to decode page: %v", err)
	}
	if page.Total != 2 || page.TotalPages != 2 || len(page.Data) != 1 || page.Data[0].Input != "a.com" {
		t.Errorf("Unexpected page %+v", page)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/v1/history/"+string(items[1].ID), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	rec = s.do(httptest.NewRequest(http.MethodGet, "/v1/history/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/v1/history", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if s.store.Stats().Total != 0 {
		t.Error("Expected empty history after DELETE")
	}
}

func TestAuthAndHealthEndpoints(t *testing.T) {
	s := newTestServer(t, "k")

	if rec := s.do(httptest.NewRequest(http.MethodGet, "/v1/stats", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer k")
	if rec := s.do(req); rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		if rec := s.do(httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestMessageFallback(t *testing.T) {
	if got := message("xx", "invalid_input.unknown", kindInvalidInput); got != messages[prompt.LangPT][kindInvalidInput] {
		t.Errorf("Unexpected fallback %q", got)
	}
	for lang, tbl := range messages {
		for key := range messages[prompt.LangPT] {
			if tbl[key] == "" {
				t.Errorf("%s: missing message %q", lang, key)
			}
		}
	}
}

// ctxSlot fails writes whose context is already done.
type ctxSlot struct {
	*storage.MemorySlot
}

func (s ctxSlot) Write(ctx context.Context, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemorySlot.Write(ctx, value)
}

// blockingAnalyzer waits for release before answering and records what its
// context looked like at that point.
type blockingAnalyzer struct {
	started     chan struct{}
	release     chan struct{}
	hadDeadline bool
	ctxErr      error
}

func (a *blockingAnalyzer) Generate(ctx context.Context, req analysis.Request) (string, error) {
	_, a.hadDeadline = ctx.Deadline()
	close(a.started)
	<-a.release
	a.ctxErr = ctx.Err()
	return `{"riskLevel":"LOW","summary":"s","details":[],"recommendation":"r"}`, nil
}

func TestCheckURL_ClientGoneMidAnalysis(t *testing.T) {
	analyzer := &blockingAnalyzer{started: make(chan struct{}), release: make(chan struct{})}
	s := newTestServerWith(t, "", analyzer, ctxSlot{storage.NewMemorySlot()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := jsonRequest(http.MethodPost, "/v1/checks/url", `{"url":"example.com"}`).WithContext(ctx)

	go func() {
		<-analyzer.started
		cancel()
		close(analyzer.release)
	}()
	rec := s.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if analyzer.hadDeadline {
		t.Error("Analysis must not run under a local deadline")
	}
	if analyzer.ctxErr != nil {
		t.Errorf("Analysis context was cancelled with the request: %v", analyzer.ctxErr)
	}
	if items := s.store.Items(); len(items) != 1 || items[0].Input != "example.com" {
		t.Errorf("Expected the analysis to be recorded, got %+v", items)
	}
	if s.store.Degraded() {
		t.Error("History write must not use the cancelled request context")
	}
}

func TestHistoryClear_CancelledRequest(t *testing.T) {
	s := newTestServerWith(t, "", fake.NewAnalyzer(), ctxSlot{storage.NewMemorySlot()})
	s.do(jsonRequest(http.MethodPost, "/v1/checks/text", `{"text":"oi"}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := s.do(httptest.NewRequest(http.MethodDelete, "/v1/history", nil).WithContext(ctx))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	if len(s.store.Items()) != 0 || s.store.Degraded() {
		t.Errorf("Expected a persisted clear, degraded=%v", s.store.Degraded())
	}
}

func TestChecks_RateLimitedLocalized(t *testing.T) {
	store := apphistory.NewStore(storage.NewMemorySlot(), nil, nil)
	h := NewRouter(Options{
		Checks: &appchecks.Service{
			Builder: appanalysis.NewBuilder(prompt.LangPT),
			Gateway: appanalysis.NewGateway(fake.NewAnalyzer(), nil),
			History: store,
		},
		History:   store,
		RateLimit: 1,
		RateBurst: 1,
	})

	send := func(lang string) *httptest.ResponseRecorder {
		req := jsonRequest(http.MethodPost, "/v1/checks/text", `{"text":"oi"}`)
		req.RemoteAddr = "192.0.2.7:5000"
		req.Header.Set("Accept-Language", lang)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("pt-BR"); rec.Code != http.StatusOK {
		t.Fatalf("Expected first check to pass, got %d", rec.Code)
	}
	rec := send("en")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON body, got %q", ct)
	}
	body := decodeError(t, rec)
	if body.Error != kindRateLimited || body.Message != messages[prompt.LangEN][kindRateLimited] {
		t.Errorf("Unexpected error body %+v", body)
	}
}
