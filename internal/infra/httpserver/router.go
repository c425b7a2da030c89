package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appchecks "github.com/bryanwahyu/safeweb/internal/application/checks"
	"github.com/bryanwahyu/safeweb/internal/application/intake"
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/domain/history"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/prompt"
	"github.com/bryanwahyu/safeweb/internal/middleware"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

// multipartOverhead is allowed on top of the file limit for part headers and boundaries.
const multipartOverhead = 64 << 10

// HistoryView is what the router needs from the history store.
type HistoryView interface {
	Items() []history.Item
	Get(id history.ItemID) (history.Item, error)
	Stats() history.Stats
	Clear(ctx context.Context)
}

// Options wires the router.
type Options struct {
	Checks         *appchecks.Service
	History        HistoryView
	Lang           prompt.Lang
	AllowedOrigins []string
	APIKey         string
	RateLimit      float64
	RateBurst      int
	MaxUploadBytes int64
	HealthCheckers map[string]middleware.HealthChecker
	Log            *logger.Logger
}

// Router serves the JSON API. Analyses and history writes run on a context
// detached from the request: a client that goes away does not abort an
// in-flight analysis or its history append, and no local deadline applies.
type Router struct {
	checks    *appchecks.Service
	history   HistoryView
	lang      prompt.Lang
	maxUpload int64
	log       *logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	lang := opts.Lang
	if lang == "" {
		lang = prompt.LangPT
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = intake.DefaultMaxUploadBytes
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := &Router{
		checks:    opts.Checks,
		history:   opts.History,
		lang:      lang,
		maxUpload: maxUpload,
		log:       log.WithComponent("router"),
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Logging(r.log))
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKey))

		rt.Group(func(checks chi.Router) {
			checks.Use(middleware.RateLimitMiddleware(opts.RateLimit, opts.RateBurst, r.handleRateLimited))
			checks.Post("/checks/url", r.wrap(msgInvalidURL, r.handleCheckURL))
			checks.Post("/checks/text", r.wrap(msgInvalidText, r.handleCheckText))
			checks.Post("/checks/file", r.wrap(msgInvalidFile, r.handleCheckFile))
		})

		rt.Get("/history", r.wrap("", r.handleHistoryList))
		rt.Get("/history/{id}", r.wrap("", r.handleHistoryGet))
		rt.Delete("/history", r.wrap("", r.handleHistoryClear))
		rt.Get("/stats", r.wrap("", r.handleStats))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// wrap turns a returned error into a localized JSON error. invalidKey picks
// the message used for a generic ErrInvalidInput on that route.
func (r *Router) wrap(invalidKey string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.fail(w, req, invalidKey, err)
		}
	}
}

func (r *Router) fail(w http.ResponseWriter, req *http.Request, invalidKey string, err error) {
	status, kind := classify(err)

	key := kind
	switch {
	case errors.Is(err, intake.ErrUnsupportedMediaType):
		key = msgUnsupportedFileType
	case errors.Is(err, intake.ErrFileTooLarge):
		key = msgFileTooLarge
	case kind == kindInvalidInput && invalidKey != "":
		key = invalidKey
	}

	ev := r.log.Debug()
	if status >= http.StatusInternalServerError {
		ev = r.log.Error()
	}
	ev.Err(err).
		Str("path", req.URL.Path).
		Str("kind", kind).
		Str("request_id", chimw.GetReqID(req.Context())).
		Msg("request failed")

	writeJSON(w, status, errorBody{Error: kind, Message: message(r.requestLang(req), key, kind)})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrInvalidInput):
		return http.StatusBadRequest, kindInvalidInput
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, analysis.ErrInvalidResponseShape):
		return http.StatusBadGateway, kindInvalidResponseShape
	case errors.Is(err, analysis.ErrAnalysisUnavailable):
		return http.StatusServiceUnavailable, kindAnalysisUnavailable
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

// requestLang picks the message language: ?lang=, then Accept-Language, then the configured default.
func (r *Router) requestLang(req *http.Request) prompt.Lang {
	if v := req.URL.Query().Get("lang"); v != "" {
		return prompt.ParseLang(v)
	}
	if v := req.Header.Get("Accept-Language"); v != "" {
		return prompt.ParseLang(v)
	}
	return r.lang
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// recordOutcome feeds the analysis counters exposed on /metrics.
func recordOutcome(out appchecks.Outcome, err error) {
	switch {
	case err == nil:
		middleware.RecordAnalysis(out.Result.RiskLevel)
	case errors.Is(err, analysis.ErrAnalysisUnavailable), errors.Is(err, analysis.ErrInvalidResponseShape):
		middleware.IncrementAnalysesFailed()
	}
}

// POST /v1/checks/url
// Body: {"url": "example.com"}
func (r *Router) handleCheckURL(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed body: %v", analysis.ErrInvalidInput, err)
	}

	out, err := r.checks.CheckURL(context.WithoutCancel(req.Context()), body.URL)
	recordOutcome(out, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/checks/text
// Body: {"text": "..."}
func (r *Router) handleCheckText(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed body: %v", analysis.ErrInvalidInput, err)
	}

	out, err := r.checks.CheckText(context.WithoutCancel(req.Context()), body.Text)
	recordOutcome(out, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/checks/file
// multipart/form-data with the upload in field "file"
func (r *Router) handleCheckFile(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+multipartOverhead)
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body over %d bytes", intake.ErrFileTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: malformed multipart body: %v", analysis.ErrInvalidInput, err)
	}
	defer req.MultipartForm.RemoveAll()

	f, hdr, err := req.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: missing file field", analysis.ErrInvalidInput)
	}
	defer f.Close()

	mediaType := hdr.Header.Get("Content-Type")
	var content io.Reader = f
	if mediaType == "" || mediaType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		head = head[:n]
		mediaType = http.DetectContentType(head)
		content = io.MultiReader(bytes.NewReader(head), f)
	}

	out, err := r.checks.CheckFile(context.WithoutCancel(req.Context()), hdr.Filename, mediaType, content)
	recordOutcome(out, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

// handleRateLimited answers requests rejected by the rate limiter.
func (r *Router) handleRateLimited(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorBody{
		Error:   kindRateLimited,
		Message: message(r.requestLang(req), kindRateLimited, kindRateLimited),
	})
}

// GET /v1/history
// GET /v1/history?page=&page_size= returns a PaginatedResult instead of the bare list.
func (r *Router) handleHistoryList(w http.ResponseWriter, req *http.Request) error {
	items := r.history.Items()
	if items == nil {
		items = []history.Item{}
	}

	q := req.URL.Query()
	if !q.Has("page") && !q.Has("page_size") {
		return writeJSON(w, http.StatusOK, items)
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return writeJSON(w, http.StatusOK, history.Paginate(items, page, size))
}

// GET /v1/history/{id}
func (r *Router) handleHistoryGet(w http.ResponseWriter, req *http.Request) error {
	item, err := r.history.Get(history.ItemID(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, item)
}

// DELETE /v1/history
func (r *Router) handleHistoryClear(w http.ResponseWriter, req *http.Request) error {
	r.history.Clear(context.WithoutCancel(req.Context()))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.history.Stats())
}
