// Package chi is the HTTP transport: chi handlers over the generation service.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/barcodex/internal/domain"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/logger"
	"github.com/kailas-cloud/barcodex/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/barcodex/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the barcode HTTP API.
type Server struct {
	generator     Generator
	previewer     render.Previewer
	health        HealthChecker
	defaults      render.Options
	maxCodes      int
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	generator Generator,
	previewer render.Previewer,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		generator:    generator,
		previewer:    previewer,
		health:       health,
		defaults:     render.DefaultOptions(),
		maxCodes:     generate.DefaultMaxCodes,
		maxBodyBytes: 1 << 20,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		batchExhaustedHandler,
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidCode, http.StatusBadRequest),
		sentinelHandler(domain.ErrUnsupportedSymbology, http.StatusBadRequest),
		sentinelHandler(domain.ErrRender, http.StatusUnprocessableEntity),
	}
	return s
}

// WithDefaults sets the render options applied when a request omits them.
func (s *Server) WithDefaults(opts render.Options) *Server {
	s.defaults = opts.WithDefaults()
	return s
}

// WithLimits configures the per-request code limit and the body size limit.
func (s *Server) WithLimits(maxCodes int, maxBodyBytes int64) *Server {
	if maxCodes > 0 {
		s.maxCodes = maxCodes
	}
	if maxBodyBytes > 0 {
		s.maxBodyBytes = maxBodyBytes
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.Generate)
		r.Post("/preview", s.PreviewPost)
		r.Get("/preview", s.PreviewGet)
		r.Get("/symbologies", s.ListSymbologies)
	})
}

// Generate handles POST /api/generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.BarcodeNumbers) > s.maxCodes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("barcodeNumbers must contain at most %d entries", s.maxCodes))
		return
	}

	opts, err := options(s.defaults, req.HeightMM, req.WidthMM, req.FileFormat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts.FilenamePrefix = req.FilenamePrefix

	archive, err := s.generator.Generate(r.Context(), generate.BatchRequest{
		Codes:   req.BarcodeNumbers,
		Options: opts,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("Archive generated",
		zap.Int("succeeded", archive.Report.SuccessCount),
		zap.Int("failed", archive.Report.ErrorCount),
		zap.Int("bytes", len(archive.Data)),
	)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename="+archive.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Data)
}

// PreviewPost handles POST /api/preview.
func (s *Server) PreviewPost(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.preview(w, r, req)
}

// PreviewGet handles GET /api/preview.
func (s *Server) PreviewGet(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "code", q, &req.Code); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter code")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "heightMM", q, &req.HeightMM); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter heightMM")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "widthMM", q, &req.WidthMM); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter widthMM")
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "fileFormat", q, &format); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter fileFormat")
		return
	}
	if format != nil {
		req.FileFormat = *format
	}
	if err := validateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.preview(w, r, req)
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request, req PreviewRequest) {
	opts, err := options(s.defaults, req.HeightMM, req.WidthMM, req.FileFormat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.previewer.Preview(r.Context(), render.PreviewRequest{Code: req.Code, Options: opts})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewToResponse(p))
}

// ListSymbologies handles GET /api/symbologies.
func (s *Server) ListSymbologies(w http.ResponseWriter, _ *http.Request) {
	all := s.generator.Symbologies()
	items := make([]SymbologyResponse, len(all))
	for i, sym := range all {
		items[i] = symbologyToResponse(sym)
	}
	writeJSON(w, http.StatusOK, items)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body. It writes the error response itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := validateStruct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidCode) {
		return domain.ErrInvalidCode.Error() + " (" + symbology.Hint + ")"
	}
	sentinels := []error{
		domain.ErrBatchExhausted,
		domain.ErrInvalidInput,
		domain.ErrUnsupportedSymbology,
		domain.ErrRender,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

// batchExhaustedHandler answers a batch without a single file, listing every skipped code.
func batchExhaustedHandler(w http.ResponseWriter, err error, msg string) bool {
	var be *domain.BatchExhaustedError
	if !errors.As(err, &be) {
		return false
	}
	details := make([]ErrorDetail, len(be.Failures))
	for i, f := range be.Failures {
		details[i] = ErrorDetail{Code: f.Code, Reason: f.Reason}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Details: details})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
