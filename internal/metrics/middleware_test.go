package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK\x03\x04"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	requestsVal := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/generate", "200"))
	if requestsVal < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", requestsVal)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
	if testutil.CollectAndCount(httpResponseSize) == 0 {
		t.Error("expected http_response_size_bytes to have observations")
	}
}

func TestMetricsMiddleware_DifferentStatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	r.Get("/api/preview", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})
	r.Get("/bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tests := []struct {
		path           string
		expectedStatus string
	}{
		{"/api/preview", "200"},
		{"/bad", "400"},
		{"/boom", "500"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.expectedStatus))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.expectedStatus, val)
			}
		})
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	if val < 1 {
		t.Errorf("expected unmatched route under path=unknown, got %f", val)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/api/generate", "/api/generate"},
		{"/health", "/health"},
	}

	for _, tc := range tests {
		result := normalizePath(tc.input)
		if result != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestRegisterRenderMetrics_Idempotent(t *testing.T) {
	RegisterRenderMetrics()
	RegisterRenderMetrics()

	RenderFallbacksTotal.WithLabelValues("EAN13").Inc()
	if v := testutil.ToFloat64(RenderFallbacksTotal.WithLabelValues("EAN13")); v < 1 {
		t.Errorf("expected fallback counter >= 1, got %f", v)
	}
}
