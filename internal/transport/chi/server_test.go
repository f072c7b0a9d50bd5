package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/barcodex/internal/domain"
	dombatch "github.com/kailas-cloud/barcodex/internal/domain/batch"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/barcodex/internal/usecase/health"
)

// --- Mocks ---

type mockGenerator struct {
	archive *generate.Archive
	err     error
	req     generate.BatchRequest
}

func (m *mockGenerator) Generate(_ context.Context, req generate.BatchRequest) (*generate.Archive, error) {
	m.req = req
	return m.archive, m.err
}

func (m *mockGenerator) Symbologies() []symbology.Symbology { return symbology.All() }

type mockPreviewer struct {
	preview *render.Preview
	err     error
	req     render.PreviewRequest
}

func (m *mockPreviewer) Preview(_ context.Context, req render.PreviewRequest) (*render.Preview, error) {
	m.req = req
	return m.preview, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(gen *mockGenerator, prev *mockPreviewer, health *mockHealth) http.Handler {
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}}
	}
	s := NewServer(gen, prev, health, zap.NewNop()).WithLimits(3, 0)
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

var samplePreview = &render.Preview{
	Image:     "data:image/png;base64,AAAA",
	Code:      "4901234567894",
	Symbology: symbology.EAN13,
	Format:    render.PNG,
}

// --- Generate ---

func TestGenerate_Success(t *testing.T) {
	gen := &mockGenerator{archive: &generate.Archive{
		Data:     []byte("PK-zip"),
		Report:   dombatch.Report{SuccessCount: 1},
		Filename: "barcodes_1700000000000.zip",
	}}
	h := newTestRouter(gen, &mockPreviewer{}, nil)

	rr := do(t, h, http.MethodPost, "/api/generate",
		`{"barcodeNumbers":["4901234567894"],"heightMM":40,"fileFormat":"SVG","filenamePrefix":"sku-"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content-type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != "attachment; filename=barcodes_1700000000000.zip" {
		t.Errorf("content-disposition = %q", cd)
	}
	if rr.Body.String() != "PK-zip" {
		t.Errorf("body = %q", rr.Body)
	}

	opts := gen.req.Options
	if opts.HeightMM != 40 || opts.WidthMM != render.DefaultWidthMM || opts.Format != render.SVG || opts.FilenamePrefix != "sku-" {
		t.Errorf("options = %+v", opts)
	}
}

func TestGenerate_Exhausted(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("run batch: %w", domain.NewBatchExhausted([]domain.ItemError{
		{Code: "abc", Reason: "invalid data (14 digits: ITF-14, 12-13 digits: EAN-13)"},
	}))}
	h := newTestRouter(gen, &mockPreviewer{}, nil)

	rr := do(t, h, http.MethodPost, "/api/generate", `{"barcodeNumbers":["abc"]}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error != "no barcodes were generated" {
		t.Errorf("error = %q", resp.Error)
	}
	if len(resp.Details) != 1 || resp.Details[0].Code != "abc" {
		t.Errorf("details = %+v", resp.Details)
	}
}

func TestGenerate_AssemblyFailure(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("assemble archive: %w: disk full", domain.ErrAssembly)}
	h := newTestRouter(gen, &mockPreviewer{}, nil)

	rr := do(t, h, http.MethodPost, "/api/generate", `{"barcodeNumbers":["4901234567894"]}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Error != "internal error" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestGenerate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"barcodeNumbers":`},
		{"missing codes", `{}`},
		{"empty codes", `{"barcodeNumbers":[]}`},
		{"too many codes", `{"barcodeNumbers":["1","2","3","4"]}`},
		{"zero height", `{"barcodeNumbers":["1"],"heightMM":0}`},
		{"negative width", `{"barcodeNumbers":["1"],"widthMM":-1}`},
		{"oversized height", `{"barcodeNumbers":["1"],"heightMM":201}`},
		{"oversized width", `{"barcodeNumbers":["1"],"widthMM":11}`},
		{"500 mm dimensions", `{"barcodeNumbers":["1"],"heightMM":500,"widthMM":500}`},
		{"unknown format", `{"barcodeNumbers":["1"],"fileFormat":"gif"}`},
		{"prefix with slash", `{"barcodeNumbers":["1"],"filenamePrefix":"../x"}`},
		{"prefix with backslash", `{"barcodeNumbers":["1"],"filenamePrefix":"a\\b"}`},
		{"long prefix", `{"barcodeNumbers":["1"],"filenamePrefix":"` + strings.Repeat("a", 65) + `"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &mockGenerator{}
			h := newTestRouter(gen, &mockPreviewer{}, nil)

			rr := do(t, h, http.MethodPost, "/api/generate", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
			}
			if resp := decodeError(t, rr); resp.Error == "" {
				t.Error("expected an error message")
			}
			if gen.req.Codes != nil {
				t.Error("generator must not be called")
			}
		})
	}
}

func TestGenerate_InvalidInputFromService(t *testing.T) {
	gen := &mockGenerator{err: fmt.Errorf("no barcode numbers provided: %w", domain.ErrInvalidInput)}
	h := newTestRouter(gen, &mockPreviewer{}, nil)

	rr := do(t, h, http.MethodPost, "/api/generate", `{"barcodeNumbers":["  "]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Error != "invalid input" {
		t.Errorf("error = %q", resp.Error)
	}
}

// --- Preview ---

func TestPreviewPost_Success(t *testing.T) {
	prev := &mockPreviewer{preview: samplePreview}
	h := newTestRouter(&mockGenerator{}, prev, nil)

	rr := do(t, h, http.MethodPost, "/api/preview", `{"code":"4901234567894","widthMM":4}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	var resp PreviewResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := PreviewResponse{Success: true, Image: samplePreview.Image, Code: "4901234567894", Type: "EAN13", Format: "png"}
	if resp != want {
		t.Errorf("response = %+v, want %+v", resp, want)
	}
	if prev.req.Options.WidthMM != 4 || prev.req.Options.HeightMM != render.DefaultHeightMM {
		t.Errorf("options = %+v", prev.req.Options)
	}
}

func TestPreviewGet_Success(t *testing.T) {
	prev := &mockPreviewer{preview: samplePreview}
	h := newTestRouter(&mockGenerator{}, prev, nil)

	rr := do(t, h, http.MethodGet, "/api/preview?code=12345678901234&heightMM=50&fileFormat=eps", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if prev.req.Code != "12345678901234" {
		t.Errorf("code = %q", prev.req.Code)
	}
	if prev.req.Options.HeightMM != 50 || prev.req.Options.Format != render.EPS {
		t.Errorf("options = %+v", prev.req.Options)
	}
}

func TestPreviewGet_BadQuery(t *testing.T) {
	for _, target := range []string{
		"/api/preview",
		"/api/preview?code=4901234567894&heightMM=tall",
		"/api/preview?code=4901234567894&fileFormat=bmp",
	} {
		h := newTestRouter(&mockGenerator{}, &mockPreviewer{preview: samplePreview}, nil)
		rr := do(t, h, http.MethodGet, target, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", target, rr.Code)
		}
	}
}

func TestPreview_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid code", fmt.Errorf("code %q: %w", "123", domain.ErrInvalidCode), http.StatusBadRequest,
			"invalid data (14 digits: ITF-14, 12-13 digits: EAN-13)"},
		{"render", domain.NewRenderError("PNG", errors.New("primary: x; fallback: y")),
			http.StatusUnprocessableEntity, "render failed"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(&mockGenerator{}, &mockPreviewer{err: tc.err}, nil)
			rr := do(t, h, http.MethodPost, "/api/preview", `{"code":"123"}`)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			if resp := decodeError(t, rr); resp.Error != tc.msg {
				t.Errorf("error = %q, want %q", resp.Error, tc.msg)
			}
		})
	}
}

// --- Misc ---

func TestListSymbologies(t *testing.T) {
	h := newTestRouter(&mockGenerator{}, &mockPreviewer{}, nil)

	rr := do(t, h, http.MethodGet, "/api/symbologies", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var items []SymbologyResponse
	if err := json.NewDecoder(rr.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].Key != "ITF14" || items[0].BorderWidth != 4 || items[1].ID != "ean13" {
		t.Errorf("items = %+v", items)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		code   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusServiceUnavailable},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		health := &mockHealth{report: healthuc.Report{
			Status: tc.status,
			Checks: map[string]healthuc.CheckResult{"workdir": healthuc.CheckOK},
		}}
		h := newTestRouter(&mockGenerator{}, &mockPreviewer{}, health)

		rr := do(t, h, http.MethodGet, "/health", "")
		if rr.Code != tc.code {
			t.Errorf("%s: status = %d, want %d", tc.status, rr.Code, tc.code)
		}
		var resp HealthResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != string(tc.status) || resp.Checks["workdir"] != "ok" {
			t.Errorf("response = %+v", resp)
		}
	}
}

func TestBodyTooLarge(t *testing.T) {
	s := NewServer(&mockGenerator{}, &mockPreviewer{}, &mockHealth{}, zap.NewNop()).WithLimits(0, 16)
	r := chi.NewRouter()
	s.Register(r)

	rr := do(t, r, http.MethodPost, "/api/generate", `{"barcodeNumbers":["4901234567894","12345678901234"]}`)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rr.Code)
	}
}
