package barcodex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/transport/linear"
	"github.com/kailas-cloud/barcodex/internal/transport/symbol"
	"github.com/kailas-cloud/barcodex/internal/usecase/archive"
	batchuc "github.com/kailas-cloud/barcodex/internal/usecase/batch"
	"github.com/kailas-cloud/barcodex/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/barcodex/internal/usecase/health"
	renderuc "github.com/kailas-cloud/barcodex/internal/usecase/render"
)

// Internal interfaces for substitution in tests.
type generateUseCase interface {
	Generate(ctx context.Context, req generate.BatchRequest) (*generate.Archive, error)
	Preview(ctx context.Context, req render.PreviewRequest) (*render.Preview, error)
	Symbologies() []symbology.Symbology
}

type renderUseCase interface {
	Render(ctx context.Context, req render.Request) (string, error)
}

// Client is the barcodex SDK entry point.
type Client struct {
	genSvc    generateUseCase
	renderSvc renderUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. The work directory is created if missing.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		workDir: filepath.Join(os.TempDir(), "barcodex"),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.workDir == "" {
		return nil, fmt.Errorf("barcodex: work directory required: %w", ErrInvalidInput)
	}
	if err := os.MkdirAll(cfg.workDir, 0o750); err != nil {
		return nil, fmt.Errorf("barcodex: create work directory: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	var fallback renderuc.FallbackRenderer
	if !cfg.noFallback {
		fallback = linear.New()
	}
	primary := symbol.New()
	engine := renderuc.New(primary, primary, fallback)

	coordinator := batchuc.New(engine, cfg.workDir).WithConcurrency(cfg.concurrency)
	genSvc := generate.New(coordinator, archive.New(), engine, cfg.workDir)
	if cfg.maxCodes > 0 {
		genSvc = genSvc.WithMaxCodes(cfg.maxCodes)
	}

	return &Client{
		genSvc:    genSvc,
		renderSvc: engine,
		healthSvc: healthuc.New(cfg.workDir, nil),
		obs:       obs,
	}
}

// Generate renders every code and returns a zip archive with one image per
// valid code plus report.json. Invalid codes are listed in the report. If no
// code renders, the error wraps ErrBatchExhausted.
func (c *Client) Generate(ctx context.Context, codes []string, opts Options) (_ *Archive, err error) {
	start := time.Now()
	defer func() { c.obs.observe("generate", start, err, "codes", len(codes)) }()

	o, err := toDomainOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w: %w", ErrInvalidInput, err)
	}
	a, err := c.genSvc.Generate(ctx, generate.BatchRequest{Codes: codes, Options: o})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return &Archive{Data: a.Data, Filename: a.Filename, Report: a.Report}, nil
}

// Render writes a single code to destination. The extension of destination is
// replaced by the format's; the final path is returned.
func (c *Client) Render(ctx context.Context, code string, opts Options, destination string) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("render", start, err, "code", code) }()

	o, err := toDomainOptions(opts)
	if err != nil {
		return "", fmt.Errorf("render: %w: %w", ErrInvalidInput, err)
	}
	clean := symbology.Clean(code)
	key, ok := symbology.Classify(clean)
	if !ok {
		return "", fmt.Errorf("render %q (%s): %w", clean, symbology.Hint, ErrInvalidCode)
	}
	req, err := render.NewRequest(clean, key, o, destination)
	if err != nil {
		return "", fmt.Errorf("render: %w: %w", ErrInvalidInput, err)
	}
	path, err := c.renderSvc.Render(ctx, req)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return path, nil
}

// Preview renders a single code and returns it as a data URI.
// EPS previews carry a text placeholder instead of the image.
func (c *Client) Preview(ctx context.Context, code string, opts Options) (_ Preview, err error) {
	start := time.Now()
	defer func() { c.obs.observe("preview", start, err, "code", code) }()

	o, err := toDomainOptions(opts)
	if err != nil {
		return Preview{}, fmt.Errorf("preview: %w: %w", ErrInvalidInput, err)
	}
	p, err := c.genSvc.Preview(ctx, render.PreviewRequest{Code: code, Options: o})
	if err != nil {
		return Preview{}, fmt.Errorf("preview: %w", err)
	}
	return previewFromDomain(p), nil
}

// Symbologies lists the supported barcode standards.
func (c *Client) Symbologies() []Symbology {
	all := c.genSvc.Symbologies()
	out := make([]Symbology, len(all))
	for i, s := range all {
		out[i] = symbologyFromDomain(s)
	}
	return out
}

// Classify reports the symbology a code would render as, after whitespace removal.
func Classify(code string) (string, bool) {
	key, ok := symbology.Classify(symbology.Clean(code))
	return string(key), ok
}

// SkippedCodes returns every per-code failure carried by an error that wraps
// ErrBatchExhausted.
func SkippedCodes(err error) ([]ReportError, bool) {
	var be *BatchExhaustedError
	if !errors.As(err, &be) {
		return nil, false
	}
	out := make([]ReportError, len(be.Failures))
	for i, f := range be.Failures {
		out[i] = ReportError{Code: f.Code, Reason: f.Reason}
	}
	return out, true
}
