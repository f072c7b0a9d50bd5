package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/barcodex/internal/domain"
	domrender "github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/logger"
	"github.com/kailas-cloud/barcodex/internal/metrics"
)

const filePerm = 0o644

// Engine turns render requests into image files.
type Engine struct {
	raster   RasterRenderer
	vector   VectorRenderer
	fallback FallbackRenderer
	write    func(name string, data []byte, perm os.FileMode) error
}

// New creates an Engine. fallback can be nil, in which case a failed PNG render is final.
func New(raster RasterRenderer, vector VectorRenderer, fallback FallbackRenderer) *Engine {
	return &Engine{raster: raster, vector: vector, fallback: fallback, write: os.WriteFile}
}

// Render produces the image and writes it next to the requested destination,
// with the extension replaced by the actual format. Returns the final path.
func (e *Engine) Render(ctx context.Context, req domrender.Request) (string, error) {
	if req.Destination() == "" {
		return "", fmt.Errorf("destination is required: %w", domain.ErrInvalidInput)
	}
	data, err := e.RenderBytes(ctx, req)
	if err != nil {
		return "", err
	}

	path := WithExt(req.Destination(), req.Format())
	if err := e.write(path, data, filePerm); err != nil {
		// a failed write can leave a truncated file behind
		if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
			logger.FromContext(ctx).Warn("Failed to remove partial file", zap.String("path", path), zap.Error(rerr))
		}
		return "", domain.NewRenderError(req.Format().Label(), fmt.Errorf("write %s: %w", filepath.Base(path), err))
	}
	return path, nil
}

// RenderBytes runs the same dispatch as Render without touching the filesystem.
func (e *Engine) RenderBytes(ctx context.Context, req domrender.Request) ([]byte, error) {
	sym, ok := symbology.Lookup(req.Symbology())
	if !ok {
		return nil, fmt.Errorf("symbology %q: %w", req.Symbology(), domain.ErrUnsupportedSymbology)
	}
	spec := domrender.Resolve(req, sym)

	switch req.Format() {
	case domrender.SVG:
		svg, err := e.vector.RenderSVG(ctx, spec)
		if err != nil {
			return nil, domain.NewRenderError(domrender.SVG.Label(), err)
		}
		return svg, nil
	case domrender.EPS:
		svg, err := e.vector.RenderSVG(ctx, spec)
		if err != nil {
			return nil, domain.NewRenderError(domrender.EPS.Label(), err)
		}
		eps, err := ConvertSVGToEPS(svg)
		if err != nil {
			return nil, domain.NewRenderError(domrender.EPS.Label(), err)
		}
		return eps, nil
	default:
		return e.renderPNG(ctx, spec, req.Symbology())
	}
}

// pngStage is one attempt of the raster pipeline.
type pngStage struct {
	name string
	run  func(ctx context.Context, spec domrender.Spec) ([]byte, error)
}

// pngStages lists the raster pipeline in order: primary first, then the generic fallback.
func (e *Engine) pngStages() []pngStage {
	stages := []pngStage{{name: "primary", run: e.raster.RenderPNG}}
	if e.fallback != nil {
		stages = append(stages, pngStage{
			name: "fallback",
			run: func(ctx context.Context, spec domrender.Spec) ([]byte, error) {
				return e.fallback.RenderPNG(ctx, spec.Text)
			},
		})
	}
	return stages
}

func (e *Engine) renderPNG(ctx context.Context, spec domrender.Spec, key symbology.Key) ([]byte, error) {
	log := logger.FromContext(ctx)
	var errs []error

	for i, stage := range e.pngStages() {
		data, err := stage.run(ctx, spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", stage.name, err))
			continue
		}
		if i > 0 {
			metrics.RenderFallbacksTotal.WithLabelValues(string(key)).Inc()
			log.Warn("PNG rendered by fallback stage",
				zap.String("code", spec.Text),
				zap.String("symbology", string(key)),
				zap.String("stage", stage.name),
				zap.Error(stageErrors(errs)),
			)
		}
		return data, nil
	}
	return nil, domain.NewRenderError(domrender.PNG.Label(), stageErrors(errs))
}

// stageErrors reports every failed pipeline stage on one line.
type stageErrors []error

func (s stageErrors) Error() string {
	parts := make([]string, len(s))
	for i, err := range s {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

func (s stageErrors) Unwrap() []error { return s }

// WithExt replaces the extension of path with the one of format.
func WithExt(path string, format domrender.Format) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + format.Ext()
}
