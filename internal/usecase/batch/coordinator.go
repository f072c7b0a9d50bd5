package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/barcodex/internal/domain"
	dombatch "github.com/kailas-cloud/barcodex/internal/domain/batch"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/logger"
	"github.com/kailas-cloud/barcodex/internal/metrics"
)

const dirPrefix = "batch-"

// invalidReason is the failure reason of a code that no symbology accepts.
var invalidReason = domain.ErrInvalidCode.Error() + " (" + symbology.Hint + ")"

// Coordinator renders a list of codes concurrently. A failing item never
// affects its siblings; it becomes a Failure in the result.
type Coordinator struct {
	renderer    Renderer
	workDir     string
	concurrency int
}

// New creates a Coordinator that places batch directories under workDir.
func New(renderer Renderer, workDir string) *Coordinator {
	return &Coordinator{
		renderer:    renderer,
		workDir:     workDir,
		concurrency: runtime.NumCPU() * 2,
	}
}

// WithConcurrency limits the number of items rendered at once.
func (c *Coordinator) WithConcurrency(n int) *Coordinator {
	if n > 0 {
		c.concurrency = n
	}
	return c
}

// Result holds the outcomes of one batch. Files live in Dir until Cleanup.
type Result struct {
	ID        string
	Dir       string
	Options   render.Options
	Successes []dombatch.Success
	Failures  []dombatch.Failure
}

// Cleanup removes the batch directory. Safe on a nil Result.
func (r *Result) Cleanup() error {
	if r == nil || r.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(r.Dir); err != nil {
		return fmt.Errorf("remove batch dir: %w", err)
	}
	return nil
}

// item is one non-empty input code.
type item struct {
	raw      string
	clean    string
	filename string
}

// Run renders every non-empty code. Whitespace is stripped first; empty
// entries are dropped. When nothing renders, the Result is returned together
// with a *domain.BatchExhaustedError.
func (c *Coordinator) Run(ctx context.Context, codes []string, opts render.Options) (*Result, error) {
	opts = opts.WithDefaults()
	if !opts.Format.IsValid() {
		return nil, fmt.Errorf("file format %q: %w", opts.Format, domain.ErrInvalidInput)
	}
	if strings.ContainsAny(opts.FilenamePrefix, `/\`) || strings.Contains(opts.FilenamePrefix, "..") {
		return nil, fmt.Errorf("filename prefix %q: %w", opts.FilenamePrefix, domain.ErrInvalidInput)
	}

	items := collect(codes, opts)
	if len(items) == 0 {
		return nil, fmt.Errorf("no barcode numbers provided: %w", domain.ErrInvalidInput)
	}

	id := uuid.NewString()
	dir := filepath.Join(c.workDir, dirPrefix+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch dir: %w", err)
	}

	log := logger.FromContext(ctx).With(zap.String("batch_id", id))
	res := &Result{ID: id, Dir: dir, Options: opts}
	start := time.Now()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.concurrency)
	for _, it := range items {
		g.Go(func() error {
			success, failure, ok := c.process(ctx, it, dir, opts)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				res.Successes = append(res.Successes, success)
			} else {
				res.Failures = append(res.Failures, failure)
			}
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	metrics.BatchDuration.Observe(elapsed.Seconds())
	log.Info("Batch rendered",
		zap.Int("codes", len(items)),
		zap.Int("succeeded", len(res.Successes)),
		zap.Int("failed", len(res.Failures)),
		zap.Duration("elapsed", elapsed),
	)

	if len(res.Successes) == 0 {
		return res, domain.NewBatchExhausted(dombatch.ItemErrors(res.Failures))
	}
	return res, nil
}

// process classifies, validates and renders one item. Once it starts, the
// render is not interrupted by cancellation of ctx.
func (c *Coordinator) process(
	ctx context.Context, it item, dir string, opts render.Options,
) (dombatch.Success, dombatch.Failure, bool) {
	if err := ctx.Err(); err != nil {
		metrics.BatchItemsTotal.WithLabelValues("canceled").Inc()
		return dombatch.Success{}, dombatch.NewFailure(it.raw, err.Error()), false
	}

	key, ok := symbology.Classify(it.clean)
	if !ok || !symbology.Validate(it.clean, key) {
		metrics.BatchItemsTotal.WithLabelValues("invalid").Inc()
		return dombatch.Success{}, dombatch.NewFailure(it.raw, invalidReason), false
	}

	req, err := render.NewRequest(it.clean, key, opts, filepath.Join(dir, it.filename))
	if err != nil {
		metrics.BatchItemsTotal.WithLabelValues("invalid").Inc()
		return dombatch.Success{}, dombatch.NewFailure(it.raw, err.Error()), false
	}

	path, err := c.renderer.Render(context.WithoutCancel(ctx), req)
	if err != nil {
		metrics.BatchItemsTotal.WithLabelValues("render_error").Inc()
		logger.FromContext(ctx).Warn("Render failed", zap.String("code", it.clean), zap.Error(err))
		return dombatch.Success{}, dombatch.NewFailure(it.raw, err.Error()), false
	}

	metrics.BatchItemsTotal.WithLabelValues("success").Inc()
	return dombatch.NewSuccess(it.clean, filepath.Base(path), path), dombatch.Failure{}, true
}

// collect strips whitespace, drops empty codes and assigns file names in
// input order. A repeated name gets a _2, _3, ... suffix before the extension.
func collect(codes []string, opts render.Options) []item {
	items := make([]item, 0, len(codes))
	seen := make(map[string]int, len(codes))
	ext := opts.Format.Ext()

	for _, raw := range codes {
		clean := symbology.Clean(raw)
		if clean == "" {
			continue
		}
		base := opts.FilenamePrefix + clean
		seen[base]++
		name := base + "." + ext
		if n := seen[base]; n > 1 {
			name = fmt.Sprintf("%s_%d.%s", base, n, ext)
		}
		items = append(items, item{raw: raw, clean: clean, filename: name})
	}
	return items
}
