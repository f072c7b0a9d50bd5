package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/barcodex/internal/domain"
	dombatch "github.com/kailas-cloud/barcodex/internal/domain/batch"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/logger"
)

// DefaultMaxCodes caps the number of codes per batch request.
const DefaultMaxCodes = 1000

// epsPlaceholder is shown instead of an EPS image, which browsers cannot display.
const epsPlaceholder = "EPS preview is not available. Download the archive to get the EPS file."

// BatchRequest is a batch generation request.
type BatchRequest struct {
	Codes   []string
	Options render.Options
}

// Archive is a finished batch ready to be sent.
type Archive struct {
	Data     []byte
	Report   dombatch.Report
	Filename string
}

// Service runs batch generation and single-code previews.
type Service struct {
	runner   BatchRunner
	archive  ArchiveAssembler
	renderer Renderer
	workDir  string
	maxCodes int
	now      func() time.Time
}

// New creates a generation service. Preview files are written under workDir.
func New(runner BatchRunner, archive ArchiveAssembler, renderer Renderer, workDir string) *Service {
	return &Service{
		runner:   runner,
		archive:  archive,
		renderer: renderer,
		workDir:  workDir,
		maxCodes: DefaultMaxCodes,
		now:      time.Now,
	}
}

// WithMaxCodes configures the per-request code limit.
func (s *Service) WithMaxCodes(n int) *Service {
	if n > 0 {
		s.maxCodes = n
	}
	return s
}

// WithClock replaces the clock used for archive names.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Generate renders every code and returns the finished archive. The batch
// directory is removed on every exit path. The archive is built in memory so
// a failure never produces a partial download.
func (s *Service) Generate(ctx context.Context, req BatchRequest) (*Archive, error) {
	if len(req.Codes) == 0 {
		return nil, fmt.Errorf("barcode numbers are required: %w", domain.ErrInvalidInput)
	}
	if len(req.Codes) > s.maxCodes {
		return nil, fmt.Errorf("at most %d barcode numbers per request: %w", s.maxCodes, domain.ErrInvalidInput)
	}
	if err := req.Options.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	opts := req.Options.WithDefaults()

	res, err := s.runner.Run(ctx, req.Codes, opts)
	defer func() {
		if cerr := res.Cleanup(); cerr != nil {
			logger.FromContext(ctx).Warn("Failed to remove batch directory", zap.Error(cerr))
		}
	}()
	if err != nil {
		return nil, fmt.Errorf("run batch: %w", err)
	}

	var buf bytes.Buffer
	report, err := s.archive.Assemble(&buf, res.Successes, res.Failures, opts)
	if err != nil {
		return nil, fmt.Errorf("assemble archive: %w", err)
	}

	return &Archive{
		Data:     buf.Bytes(),
		Report:   report,
		Filename: fmt.Sprintf("barcodes_%d.zip", s.now().UnixMilli()),
	}, nil
}

// Preview renders one code and returns it as a data URI.
func (s *Service) Preview(ctx context.Context, req render.PreviewRequest) (*render.Preview, error) {
	code := symbology.Clean(req.Code)
	if code == "" {
		return nil, fmt.Errorf("code is required: %w", domain.ErrInvalidInput)
	}

	key, ok := symbology.Classify(code)
	if !ok || !symbology.Validate(code, key) {
		return nil, fmt.Errorf("code %q (%s): %w", code, symbology.Hint, domain.ErrInvalidCode)
	}

	opts := req.Options.WithDefaults()
	dest := filepath.Join(s.workDir, "preview-"+uuid.NewString()+"."+opts.Format.Ext())
	rr, err := render.NewRequest(code, key, opts, dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	path, err := s.renderer.Render(ctx, rr)
	if path != "" {
		defer func() { _ = os.Remove(path) }()
	}
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preview: %w", err)
	}

	image := dataURI(opts.Format.MIMEType(), data)
	if opts.Format == render.EPS {
		image = dataURI("text/plain", []byte(epsPlaceholder))
	}
	return &render.Preview{Image: image, Code: code, Symbology: key, Format: opts.Format}, nil
}

// Symbologies lists the supported symbologies.
func (s *Service) Symbologies() []symbology.Symbology {
	return symbology.All()
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
