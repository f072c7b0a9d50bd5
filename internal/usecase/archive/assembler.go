// Package archive packs rendered barcode files and the generation report into a ZIP.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/kailas-cloud/barcodex/internal/domain"
	dombatch "github.com/kailas-cloud/barcodex/internal/domain/batch"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
)

// Assembler writes ZIP archives.
type Assembler struct {
	now func() time.Time
}

// New creates an Assembler that stamps reports with the current time.
func New() *Assembler {
	return &Assembler{now: time.Now}
}

// WithClock replaces the report clock.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	if now != nil {
		a.now = now
	}
	return a
}

// Assemble streams every success file under its bare name, then appends
// report.json. Source files are left in place.
func (a *Assembler) Assemble(
	w io.Writer, successes []dombatch.Success, failures []dombatch.Failure, opts render.Options,
) (dombatch.Report, error) {
	now := a.now()
	report := dombatch.NewReport(now, opts, successes, failures)

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, s := range successes {
		if err := addFile(zw, s, now); err != nil {
			_ = zw.Close()
			return dombatch.Report{}, fmt.Errorf("%w: %w", domain.ErrAssembly, err)
		}
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		_ = zw.Close()
		return dombatch.Report{}, fmt.Errorf("%w: encode report: %w", domain.ErrAssembly, err)
	}
	entry, err := zw.CreateHeader(header(dombatch.ReportFilename, now))
	if err != nil {
		_ = zw.Close()
		return dombatch.Report{}, fmt.Errorf("%w: create %s: %w", domain.ErrAssembly, dombatch.ReportFilename, err)
	}
	if _, err := entry.Write(body); err != nil {
		_ = zw.Close()
		return dombatch.Report{}, fmt.Errorf("%w: write %s: %w", domain.ErrAssembly, dombatch.ReportFilename, err)
	}

	if err := zw.Close(); err != nil {
		return dombatch.Report{}, fmt.Errorf("%w: finalize: %w", domain.ErrAssembly, err)
	}
	return report, nil
}

func addFile(zw *zip.Writer, s dombatch.Success, now time.Time) error {
	f, err := os.Open(s.Path())
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Filename(), err)
	}
	defer func() { _ = f.Close() }()

	entry, err := zw.CreateHeader(header(s.Filename(), now))
	if err != nil {
		return fmt.Errorf("create %s: %w", s.Filename(), err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("copy %s: %w", s.Filename(), err)
	}
	return nil
}

func header(name string, modified time.Time) *zip.FileHeader {
	return &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified}
}
