package batch

import (
	"time"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
)

// ReportFilename is the archive entry name of the generation report.
const ReportFilename = "report.json"

// ReportNote is the explanatory note embedded in every report.
const ReportNote = "Barcodes generated in batch. Codes listed under errors were skipped " +
	"(14 digits: ITF-14, 12-13 digits: EAN-13)."

// ReportOptions echoes the options applied to the batch.
type ReportOptions struct {
	HeightMM       float64 `json:"heightMM"`
	WidthMM        float64 `json:"widthMM"`
	FileFormat     string  `json:"fileFormat"`
	FilenamePrefix string  `json:"filenamePrefix"`
}

// ReportError is one skipped code in the report.
type ReportError struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Report is the machine-readable manifest written as report.json.
type Report struct {
	GenerationDate string        `json:"generationDate"`
	Note           string        `json:"note"`
	Options        ReportOptions `json:"options"`
	SuccessCount   int           `json:"successCount"`
	ErrorCount     int           `json:"errorCount"`
	Errors         []ReportError `json:"errors"`
}

// NewReport builds the report once all outcomes are known.
// Failures keep their completion order.
func NewReport(now time.Time, opts render.Options, successes []Success, failures []Failure) Report {
	errs := make([]ReportError, len(failures))
	for i, f := range failures {
		errs[i] = ReportError{Code: f.Code(), Reason: f.Reason()}
	}
	return Report{
		GenerationDate: now.UTC().Format(time.RFC3339Nano),
		Note:           ReportNote,
		Options: ReportOptions{
			HeightMM:       opts.HeightMM,
			WidthMM:        opts.WidthMM,
			FileFormat:     string(opts.Format),
			FilenamePrefix: opts.FilenamePrefix,
		},
		SuccessCount: len(successes),
		ErrorCount:   len(failures),
		Errors:       errs,
	}
}
