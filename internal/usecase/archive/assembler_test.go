package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"

	"github.com/kailas-cloud/barcodex/internal/domain"
	dombatch "github.com/kailas-cloud/barcodex/internal/domain/batch"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, dir, name, content string) dombatch.Success {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return dombatch.NewSuccess(name[:len(name)-len(filepath.Ext(name))], name, path)
}

func readArchive(t *testing.T, data []byte) (names []string, contents map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	contents = make(map[string][]byte)
	for _, f := range zr.File {
		if f.Method != zip.Deflate {
			t.Errorf("%s: method = %d, want deflate", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		contents[f.Name] = b
	}
	return names, contents
}

func TestAssemble_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	successes := []dombatch.Success{
		writeFile(t, dir, "12345678901234.png", "png-bytes"),
		writeFile(t, dir, "4901234567894.png", "more-png-bytes"),
	}
	failures := []dombatch.Failure{dombatch.NewFailure("123", "invalid data (14 digits: ITF-14, 12-13 digits: EAN-13)")}
	opts := render.DefaultOptions()

	var buf bytes.Buffer
	report, err := New().WithClock(func() time.Time { return fixedNow }).Assemble(&buf, successes, failures, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names, contents := readArchive(t, buf.Bytes())
	wantNames := []string{"12345678901234.png", "4901234567894.png", "report.json"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if string(contents["4901234567894.png"]) != "more-png-bytes" {
		t.Errorf("entry content = %q", contents["4901234567894.png"])
	}

	var decoded dombatch.Report
	if err := json.Unmarshal(contents["report.json"], &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if diff := cmp.Diff(report, decoded); diff != "" {
		t.Errorf("report mismatch (-returned +archived):\n%s", diff)
	}
	if decoded.SuccessCount != 2 || decoded.ErrorCount != 1 {
		t.Errorf("counts = %d/%d", decoded.SuccessCount, decoded.ErrorCount)
	}
	if decoded.GenerationDate != "2026-03-01T12:00:00Z" {
		t.Errorf("generationDate = %q", decoded.GenerationDate)
	}

	// sources stay on disk
	for _, s := range successes {
		if _, err := os.Stat(s.Path()); err != nil {
			t.Errorf("source removed: %v", err)
		}
	}
}

func TestAssemble_ReportIndented(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New().Assemble(&buf, nil, nil, render.DefaultOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, contents := readArchive(t, buf.Bytes())
	body := contents["report.json"]
	if !bytes.Contains(body, []byte("\n  \"generationDate\"")) {
		t.Errorf("report not indented:\n%s", body)
	}
	if !bytes.Contains(body, []byte(`"errors": []`)) {
		t.Errorf("errors must be an empty array:\n%s", body)
	}
}

func TestAssemble_MissingSource(t *testing.T) {
	missing := dombatch.NewSuccess("1", "1.png", filepath.Join(t.TempDir(), "1.png"))

	_, err := New().Assemble(io.Discard, []dombatch.Success{missing}, nil, render.DefaultOptions())
	if !errors.Is(err, domain.ErrAssembly) {
		t.Fatalf("expected ErrAssembly, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAssemble_WriterFailure(t *testing.T) {
	dir := t.TempDir()
	s := writeFile(t, dir, "4901234567894.png", "png")

	_, err := New().Assemble(failingWriter{}, []dombatch.Success{s}, nil, render.DefaultOptions())
	if !errors.Is(err, domain.ErrAssembly) {
		t.Fatalf("expected ErrAssembly, got %v", err)
	}
}
