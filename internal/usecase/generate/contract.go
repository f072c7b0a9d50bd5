package generate

import (
	"context"
	"io"

	dombatch "github.com/kailas-cloud/barcodex/internal/domain/batch"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/usecase/batch"
)

// BatchRunner renders a list of codes into a transient batch directory.
type BatchRunner interface {
	Run(ctx context.Context, codes []string, opts render.Options) (*batch.Result, error)
}

// ArchiveAssembler packs batch outcomes into an archive.
type ArchiveAssembler interface {
	Assemble(w io.Writer, successes []dombatch.Success, failures []dombatch.Failure, opts render.Options) (dombatch.Report, error)
}

// Renderer renders a single code to a file.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (string, error)
}
