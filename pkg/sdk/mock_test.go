package barcodex

import (
	"context"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/barcodex/internal/usecase/health"
)

// --- generateUseCase mock ---

type mockGenerateUC struct {
	generateFn func(ctx context.Context, req generate.BatchRequest) (*generate.Archive, error)
	previewFn  func(ctx context.Context, req render.PreviewRequest) (*render.Preview, error)
}

func (m *mockGenerateUC) Generate(ctx context.Context, req generate.BatchRequest) (*generate.Archive, error) {
	return m.generateFn(ctx, req)
}

func (m *mockGenerateUC) Preview(ctx context.Context, req render.PreviewRequest) (*render.Preview, error) {
	return m.previewFn(ctx, req)
}

func (m *mockGenerateUC) Symbologies() []symbology.Symbology { return symbology.All() }

// --- renderUseCase mock ---

type mockRenderUC struct {
	renderFn func(ctx context.Context, req render.Request) (string, error)
}

func (m *mockRenderUC) Render(ctx context.Context, req render.Request) (string, error) {
	return m.renderFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
