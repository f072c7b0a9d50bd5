package chi

import (
	"context"

	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
	"github.com/kailas-cloud/barcodex/internal/usecase/generate"
	"github.com/kailas-cloud/barcodex/internal/usecase/health"
)

// Generator produces batch archives and lists supported symbologies.
type Generator interface {
	Generate(ctx context.Context, req generate.BatchRequest) (*generate.Archive, error)
	Symbologies() []symbology.Symbology
}

// HealthChecker reports service health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}
