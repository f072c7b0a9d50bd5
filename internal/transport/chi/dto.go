package chi

import (
	"strings"

	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	BarcodeNumbers []string `json:"barcodeNumbers" validate:"required,min=1"`
	HeightMM       *float64 `json:"heightMM" validate:"omitempty,gt=0,lte=200"`
	WidthMM        *float64 `json:"widthMM" validate:"omitempty,gt=0,lte=10"`
	FilenamePrefix string   `json:"filenamePrefix" validate:"max=64,excludesall=/\\"`
	FileFormat     string   `json:"fileFormat" validate:"omitempty,oneof=png svg eps PNG SVG EPS"`
}

// PreviewRequest is the body of POST /api/preview and the query of GET /api/preview.
type PreviewRequest struct {
	Code       string   `json:"code" validate:"required,max=64"`
	HeightMM   *float64 `json:"heightMM" validate:"omitempty,gt=0,lte=200"`
	WidthMM    *float64 `json:"widthMM" validate:"omitempty,gt=0,lte=10"`
	FileFormat string   `json:"fileFormat" validate:"omitempty,oneof=png svg eps PNG SVG EPS"`
}

// PreviewResponse is returned by the preview endpoints.
type PreviewResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Format  string `json:"format"`
}

// SymbologyResponse describes one supported symbology.
type SymbologyResponse struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	Lengths     []int  `json:"lengths"`
	BorderWidth int    `json:"borderWidth"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorDetail is one skipped code in an error response.
type ErrorDetail struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// options merges request fields over the server defaults.
func options(defaults render.Options, heightMM, widthMM *float64, format string) (render.Options, error) {
	opts := defaults
	if heightMM != nil {
		opts.HeightMM = *heightMM
	}
	if widthMM != nil {
		opts.WidthMM = *widthMM
	}
	if strings.TrimSpace(format) != "" {
		f, err := render.ParseFormat(format)
		if err != nil {
			return render.Options{}, err
		}
		opts.Format = f
	}
	return opts, nil
}

func previewToResponse(p *render.Preview) PreviewResponse {
	return PreviewResponse{
		Success: true,
		Image:   p.Image,
		Code:    p.Code,
		Type:    string(p.Symbology),
		Format:  string(p.Format),
	}
}

func symbologyToResponse(s symbology.Symbology) SymbologyResponse {
	return SymbologyResponse{
		Key:         string(s.Key()),
		ID:          s.ID(),
		Lengths:     s.Lengths(),
		BorderWidth: s.BorderWidth(),
	}
}
