/*
Package pipeline turns a retailer's leaflet PDF into item records.

	SplitPDF      pdfs/<file>.pdf          -> pages/valid/<base>_page_<n>.png
	DetectItems   page images              -> item crops + item detection table
	ProcessItems  item crops               -> item processing table + detected items table

Each stage takes the keys the previous one produced, so the stages can run in
one process (Runner) or as separate queue tasks. Within a stage every image is
handled on its own: a failure is logged, counted in the StageReport and the
loop moves on.
*/
package pipeline

import (
	"context"
	"fmt"

	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/detect"
	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/pdfpages"
	"pricetag-ocr/src/pkg/prices"
	"pricetag-ocr/src/pkg/storage"
)

type Detector interface {
	Detect(ctx context.Context, image []byte, imageName string, model string) ([]detect.Detection, *xerr.Error)
}

type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, imageName string) (string, *xerr.Error)
	ExtractTextInBox(ctx context.Context, image []byte, imageName string, box detect.Box) (string, *xerr.Error)
}

type PageRenderer interface {
	Render(ctx context.Context, document []byte, documentName string) ([]pdfpages.Page, *xerr.Error)
}

type NameCorrector interface {
	Correct(raw string) names.Correction
}

type PriceParser interface {
	Parse(retailer string, text string, hint prices.Role) prices.Result
}

// Dependencies are the collaborators a Pipeline drives. All are required.
type Dependencies struct {
	Blobs    storage.BlobStore
	Records  storage.RecordStore
	Tables   storage.Tables
	Renderer PageRenderer
	Detector Detector
	OCR      TextExtractor
	Names    NameCorrector
	Prices   PriceParser
}

type Pipeline struct {
	cfg  Config
	deps Dependencies
}

func New(cfg Config, deps Dependencies) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps}
}

// StageReport counts what a stage did with its inputs.
type StageReport struct {
	Stage     string   `json:"stage"`
	Inputs    int      `json:"inputs"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (r *StageReport) fail(input string, e *xerr.Error) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", input, e))
}
