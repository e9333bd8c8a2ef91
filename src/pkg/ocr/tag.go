package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/prices"
)

// TagReading is the outcome of reading one price-tag photo locally.
type TagReading struct {
	RunDir      string            `json:"run_dir"`
	Text        string            `json:"text"`
	NumericText string            `json:"numeric_text"`
	Name        *names.Correction `json:"name,omitempty"`
	Price       prices.Result     `json:"price"`
}

// TagRequest describes a tag photo to read. A nil Corrector skips name correction.
type TagRequest struct {
	ImagePath string
	OutputDir string
	Retailer  string
	Hint      prices.Role
	Corrector *names.Corrector
}

/*
ReadTag reads a single price-tag photo end to end:
 1. creates a per-run directory under the output root, named by timestamp;
 2. copies the photo there as orig.<ext> and saves the preprocessed clean.png;
 3. runs a text pass and a numeric pass of tesseract over clean.png;
 4. corrects the first text line as an item name and parses the numeric
    text with the retailer's price rule;
 5. saves ocr.txt, numbers-ocr.txt and reading.json next to the images.
*/
func ReadTag(ctx context.Context, request TagRequest, cfg Config) (reading TagReading, e *xerr.Error) {
	e = validateImagePath(request.ImagePath)
	if e != nil {
		return reading, e
	}
	tl.Log(tl.Notice, palette.BlueBold, "%s price tag '%s' (retailer '%s')", "Reading", request.ImagePath, request.Retailer)

	dir, e := newRunDirectory(request.OutputDir, time.Now())
	if e != nil {
		return reading, e
	}
	reading.RunDir = dir.path

	original, err := os.ReadFile(request.ImagePath)
	if err != nil {
		return reading, xerr.NewError(err, "read tag image", request.ImagePath)
	}
	originalExt := strings.ToLower(filepath.Ext(request.ImagePath))
	if originalExt == "" {
		originalExt = ".jpg"
	}
	e = dir.writeBytes("orig"+originalExt, original)
	if e != nil {
		return reading, e
	}

	decoded, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		return reading, xerr.NewError(err, "decode tag image", request.ImagePath)
	}
	var clean bytes.Buffer
	if err = imaging.Encode(&clean, Preprocess(decoded, cfg), imaging.PNG); err != nil {
		return reading, xerr.NewError(err, "encode processed image", request.ImagePath)
	}
	e = dir.writeBytes("clean.png", clean.Bytes())
	if e != nil {
		return reading, e
	}

	reading.Text, e = NewTesseract(cfg).ExtractText(ctx, clean.Bytes(), dir.file("clean.png"))
	if e != nil {
		return reading, e
	}
	reading.NumericText, e = NewNumericTesseract(cfg).ExtractText(ctx, clean.Bytes(), dir.file("clean.png"))
	if e != nil {
		return reading, e
	}

	if request.Corrector != nil {
		correction := request.Corrector.Correct(firstLine(reading.Text))
		reading.Name = &correction
	}
	reading.Price = prices.Parse(request.Retailer, reading.NumericText, request.Hint)

	for name, text := range map[string]string{"ocr.txt": reading.Text, "numbers-ocr.txt": reading.NumericText} {
		e = dir.writeText(name, text)
		if e != nil {
			return reading, e
		}
	}
	e = dir.writeJSON("reading.json", reading)
	if e != nil {
		return reading, e
	}

	tl.Log(
		tl.Notice1, palette.GreenBold, "%s tag '%s': prices %v, run dir '%s'",
		"Finished", request.ImagePath, tl.PrettyForStderr(reading.Price.Values()), reading.RunDir,
	)
	return reading, nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func validateImagePath(imagePath string) (e *xerr.Error) {
	if imagePath == "" {
		err := fmt.Errorf("image path flag '-image' is empty")
		e = xerr.NewError(err, "no input image path provided", imagePath)
		tl.Log(tl.Important, palette.PurpleBold, "Exiting early: '%s'", "no input image (-image) provided")
	}
	return e
}
