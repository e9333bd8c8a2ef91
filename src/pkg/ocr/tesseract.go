/*
Package ocr is the local OCR backend: tesseract through gosseract, with the
image preprocessing that makes printed price tags readable.

It serves the `pipeline tag` subprogram and can replace the remote OCR model
in the pipeline when no model server is available.
*/
package ocr

import (
	"bytes"
	"context"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/detect"
)

// numericWhitelist limits the price pass to what tags print around numbers.
const numericWhitelist = "0123456789.,'-"

/*
Tesseract reads text with a fresh gosseract client per call, so one value may
be shared by goroutines.
*/
type Tesseract struct {
	language         string
	numericWhitelist bool
}

// NewTesseract reads general text in cfg.Language.
func NewTesseract(cfg Config) *Tesseract {
	return &Tesseract{language: cfg.Language}
}

// NewNumericTesseract reads only digits and price separators.
func NewNumericTesseract(cfg Config) *Tesseract {
	return &Tesseract{language: cfg.Language, numericWhitelist: true}
}

// ExtractText runs OCR on an encoded image. ctx is accepted to match the
// remote OCR client; tesseract itself cannot be interrupted.
func (t *Tesseract) ExtractText(ctx context.Context, image []byte, imageName string) (text string, e *xerr.Error) {
	if err := ctx.Err(); err != nil {
		return "", xerr.NewError(err, "OCR cancelled", imageName)
	}
	tl.Log(tl.Info1, palette.Cyan, "Running OCR (%s, numeric: %v) on '%s'", t.language, t.numericWhitelist, imageName)

	client := gosseract.NewClient()
	defer func() {
		_ = client.Close()
	}()

	err := client.SetLanguage(t.language)
	if err != nil {
		return "", xerr.NewError(err, "unable to client.SetLanguage", t.language)
	}

	if t.numericWhitelist {
		err = client.SetVariable("tessedit_char_whitelist", numericWhitelist)
		if err != nil {
			return "", xerr.NewError(err, "unable to whitelist price characters", imageName)
		}
		err = client.SetVariable("classify_bln_numeric_mode", "1")
		if err != nil {
			return "", xerr.NewError(err, "unable to set classify_bln_numeric_mode", imageName)
		}
	}

	err = client.SetVariable("preserve_interword_spaces", "1")
	if err != nil {
		return "", xerr.NewError(err, "unable to set preserve_interword_spaces", imageName)
	}

	// A cropped field is one short block of text.
	err = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	if err != nil {
		return "", xerr.NewError(err, "unable to client.SetPageSegMode(PSM_SINGLE_BLOCK)", imageName)
	}

	err = client.SetImageFromBytes(image)
	if err != nil {
		return "", xerr.NewError(err, "unable to client.SetImageFromBytes", imageName)
	}

	text, err = client.Text()
	if err != nil {
		return "", xerr.NewError(err, "unable to run OCR on image", imageName)
	}

	tl.Log(tl.Verbose, palette.GreenDim, "OCR completed for '%s' (text length: '%s')", imageName, len(text))
	return text, nil
}

// ExtractTextInBox crops box out of the image and runs OCR on the crop.
func (t *Tesseract) ExtractTextInBox(ctx context.Context, image []byte, imageName string, box detect.Box) (text string, e *xerr.Error) {
	decoded, err := imaging.Decode(bytes.NewReader(image))
	if err != nil {
		return "", xerr.NewError(err, "decode image for OCR crop", imageName)
	}

	bounds := decoded.Bounds()
	cropped := imaging.Crop(decoded, box.Clamp(bounds.Dx(), bounds.Dy()).Rect())

	var encoded bytes.Buffer
	if err = imaging.Encode(&encoded, cropped, imaging.PNG); err != nil {
		return "", xerr.NewError(err, "encode OCR crop", imageName)
	}

	return t.ExtractText(ctx, encoded.Bytes(), imageName+box.String())
}
