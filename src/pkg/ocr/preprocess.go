package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

/*
Preprocess prepares a price-tag image for tesseract:
  - grayscale;
  - upscale by cfg.ScaleFactor (keeping aspect ratio), tag prices are small;
  - mild sharpening, then a strong contrast boost;
  - hard threshold at cfg.Threshold to pure black and white.
*/
func Preprocess(source image.Image, cfg Config) *image.NRGBA {
	grayscaleImage := imaging.Grayscale(source)

	targetHeight := grayscaleImage.Bounds().Dy() * cfg.ScaleFactor
	resizedImage := imaging.Resize(grayscaleImage, 0, targetHeight, imaging.Lanczos)

	sharpenedImage := imaging.Sharpen(resizedImage, 1.0)
	highContrastImage := imaging.AdjustContrast(sharpenedImage, 100.0)

	threshold := uint8(cfg.Threshold)
	return imaging.AdjustFunc(highContrastImage, func(c color.NRGBA) color.NRGBA {
		// grayscale, so red is the brightness
		if c.R > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}
