package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/detect"
	"pricetag-ocr/src/pkg/storage"
)

type detectionPass struct {
	table   string
	model   string
	withOCR bool
}

// detectedImage is one image after a detection pass.
type detectedImage struct {
	key        string
	content    []byte
	decoded    image.Image
	detections []detect.Detection // as the model returned them
	items      []DetectionItem    // padded boxes (plus OCR text when requested)
}

/*
detectImage downloads an image, runs the pass's model over it, pads every box,
optionally OCRs each padded box and saves the grouped detections under the
image key.
*/
func (p *Pipeline) detectImage(ctx context.Context, imageKey string, pass detectionPass) (detected detectedImage, e *xerr.Error) {
	detected.key = imageKey
	detected.content, e = p.deps.Blobs.Download(ctx, imageKey)
	if e != nil {
		return detected, e
	}

	decoded, err := imaging.Decode(bytes.NewReader(detected.content))
	if err != nil {
		return detected, xerr.NewError(err, "decode image", imageKey)
	}
	detected.decoded = decoded
	width, height := decoded.Bounds().Dx(), decoded.Bounds().Dy()

	detected.detections, e = p.deps.Detector.Detect(ctx, detected.content, path.Base(imageKey), pass.model)
	if e != nil {
		return detected, e
	}

	for _, detection := range detected.detections {
		padded := detection.Box.Pad(p.cfg.Padding, width, height)
		item := DetectionItem{
			ClassName:   detection.Class,
			BoundingBox: newBoundingBox(padded),
			Confidence:  strconv.FormatFloat(detection.Confidence, 'f', -1, 64),
		}
		if pass.withOCR {
			text, ocrErr := p.deps.OCR.ExtractTextInBox(ctx, detected.content, path.Base(imageKey), padded)
			if ocrErr != nil {
				return detected, ocrErr
			}
			item.OCRText = &text
			tl.Log(tl.Verbose, palette.CyanDim, "OCR text for class '%s' in box %s: '%s'", detection.Class, padded, text)
		}
		detected.items = append(detected.items, item)
	}

	record := DetectionRecord{ImageID: imageKey, Detections: groupByClass(detected.items)}
	e = p.deps.Records.Put(ctx, pass.table, storage.Key{"image_id": imageKey}, record)
	if e != nil {
		return detected, e
	}

	tl.Log(tl.Info1, palette.Green, "%s '%s' detections for '%s' into '%s'", "Saved", len(detected.items), imageKey, pass.table)
	return detected, nil
}

/*
DetectItems finds price tags on every page, then crops each tag from the
unpadded box and uploads it as <base>_det_<i>_<class>.png. It returns the keys
of the uploaded crops.
*/
func (p *Pipeline) DetectItems(ctx context.Context, pageKeys []string) (itemKeys []string, report StageReport) {
	report = StageReport{Stage: "detect", Inputs: len(pageKeys)}
	tl.Log(tl.Notice, palette.BlueBold, "%s on '%s' pages with model '%s'", "Detecting items", len(pageKeys), p.cfg.PageModel)

	pass := detectionPass{table: p.deps.Tables.ItemDetection, model: p.cfg.PageModel}
	for _, pageKey := range pageKeys {
		if ctx.Err() != nil {
			report.fail(pageKey, xerr.NewError(ctx.Err(), "detect items", pageKey))
			continue
		}

		detected, e := p.detectImage(ctx, pageKey, pass)
		if e != nil {
			tl.Log(tl.Error, palette.Red, "Error processing page '%s': %v", pageKey, e)
			report.fail(pageKey, e)
			continue
		}

		crops, e := p.uploadCrops(ctx, detected)
		itemKeys = append(itemKeys, crops...)
		if e != nil {
			tl.Log(tl.Error, palette.Red, "Error saving crops of page '%s': %v", pageKey, e)
			report.fail(pageKey, e)
			continue
		}
		report.Succeeded++
	}

	tl.Log(
		tl.Notice1, palette.GreenBold, "%s '%s' item images from '%s' pages ('%s' failed)",
		"Detected", len(itemKeys), report.Succeeded, report.Failed,
	)
	return itemKeys, report
}

func (p *Pipeline) uploadCrops(ctx context.Context, detected detectedImage) (keys []string, e *xerr.Error) {
	bounds := detected.decoded.Bounds()
	base := strings.TrimSuffix(path.Base(detected.key), path.Ext(detected.key))

	for i, detection := range detected.detections {
		box := detection.Box.Clamp(bounds.Dx(), bounds.Dy())
		if box.Width() <= 0 || box.Height() <= 0 {
			tl.Log(tl.Warning, palette.Yellow, "Skipping empty box %s of class '%s' on '%s'", detection.Box, detection.Class, detected.key)
			continue
		}

		var encoded bytes.Buffer
		if err := imaging.Encode(&encoded, imaging.Crop(detected.decoded, box.Rect()), imaging.PNG); err != nil {
			return keys, xerr.NewError(err, "encode item crop", fmt.Sprintf("%s #%d", detected.key, i))
		}

		cropKey := path.Join(p.cfg.ItemImagePrefix, fmt.Sprintf("%s_det_%d_%s.png", base, i, detection.Class))
		e = p.deps.Blobs.Upload(ctx, cropKey, encoded.Bytes(), "image/png")
		if e != nil {
			return keys, e
		}
		keys = append(keys, cropKey)
	}
	return keys, nil
}
