// Package detect talks to the object-detection model service that finds
// price tags on leaflet pages and the fields (name, prices) inside a tag.
package detect

import (
	"fmt"
	"image"

	"pricetag-ocr/src/pkg/util"
)

// Box is a pixel rectangle [x1, y1, x2, y2] as the model service reports it.
type Box [4]int

func (b Box) Width() int  { return b[2] - b[0] }
func (b Box) Height() int { return b[3] - b[1] }

func (b Box) Rect() image.Rectangle {
	return image.Rect(b[0], b[1], b[2], b[3])
}

/*
Pad grows the box by fraction of its width and height on every side, with the
padding truncated to whole pixels, and clamps it to a width x height image.
*/
func (b Box) Pad(fraction float64, width, height int) Box {
	padWidth := int(float64(b.Width()) * fraction)
	padHeight := int(float64(b.Height()) * fraction)

	return Box{
		util.Clamp(b[0]-padWidth, 0, width),
		util.Clamp(b[1]-padHeight, 0, height),
		util.Clamp(b[2]+padWidth, 0, width),
		util.Clamp(b[3]+padHeight, 0, height),
	}
}

// Clamp limits the box to a width x height image without padding.
func (b Box) Clamp(width, height int) Box {
	return b.Pad(0, width, height)
}

func (b Box) String() string {
	return fmt.Sprintf("[%d %d %d %d]", b[0], b[1], b[2], b[3])
}

// Detection is one object found by the model.
type Detection struct {
	Box        Box     `json:"box"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type predictResponse struct {
	Detections []Detection `json:"detections"`
}
