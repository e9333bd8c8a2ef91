package pipeline

import (
	"strconv"
	"time"

	"pricetag-ocr/src/pkg/detect"
)

// PDFMetadata is the row that must exist in the metadata table before a leaflet is split.
type PDFMetadata struct {
	Filename  string `json:"filename"`
	ShopName  string `json:"shop_name"`
	ValidFrom string `json:"valid_from,omitempty"`
	ValidTo   string `json:"valid_to,omitempty"`
}

// BoundingBox keeps coordinates as strings, the way the detection tables have always stored them.
type BoundingBox struct {
	X1 string `json:"x1"`
	Y1 string `json:"y1"`
	X2 string `json:"x2"`
	Y2 string `json:"y2"`
}

func newBoundingBox(box detect.Box) BoundingBox {
	return BoundingBox{
		X1: strconv.Itoa(box[0]), Y1: strconv.Itoa(box[1]),
		X2: strconv.Itoa(box[2]), Y2: strconv.Itoa(box[3]),
	}
}

// Box converts back to pixels; unparsable coordinates become 0.
func (b BoundingBox) Box() detect.Box {
	var box detect.Box
	for i, value := range []string{b.X1, b.Y1, b.X2, b.Y2} {
		box[i], _ = strconv.Atoi(value)
	}
	return box
}

type DetectionItem struct {
	ClassName   string      `json:"class_name"`
	BoundingBox BoundingBox `json:"bounding_box"` // padded
	Confidence  string      `json:"confidence"`
	OCRText     *string     `json:"ocr_text,omitempty"`
}

func (d DetectionItem) Text() string {
	if d.OCRText == nil {
		return ""
	}
	return *d.OCRText
}

// DetectionRecord is one image's detections grouped by class.
type DetectionRecord struct {
	ImageID    string                     `json:"image_id"`
	Detections map[string][]DetectionItem `json:"detections"`
}

func groupByClass(items []DetectionItem) map[string][]DetectionItem {
	grouped := map[string][]DetectionItem{}
	for _, item := range items {
		grouped[item.ClassName] = append(grouped[item.ClassName], item)
	}
	return grouped
}

/*
ItemRecord is the final row written per item image.

Raw OCR strings sit next to their processed values. A processed price is nil
when the retailer rule found nothing.
*/
type ItemRecord struct {
	ImageID                   string          `json:"image_id"`
	ShopName                  string          `json:"shop_name"`
	ItemName                  *string         `json:"item_name"`
	ProcessedItemName         *string         `json:"processed_item_name"`
	NameDegraded              bool            `json:"name_degraded"`
	WholeImageOCRText         string          `json:"whole_image_ocr_text"`
	Model2Detections          []DetectionItem `json:"model2_detections"`
	ItemPrice                 *string         `json:"item_price"`
	ProcessedItemPrice        map[string]any  `json:"processed_item_price"`
	ItemMemberPrice           *string         `json:"item_member_price"`
	ProcessedItemMemberPrice  map[string]any  `json:"processed_item_member_price"`
	ItemInitialPrice          *string         `json:"item_initial_price"`
	ProcessedItemInitialPrice map[string]any  `json:"processed_item_initial_price"`
	Valid                     bool            `json:"valid"`
	ProcessedAt               time.Time       `json:"processed_at"`
}

// Unparsed counts price fields that had OCR text but no parsed value.
func (r ItemRecord) Unparsed() (count int) {
	pairs := []struct {
		raw       *string
		processed map[string]any
	}{
		{r.ItemPrice, r.ProcessedItemPrice},
		{r.ItemMemberPrice, r.ProcessedItemMemberPrice},
		{r.ItemInitialPrice, r.ProcessedItemInitialPrice},
	}
	for _, pair := range pairs {
		if pair.raw != nil && pair.processed == nil {
			count++
		}
	}
	return count
}
