package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/detect"
	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/pdfpages"
	"pricetag-ocr/src/pkg/prices"
	"pricetag-ocr/src/pkg/storage"
)

func blankPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := imaging.Encode(&buffer, imaging.New(width, height, color.White), imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buffer.Bytes()
}

type fakeRenderer struct {
	pages []pdfpages.Page
}

func (r fakeRenderer) Render(ctx context.Context, document []byte, documentName string) ([]pdfpages.Page, *xerr.Error) {
	return r.pages, nil
}

type fakeDetector struct {
	byModel map[string][]detect.Detection
}

func (d fakeDetector) Detect(ctx context.Context, image []byte, imageName string, model string) ([]detect.Detection, *xerr.Error) {
	detections, ok := d.byModel[model]
	if !ok {
		return nil, xerr.NewError(fmt.Errorf("unknown model"), "detect", model)
	}
	return detections, nil
}

// fakeOCR reads the name from boxes at the top of a tag and the price from the rest.
type fakeOCR struct{}

func (fakeOCR) ExtractText(ctx context.Context, image []byte, imageName string) (string, *xerr.Error) {
	return "JOGURT BILY\n19 90", nil
}

func (fakeOCR) ExtractTextInBox(ctx context.Context, image []byte, imageName string, box detect.Box) (string, *xerr.Error) {
	if box[1] == 0 {
		return "JOGURT BILY", nil
	}
	return "19 90", nil
}

type recordingNotifier struct {
	summaries []Summary
}

func (n *recordingNotifier) Notify(ctx context.Context, summary Summary) *xerr.Error {
	n.summaries = append(n.summaries, summary)
	return nil
}

func newTestPipeline(t *testing.T) (*Pipeline, *storage.MemoryBlobStore, *storage.MemoryRecordStore) {
	t.Helper()
	blobs, records := storage.NewMemoryBlobStore(), storage.NewMemoryRecordStore()
	deps := Dependencies{
		Blobs:    blobs,
		Records:  records,
		Tables:   storage.DefaultValueConfig().Tables,
		Renderer: fakeRenderer{pages: []pdfpages.Page{{Number: 1, PNG: blankPNG(t, 100, 100)}}},
		Detector: fakeDetector{byModel: map[string][]detect.Detection{
			"model1": {
				{Box: detect.Box{10, 10, 60, 60}, Class: "shop_item", Confidence: 0.87},
				{Box: detect.Box{70, 70, 70, 90}, Class: "shop_item", Confidence: 0.4},
			},
			"model2": {
				{Box: detect.Box{0, 0, 20, 10}, Class: "item_name", Confidence: 0.9},
				{Box: detect.Box{0, 10, 20, 20}, Class: "item_price", Confidence: 0.8},
			},
		}},
		OCR:    fakeOCR{},
		Names:  names.NewCorrector(names.BuildTrie([]string{"jogurt", "bily"}), nil),
		Prices: prices.Default(),
	}
	return New(DefaultValueConfig(), deps), blobs, records
}

func TestSplitPDFValidation(t *testing.T) {
	p, blobs, _ := newTestPipeline(t)
	ctx := context.Background()

	if _, e := p.SplitPDF(ctx, "", "penny"); e == nil {
		t.Fatalf("expected an error for a missing filename")
	}
	if _, e := p.SplitPDF(ctx, "leaflet.pdf", " "); e == nil {
		t.Fatalf("expected an error for a missing shop name")
	}
	if _, e := p.SplitPDF(ctx, "leaflet.pdf", "penny"); e == nil {
		t.Fatalf("expected an error without a metadata row")
	}
	if len(blobs.Keys()) != 0 {
		t.Fatalf("nothing may be stored on a rejected split, got %v", blobs.Keys())
	}
}

func TestRunnerEndToEnd(t *testing.T) {
	p, blobs, records := newTestPipeline(t)
	ctx := context.Background()
	tables := storage.DefaultValueConfig().Tables

	metadataKey := storage.Key{"filename": "leaflet.pdf", "shop_name": "penny"}
	if e := records.Put(ctx, tables.PDFMetadata, metadataKey, PDFMetadata{Filename: "leaflet.pdf", ShopName: "penny"}); e != nil {
		t.Fatal(e)
	}
	if e := blobs.Upload(ctx, "pdfs/leaflet.pdf", []byte("%PDF-1.4"), "application/pdf"); e != nil {
		t.Fatal(e)
	}

	notifier := &recordingNotifier{}
	summary, e := NewRunner(p, notifier).Run(ctx, "leaflet.pdf", "penny")
	if e != nil {
		t.Fatalf("Run: %v", e)
	}

	if summary.RunID == "" || summary.Pages != 1 || summary.ItemImages != 1 || summary.Items != 1 || summary.Failed() != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(notifier.summaries) != 1 {
		t.Fatalf("notifier called %d times", len(notifier.summaries))
	}

	cropKey := "item_detected/valid/images/leaflet_page_1_det_0_shop_item.png"
	crop, e := blobs.Download(ctx, cropKey)
	if e != nil {
		t.Fatalf("crop not uploaded: %v (keys %v)", e, blobs.Keys())
	}
	decoded, err := imaging.Decode(bytes.NewReader(crop))
	if err != nil || decoded.Bounds().Dx() != 50 || decoded.Bounds().Dy() != 50 {
		t.Fatalf("crop must come from the unpadded box, got %v (%v)", decoded.Bounds(), err)
	}

	var pageDetections DetectionRecord
	found, e := records.Get(ctx, tables.ItemDetection, storage.Key{"image_id": "pages/valid/leaflet_page_1.png"}, &pageDetections)
	if e != nil || !found {
		t.Fatalf("page detections = %v, %v", found, e)
	}
	shopItems := pageDetections.Detections["shop_item"]
	if len(shopItems) != 2 || shopItems[0].BoundingBox != (BoundingBox{"5", "5", "65", "65"}) || shopItems[0].Confidence != "0.87" {
		t.Fatalf("page detections = %+v", pageDetections)
	}

	if records.Count(tables.ItemProcessing) != 1 {
		t.Fatalf("item processing rows = %d", records.Count(tables.ItemProcessing))
	}

	var item ItemRecord
	found, e = records.Get(ctx, tables.DetectedItems, storage.Key{"image_id": cropKey}, &item)
	if e != nil || !found {
		t.Fatalf("item record = %v, %v", found, e)
	}
	if item.ItemName == nil || *item.ItemName != "JOGURT BILY" || *item.ProcessedItemName != "jogurt bily" {
		t.Fatalf("item name = %v / %v", item.ItemName, item.ProcessedItemName)
	}
	if item.ItemPrice == nil || *item.ItemPrice != "19 90" || item.ProcessedItemPrice["item_price"] != 19.9 {
		t.Fatalf("item price = %v / %v", item.ItemPrice, item.ProcessedItemPrice)
	}
	if item.ItemMemberPrice != nil || item.ProcessedItemMemberPrice != nil {
		t.Fatalf("no member price was detected, got %v", item.ProcessedItemMemberPrice)
	}
	if item.WholeImageOCRText != "JOGURT BILY\n19 90" || !item.Valid || item.ShopName != "penny" {
		t.Fatalf("item record = %+v", item)
	}
	if len(item.Model2Detections) != 2 || item.Model2Detections[1].Text() != "19 90" {
		t.Fatalf("model2 detections = %+v", item.Model2Detections)
	}
}

func TestDetectItemsIsolatesFailures(t *testing.T) {
	p, blobs, _ := newTestPipeline(t)
	ctx := context.Background()
	if e := blobs.Upload(ctx, "pages/valid/good_page_1.png", blankPNG(t, 100, 100), "image/png"); e != nil {
		t.Fatal(e)
	}
	if e := blobs.Upload(ctx, "pages/valid/broken_page_1.png", []byte("not a png"), "image/png"); e != nil {
		t.Fatal(e)
	}

	itemKeys, report := p.DetectItems(ctx, []string{"pages/valid/missing.png", "pages/valid/broken_page_1.png", "pages/valid/good_page_1.png"})
	if report.Inputs != 3 || report.Failed != 2 || report.Succeeded != 1 || len(report.Errors) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if len(itemKeys) != 1 || itemKeys[0] != "item_detected/valid/images/good_page_1_det_0_shop_item.png" {
		t.Fatalf("item keys = %v", itemKeys)
	}
}

func TestBuildItemRecordUnparsedPrice(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	text := "akce"
	record := p.buildItemRecord("x.png", "kaufland", []DetectionItem{
		{ClassName: "item_member_price", OCRText: &text},
		{ClassName: "shop_logo"},
	}, "")

	if record.ItemMemberPrice == nil || record.ProcessedItemMemberPrice != nil {
		t.Fatalf("member price = %v / %v", record.ItemMemberPrice, record.ProcessedItemMemberPrice)
	}
	if record.ItemName != nil || record.Unparsed() != 1 {
		t.Fatalf("record = %+v", record)
	}

	var summary Summary
	summary.AddRecords([]ItemRecord{record})
	if summary.Items != 1 || summary.UnparsedPrices != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestBoundingBoxRoundTrip(t *testing.T) {
	box := detect.Box{1, 2, 30, 40}
	if got := newBoundingBox(box).Box(); got != box {
		t.Fatalf("Box() = %v", got)
	}
}
