package pipeline

import (
	"context"
	"path"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/prices"
	"pricetag-ocr/src/pkg/storage"
)

const classItemName = "item_name"

/*
ProcessItems reads every item crop: it detects the tag fields with the tag
model, OCRs each padded field box and the whole crop, reconstructs the item
name, parses the prices with the shop's rule and writes one ItemRecord per crop.

A crop whose whole-image OCR fails still gets a record with empty text.
*/
func (p *Pipeline) ProcessItems(ctx context.Context, itemKeys []string, shopName string) (records []ItemRecord, report StageReport) {
	report = StageReport{Stage: "process", Inputs: len(itemKeys)}
	tl.Log(tl.Notice, palette.BlueBold, "%s '%s' item images for shop '%s'", "Processing", len(itemKeys), shopName)

	pass := detectionPass{table: p.deps.Tables.ItemProcessing, model: p.cfg.TagModel, withOCR: true}
	for _, itemKey := range itemKeys {
		if ctx.Err() != nil {
			report.fail(itemKey, xerr.NewError(ctx.Err(), "process items", itemKey))
			continue
		}

		detected, e := p.detectImage(ctx, itemKey, pass)
		if e != nil {
			tl.Log(tl.Error, palette.Red, "Error processing image '%s': %v", itemKey, e)
			report.fail(itemKey, e)
			continue
		}

		wholeText, e := p.deps.OCR.ExtractText(ctx, detected.content, path.Base(itemKey))
		if e != nil {
			tl.Log(tl.Warning, palette.Yellow, "Whole-image OCR failed for '%s': %v", itemKey, e)
			wholeText = ""
		}

		record := p.buildItemRecord(itemKey, shopName, detected.items, wholeText)
		e = p.deps.Records.Put(ctx, p.deps.Tables.DetectedItems, storage.Key{"image_id": itemKey}, record)
		if e != nil {
			tl.Log(tl.Error, palette.Red, "Error saving item record for '%s': %v", itemKey, e)
			report.fail(itemKey, e)
			continue
		}

		records = append(records, record)
		report.Succeeded++
	}

	tl.Log(tl.Notice1, palette.GreenBold, "%s '%s' items ('%s' failed)", "Processed", report.Succeeded, report.Failed)
	return records, report
}

// buildItemRecord fills the record from the detected fields. The last detection of a class wins.
func (p *Pipeline) buildItemRecord(imageKey string, shopName string, items []DetectionItem, wholeText string) (record ItemRecord) {
	record = ItemRecord{
		ImageID:           imageKey,
		ShopName:          shopName,
		WholeImageOCRText: wholeText,
		Model2Detections:  items,
		Valid:             true,
		ProcessedAt:       time.Now().UTC(),
	}
	if record.Model2Detections == nil {
		record.Model2Detections = []DetectionItem{}
	}

	for _, item := range items {
		text := item.Text()
		if item.ClassName == classItemName {
			correction := p.deps.Names.Correct(text)
			record.ItemName, record.ProcessedItemName = &text, &correction.Name
			record.NameDegraded = correction.Degraded
			tl.Log(tl.Info, palette.Cyan, "Item name '%s' -> '%s'", text, correction.Name)
			continue
		}

		role, ok := prices.ParseRole(item.ClassName)
		if !ok {
			continue
		}
		processed := p.deps.Prices.Parse(shopName, text, role).Values()
		switch role {
		case prices.RoleItem:
			record.ItemPrice, record.ProcessedItemPrice = &text, processed
		case prices.RoleMember:
			record.ItemMemberPrice, record.ProcessedItemMemberPrice = &text, processed
		case prices.RoleInitial:
			record.ItemInitialPrice, record.ProcessedItemInitialPrice = &text, processed
		}
		tl.Log(tl.Info, palette.Cyan, "Price '%s' (%s) -> %v", text, role, tl.PrettyForStderr(processed))
	}
	return record
}
