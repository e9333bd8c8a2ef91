package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/pdfpages"
	"pricetag-ocr/src/pkg/storage"
)

/*
SplitPDF renders a registered leaflet into page images and returns their keys.

The leaflet must have a metadata row keyed by {filename, shop_name}; without
one nothing is downloaded. Unlike the later stages a failure here fails the
whole run, since there is nothing to continue with.
*/
func (p *Pipeline) SplitPDF(ctx context.Context, filename string, shopName string) (pageKeys []string, e *xerr.Error) {
	filename, shopName = strings.TrimSpace(filename), strings.TrimSpace(shopName)
	if filename == "" || shopName == "" {
		err := fmt.Errorf("filename '%s' and shop name '%s' are both required", filename, shopName)
		return nil, xerr.NewError(err, "validate split request", nil)
	}
	tl.Log(tl.Notice, palette.BlueBold, "%s '%s' for shop '%s'", "Splitting leaflet", filename, shopName)

	var metadata PDFMetadata
	key := storage.Key{"filename": filename, "shop_name": shopName}
	found, e := p.deps.Records.Get(ctx, p.deps.Tables.PDFMetadata, key, &metadata)
	if e != nil {
		return nil, e
	}
	if !found {
		err := fmt.Errorf("no row in '%s' for filename '%s' and shop '%s'", p.deps.Tables.PDFMetadata, filename, shopName)
		return nil, xerr.NewError(err, "look up PDF metadata", key)
	}

	documentKey := path.Join(p.cfg.PDFPrefix, filename)
	document, e := p.deps.Blobs.Download(ctx, documentKey)
	if e != nil {
		return nil, e
	}

	pages, e := p.deps.Renderer.Render(ctx, document, filename)
	if e != nil {
		return nil, e
	}

	for _, page := range pages {
		pageKey := pdfpages.PageKey(p.cfg.PagePrefix, filename, page.Number)
		e = p.deps.Blobs.Upload(ctx, pageKey, page.PNG, "image/png")
		if e != nil {
			return pageKeys, e
		}
		pageKeys = append(pageKeys, pageKey)
	}

	tl.Log(tl.Notice1, palette.GreenBold, "%s '%s' into '%s' pages", "Split", filename, len(pageKeys))
	return pageKeys, nil
}
