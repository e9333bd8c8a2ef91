/*
Package pdfpages splits a leaflet PDF into page images.

Pages are counted with ledongthuc/pdf and rasterized by poppler's pdftoppm,
which must be installed on the worker host.
*/
package pdfpages

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Page is one rendered page, numbered from 1.
type Page struct {
	Number int
	PNG    []byte
}

// CountPages returns the number of pages of an in-memory PDF.
func CountPages(document []byte) (count int, e *xerr.Error) {
	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		e = xerr.NewError(err, "open PDF", fmt.Sprintf("%d bytes", len(document)))
		return 0, e
	}
	return reader.NumPage(), nil
}

type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

/*
Render rasterizes every page of document to PNG at the configured DPI.

The PDF is written to a scratch directory that is removed afterwards. Pages
come back ordered by number.
*/
func (r *Renderer) Render(ctx context.Context, document []byte, documentName string) (pages []Page, e *xerr.Error) {
	expected, e := CountPages(document)
	if e != nil {
		return nil, e
	}
	tl.Log(tl.Info, palette.Blue, "%s '%s' (%s pages) at '%s' dpi", "Rendering", documentName, expected, r.cfg.DPI)

	scratch, err := os.MkdirTemp(r.cfg.TempDir, "pdfpages-*")
	if err != nil {
		return nil, xerr.NewError(err, "create scratch directory", r.cfg.TempDir)
	}
	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	inputPath := filepath.Join(scratch, "document.pdf")
	if err = os.WriteFile(inputPath, document, 0o644); err != nil {
		return nil, xerr.NewError(err, "write PDF to scratch directory", inputPath)
	}

	command := exec.CommandContext(
		ctx, r.cfg.PdftoppmPath,
		"-r", strconv.Itoa(r.cfg.DPI), "-png", inputPath, filepath.Join(scratch, "page"),
	)
	output, err := command.CombinedOutput()
	if err != nil {
		err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
		return nil, xerr.NewError(err, "render PDF pages", documentName)
	}

	pages, e = collectPages(scratch)
	if e != nil {
		return nil, e
	}
	if len(pages) != expected {
		tl.Log(tl.Warning, palette.Yellow, "PDF '%s' has '%s' pages but '%s' were rendered", documentName, expected, len(pages))
	}

	tl.Log(tl.Info1, palette.Green, "Rendered '%s' pages of '%s'", len(pages), documentName)
	return pages, nil
}

// collectPages reads pdftoppm output files (page-1.png, page-01.png, ...) in page order.
func collectPages(dir string) (pages []Page, e *xerr.Error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerr.NewError(err, "list rendered pages", dir)
	}

	for _, entry := range entries {
		number, ok := pageNumber(entry.Name())
		if !ok {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, xerr.NewError(err, "read rendered page", entry.Name())
		}
		pages = append(pages, Page{Number: number, PNG: content})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

func pageNumber(fileName string) (number int, ok bool) {
	if !strings.HasPrefix(fileName, "page-") || !strings.HasSuffix(fileName, ".png") {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(fileName, "page-"), ".png")
	number, err := strconv.Atoi(digits)
	if err != nil || number < 1 {
		return 0, false
	}
	return number, true
}

// PageKey names a rendered page in the blob store: pages/valid/<base>_page_<n>.png.
func PageKey(prefix string, documentName string, number int) string {
	base := strings.TrimSuffix(filepath.Base(documentName), filepath.Ext(documentName))
	return fmt.Sprintf("%s/%s_page_%d.png", strings.TrimRight(prefix, "/"), base, number)
}
