package pdfpages

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPageNumber(t *testing.T) {
	tests := []struct {
		name   string
		number int
		ok     bool
	}{
		{"page-1.png", 1, true},
		{"page-07.png", 7, true},
		{"page-120.png", 120, true},
		{"page-0.png", 0, false},
		{"page-x.png", 0, false},
		{"document.pdf", 0, false},
		{"page-3.ppm", 0, false},
	}
	for _, tc := range tests {
		number, ok := pageNumber(tc.name)
		if number != tc.number || ok != tc.ok {
			t.Fatalf("pageNumber(%q) = %d, %v", tc.name, number, ok)
		}
	}
}

func TestCollectPagesOrdersByNumber(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"page-10.png": "ten", "page-02.png": "two", "page-01.png": "one", "document.pdf": "%PDF",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pages, e := collectPages(dir)
	if e != nil {
		t.Fatalf("collectPages: %v", e)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages", len(pages))
	}
	for i, want := range []string{"one", "two", "ten"} {
		if string(pages[i].PNG) != want {
			t.Fatalf("page %d = %q, want %q", i, pages[i].PNG, want)
		}
	}
}

func TestPageKey(t *testing.T) {
	if got := PageKey("pages/valid/", "leaflet-week-42.pdf", 3); got != "pages/valid/leaflet-week-42_page_3.png" {
		t.Fatalf("PageKey = %q", got)
	}
}

func TestRenderRejectsInvalidPDF(t *testing.T) {
	if _, e := NewRenderer(DefaultValueConfig()).Render(context.Background(), []byte("not a pdf"), "x.pdf"); e == nil {
		t.Fatalf("expected an error")
	}
	if _, e := CountPages(nil); e == nil {
		t.Fatalf("expected an error for an empty document")
	}
}
