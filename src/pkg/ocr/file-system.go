package ocr

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// runDirectory holds the artifacts of one tag reading, e.g. ./out/2025-11-26_16-35-31.
type runDirectory struct {
	path string
}

/*
newRunDirectory creates a timestamp-named directory under root (and root
itself when missing). An empty root means "./out".
*/
func newRunDirectory(root string, now time.Time) (dir runDirectory, e *xerr.Error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "./out"
	}
	dir.path = filepath.Join(root, now.Format("2006-01-02_15-04-05"))

	err := os.MkdirAll(dir.path, 0o755)
	if err != nil {
		e = xerr.NewError(err, "create output directory", dir.path)
		return dir, e
	}

	tl.Log(tl.Info1, palette.Blue, "Ensured output directory '%s'", dir.path)
	return dir, nil
}

func (d runDirectory) file(name string) string {
	return filepath.Join(d.path, name)
}

func (d runDirectory) writeBytes(name string, content []byte) (e *xerr.Error) {
	destinationPath := d.file(name)

	err := os.WriteFile(destinationPath, content, 0o644)
	if err != nil {
		e = xerr.NewError(err, "write output file", destinationPath)
		return e
	}

	tl.Log(tl.Verbose, palette.GreenDim, "Saved '%s'", destinationPath)
	return nil
}

func (d runDirectory) writeText(name string, text string) (e *xerr.Error) {
	return d.writeBytes(name, []byte(text))
}

// writeJSON stores value pretty-printed.
func (d runDirectory) writeJSON(name string, value any) (e *xerr.Error) {
	jsonBytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		e = xerr.NewError(err, "marshal value to JSON", d.file(name))
		return e
	}
	return d.writeBytes(name, jsonBytes)
}
