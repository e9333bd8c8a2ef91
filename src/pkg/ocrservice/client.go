/*
Package ocrservice is the client of the remote OCR model.

The service exposes two routes taking the image as multipart field "image":
/extract_text reads the whole image, /extract_text_with_box reads only the
rectangle sent as form field "json" = {"box": [x1, y1, x2, y2]}. Both answer
{"extracted_text": "..."}.
*/
package ocrservice

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/config"
	"pricetag-ocr/src/pkg/detect"
	"pricetag-ocr/src/pkg/remote"
)

type Config struct {
	BaseURL           string  `json:"base_url,omitempty"`
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
	Burst             int     `json:"burst,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		BaseURL:        "http://localhost:5001",
		TimeoutSeconds: 60,
		Burst:          1,
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "ocrservice", "not provided", "default ocrservice config")
		return
	}

	defaultConfig := DefaultValueConfig()
	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "ocrservice", "provided", "local ocrservice config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

type Client struct {
	remote *remote.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		remote: remote.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.RequestsPerSecond, cfg.Burst),
	}
}

type extractResponse struct {
	ExtractedText string `json:"extracted_text"`
}

type boxRequest struct {
	Box detect.Box `json:"box"`
}

// ExtractText reads all text of an encoded image.
func (c *Client) ExtractText(ctx context.Context, image []byte, imageName string) (text string, e *xerr.Error) {
	var response extractResponse
	e = c.remote.PostMultipartJSON(ctx, "/extract_text", nil, imageParts(image, imageName), nil, &response)
	if e != nil {
		return "", e
	}

	tl.Log(tl.Verbose, palette.CyanDim, "Extracted text of '%s': '%s'", imageName, response.ExtractedText)
	return response.ExtractedText, nil
}

// ExtractTextInBox reads the text inside box of an encoded image.
func (c *Client) ExtractTextInBox(ctx context.Context, image []byte, imageName string, box detect.Box) (text string, e *xerr.Error) {
	boxJSON, err := json.Marshal(boxRequest{Box: box})
	if err != nil {
		return "", xerr.NewError(err, "marshal OCR box", box.String())
	}

	var response extractResponse
	e = c.remote.PostMultipartJSON(
		ctx, "/extract_text_with_box", nil, imageParts(image, imageName),
		map[string]string{"json": string(boxJSON)}, &response,
	)
	if e != nil {
		return "", e
	}

	tl.Log(tl.Verbose, palette.CyanDim, "Extracted text of '%s' in box %s: '%s'", imageName, box, response.ExtractedText)
	return response.ExtractedText, nil
}

func imageParts(image []byte, imageName string) []remote.FilePart {
	return []remote.FilePart{{Field: "image", Filename: filepath.Base(imageName), Content: image}}
}
