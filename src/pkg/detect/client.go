package detect

import (
	"context"
	"net/url"
	"path/filepath"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/remote"
)

// Client calls POST /predict?model=<model> with the image as multipart field "image".
type Client struct {
	remote *remote.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		remote: remote.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.RequestsPerSecond, cfg.Burst),
	}
}

// Detect runs model over one encoded image.
func (c *Client) Detect(ctx context.Context, image []byte, imageName string, model string) (detections []Detection, e *xerr.Error) {
	tl.Log(tl.Info1, palette.Cyan, "%s '%s' with model '%s'", "Detecting objects in", imageName, model)

	var response predictResponse
	e = c.remote.PostMultipartJSON(
		ctx, "/predict", url.Values{"model": {model}},
		[]remote.FilePart{{Field: "image", Filename: filepath.Base(imageName), Content: image}},
		nil, &response,
	)
	if e != nil {
		return nil, e
	}

	tl.Log(tl.Info1, palette.Green, "Received '%s' detections for '%s'", len(response.Detections), imageName)
	return response.Detections, nil
}
