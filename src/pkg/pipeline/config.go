package pipeline

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	PDFPrefix       string  `json:"pdf_prefix,omitempty"`
	PagePrefix      string  `json:"page_prefix,omitempty"`
	ItemImagePrefix string  `json:"item_image_prefix,omitempty"`
	PageModel       string  `json:"page_model,omitempty"` // finds tags on a page
	TagModel        string  `json:"tag_model,omitempty"`  // finds fields inside a tag
	Padding         float64 `json:"padding,omitempty"`    // fraction of box size added on each side
}

func DefaultValueConfig() Config {
	return Config{
		PDFPrefix:       "pdfs",
		PagePrefix:      "pages/valid",
		ItemImagePrefix: "item_detected/valid/images",
		PageModel:       "model1",
		TagModel:        "model2",
		Padding:         0.10,
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "pipeline", "not provided", "default pipeline config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "pipeline", "provided", "local pipeline config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
