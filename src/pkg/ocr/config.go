package ocr

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	Language    string `json:"language,omitempty"` // tesseract traineddata name
	ScaleFactor int    `json:"scale_factor,omitempty"`
	Threshold   int    `json:"threshold,omitempty"` // binarization cut, 0-255
	OutputDir   string `json:"output_dir,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Language:    "ces",
		ScaleFactor: 2,
		Threshold:   200,
		OutputDir:   "./out",
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "ocr", "not provided", "default ocr config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "ocr", "provided", "local ocr config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
