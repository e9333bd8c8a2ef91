package detect

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	BaseURL           string  `json:"base_url,omitempty"`
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"` // 0 means unlimited
	Burst             int     `json:"burst,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		BaseURL:        "http://localhost:5001",
		TimeoutSeconds: 120,
		Burst:          1,
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "detect", "not provided", "default detect config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "detect", "provided", "local detect config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
