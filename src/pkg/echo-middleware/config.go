package echomw

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	Address             string  `json:"address,omitempty"`
	Port                int     `json:"port,omitempty"`
	MiddlewareRateLimit float64 `json:"middleware_rate_limit,omitempty"` // requests per second per IP
	MiddlewareBurst     int     `json:"middleware_burst,omitempty"`
	BodyLimit           string  `json:"body_limit,omitempty"` // echo size notation, e.g. "1M"
}

func DefaultValueConfig() Config {
	return Config{
		Address:             "127.0.0.1",
		Port:                8402,
		MiddlewareRateLimit: 5,
		MiddlewareBurst:     50,
		BodyLimit:           "1M",
	}
}

var Cfg Config = DefaultValueConfig()

func (c Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "echo-middleware", "not provided", "default echo-middleware config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "echo-middleware", "provided", "local echo-middleware config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
