package cache

import (
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	Enabled                 bool   `json:"enabled,omitempty"`
	Addr                    string `json:"addr,omitempty"`
	DB                      int    `json:"db,omitempty"`
	KeyPrefix               string `json:"key_prefix,omitempty"`
	TTLSeconds              int    `json:"ttl_seconds,omitempty"`
	OperationTimeoutSeconds int    `json:"operation_timeout_seconds,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Addr:                    "localhost:6379",
		KeyPrefix:               "pricetag:name:",
		TTLSeconds:              7 * 24 * 60 * 60,
		OperationTimeoutSeconds: 2,
	}
}

func (c Config) ttl() time.Duration { return time.Duration(c.TTLSeconds) * time.Second }

func (c Config) operationTimeout() time.Duration {
	if c.OperationTimeoutSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.OperationTimeoutSeconds) * time.Second
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "cache", "not provided", "default cache config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "cache", "provided", "local cache config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
