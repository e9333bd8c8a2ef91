/*
Package queue runs the leaflet pipeline as asynq tasks:

	pipeline:split -> pipeline:detect -> pipeline:process

Each handler runs one stage and enqueues the next with the keys it produced.
*/
package queue

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	Addr               string `json:"addr,omitempty"`
	DB                 int    `json:"db,omitempty"`
	Queue              string `json:"queue,omitempty"`
	Concurrency        int    `json:"concurrency,omitempty"`
	MaxRetry           int    `json:"max_retry,omitempty"`
	TaskTimeoutMinutes int    `json:"task_timeout_minutes,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Addr:               "localhost:6379",
		Queue:              "pipeline",
		Concurrency:        4,
		MaxRetry:           1,
		TaskTimeoutMinutes: 30,
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "queue", "not provided", "default queue config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "queue", "provided", "local queue config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
