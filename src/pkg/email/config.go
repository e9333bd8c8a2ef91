package email

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	Enabled        bool     `json:"enabled,omitempty"` // false logs summaries instead of sending them
	Provider       Provider `json:"provider,omitempty"`
	Sender         string   `json:"sender,omitempty"`
	Recipients     []string `json:"recipients,omitempty"`
	SubjectPrefix  string   `json:"subject_prefix,omitempty"`
	MailgunEU      bool     `json:"mailgun_eu,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Provider:       ProviderMailgun,
		SubjectPrefix:  "[pricetag-ocr]",
		TimeoutSeconds: 30,
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "email", "not provided", "default email config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "email", "provided", "local email config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
