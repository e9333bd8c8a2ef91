/*
Package app wires the packages together for the programs under src/cmd.

It reads every package's section of the configuration file and builds the
long-lived components (name engine, stores, pipeline) from the resulting
package configs. The local tesseract reader is left out so that the binaries
importing app do not link cgo.
*/
package app

import (
	"context"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/cache"
	"pricetag-ocr/src/pkg/config"
	"pricetag-ocr/src/pkg/detect"
	echomw "pricetag-ocr/src/pkg/echo-middleware"
	"pricetag-ocr/src/pkg/email"
	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/ocrservice"
	"pricetag-ocr/src/pkg/pdfpages"
	"pricetag-ocr/src/pkg/pipeline"
	"pricetag-ocr/src/pkg/prices"
	"pricetag-ocr/src/pkg/queue"
	"pricetag-ocr/src/pkg/storage"
)

// InitializeConfig loads configPath and initializes every package config from its section.
func InitializeConfig(configPath string) {
	config.InitializeConfig(configPath)

	InitializeSection("names", names.InitializeConfig)
	InitializeSection("detect", detect.InitializeConfig)
	InitializeSection("ocr_service", ocrservice.InitializeConfig)
	InitializeSection("pdfpages", pdfpages.InitializeConfig)
	InitializeSection("storage", storage.InitializeConfig)
	InitializeSection("cache", cache.InitializeConfig)
	InitializeSection("queue", queue.InitializeConfig)
	InitializeSection("pipeline", pipeline.InitializeConfig)
	InitializeSection("email", email.InitializeConfig)
	InitializeSection("echo_middleware", echomw.InitializeConfig)
}

/*
InitializeSection decodes the named section and passes it to initialize, or
passes nil when the section is absent. A section that does not decode stops
the program.
*/
func InitializeSection[T any](name string, initialize func(*T)) {
	local := new(T)
	found, e := config.Section(name, local)
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
	if !found {
		initialize(nil)
		return
	}
	initialize(local)
}

type NameCorrector interface {
	Correct(raw string) names.Correction
}

/*
LoadNameEngine builds the name corrector from names.Cfg. When the cache is
enabled the corrector is wrapped with the redis cache; an unreachable redis
only disables caching.

The returned release func closes the cache connection and is never nil.
*/
func LoadNameEngine(ctx context.Context) (corrector NameCorrector, release func(), e *xerr.Error) {
	release = func() {}

	base, e := names.LoadCorrector(names.Cfg)
	if e != nil {
		return nil, release, e
	}
	if !cache.Cfg.Enabled {
		return base, release, nil
	}

	redisCache, connectErr := cache.Connect(ctx, cache.Cfg)
	if connectErr != nil {
		tl.Log(tl.Warning, palette.YellowBold, "Name cache is %s: %v", "disabled", connectErr)
		return base, release, nil
	}
	release = func() {
		if err := redisCache.Close(); err != nil {
			tl.Log(tl.Warning, palette.Yellow, "Unable to close name cache: %v", err)
		}
	}
	return cache.NewCachedCorrector(base, redisCache, cache.Cfg), release, nil
}

// NewPipeline opens the configured stores and connects the remote models.
func NewPipeline(ctx context.Context, corrector NameCorrector) (p *pipeline.Pipeline, e *xerr.Error) {
	blobs, records, e := storage.Open(ctx, storage.Cfg)
	if e != nil {
		return nil, e
	}

	p = pipeline.New(pipeline.Cfg, pipeline.Dependencies{
		Blobs:    blobs,
		Records:  records,
		Tables:   storage.Cfg.Tables,
		Renderer: pdfpages.NewRenderer(pdfpages.Cfg),
		Detector: detect.NewClient(detect.Cfg),
		OCR:      ocrservice.NewClient(ocrservice.Cfg),
		Names:    corrector,
		Prices:   prices.Default(),
	})
	return p, nil
}

// NewNotifier returns the run summary notifier; it only logs while email is disabled.
func NewNotifier() *email.RunNotifier {
	return email.NewRunNotifier(email.Cfg)
}
