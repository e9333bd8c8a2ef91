package main

import (
	"context"
	"flag"

	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/app"
	"pricetag-ocr/src/pkg/queue"
)

// main runs the pipeline stage handlers until the asynq server is stopped.
func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	flag.Parse()
	app.InitializeConfig(*configPath)

	ctx := context.Background()
	corrector, release, e := app.LoadNameEngine(ctx)
	e.QuitIf(xerr.ErrorTypeError)
	defer release()

	p, e := app.NewPipeline(ctx, corrector)
	e.QuitIf(xerr.ErrorTypeError)

	client := queue.NewClient(queue.Cfg)
	defer func() { _ = client.Close() }()

	registry := queue.NewHandlersRegistry()
	queue.NewStageHandlers(p, client, app.NewNotifier()).Register(registry)

	e = queue.Serve(queue.Cfg, registry)
	e.QuitIf(xerr.ErrorTypeError)
}
