package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/api"
	"pricetag-ocr/src/pkg/app"
	echomw "pricetag-ocr/src/pkg/echo-middleware"
	"pricetag-ocr/src/pkg/queue"
)

/*
main serves the name and price engines over HTTP until SIGINT or SIGTERM.

With --runs the API also accepts leaflet runs and enqueues them for the worker.
*/
func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	acceptRuns := flag.Bool("runs", false, "Accept POST /v1/runs and enqueue them on the workflow queue.")
	flag.Parse()

	token := echomw.TokenFromEnv()
	if token == "" {
		tl.Log(tl.Error, palette.Red, "%s environment variable is %s", echomw.EnvAPIBearerToken, "required")
		os.Exit(1)
	}
	app.InitializeConfig(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corrector, release, e := app.LoadNameEngine(ctx)
	e.QuitIf(xerr.ErrorTypeError)
	defer release()

	deps := api.Dependencies{Names: corrector, Token: token}
	if *acceptRuns {
		client := queue.NewClient(queue.Cfg)
		defer func() { _ = client.Close() }()
		deps.Runs = client
	}

	e = api.NewServer(echomw.Cfg, deps).Start(ctx)
	e.QuitIf(xerr.ErrorTypeError)
}
