package queue

import (
	"github.com/hibiken/asynq"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Serve runs the asynq worker until it receives SIGTERM or SIGINT.
func Serve(cfg Config, registry *HandlersRegistry) (e *xerr.Error) {
	srv := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cfg.Queue: 1,
			},
		},
	)

	tl.Log(tl.Notice, palette.BlueBold, "%s worker on queue '%s' (concurrency %s, redis '%s')", "Starting", cfg.Queue, cfg.Concurrency, cfg.Addr)
	if err := srv.Run(registry.Mux()); err != nil {
		return xerr.NewError(err, "run asynq worker", cfg.Addr)
	}
	tl.Log(tl.Notice1, palette.GreenBold, "%s worker", "Stopped")
	return nil
}
