package queue

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Client struct {
	client enqueuer
	closer func() error
	cfg    Config
}

func redisOpt(cfg Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       cfg.DB,
	}
}

func NewClient(cfg Config) *Client {
	client := asynq.NewClient(redisOpt(cfg))
	return &Client{client: client, closer: client.Close, cfg: cfg}
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

/*
EnqueueRun starts the workflow for one leaflet and returns the run id.

Only the split task is enqueued here; each stage enqueues the next one when
it finishes.
*/
func (c *Client) EnqueueRun(ctx context.Context, filename string, shopName string) (runID string, e *xerr.Error) {
	payload := SplitPayload{
		RunID:     uuid.NewString(),
		Filename:  strings.TrimSpace(filename),
		ShopName:  strings.TrimSpace(shopName),
		StartedAt: time.Now().UTC(),
	}
	e = c.enqueue(ctx, TypeSplit, payload)
	if e != nil {
		return "", e
	}
	return payload.RunID, nil
}

func (c *Client) EnqueueDetect(ctx context.Context, payload DetectPayload) (e *xerr.Error) {
	return c.enqueue(ctx, TypeDetect, payload)
}

func (c *Client) EnqueueProcess(ctx context.Context, payload ProcessPayload) (e *xerr.Error) {
	return c.enqueue(ctx, TypeProcess, payload)
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any) (e *xerr.Error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return xerr.NewError(err, "marshal task payload", taskType)
	}

	task := asynq.NewTask(taskType, data)
	info, err := c.client.EnqueueContext(
		ctx, task,
		asynq.Queue(c.cfg.Queue),
		asynq.MaxRetry(c.cfg.MaxRetry),
		asynq.Timeout(time.Duration(c.cfg.TaskTimeoutMinutes)*time.Minute),
	)
	if err != nil {
		return xerr.NewError(err, "enqueue task", taskType)
	}

	tl.Log(tl.Info1, palette.Green, "%s task '%s' (id '%s') on queue '%s'", "Enqueued", taskType, taskID(info), c.cfg.Queue)
	return nil
}

func taskID(info *asynq.TaskInfo) string {
	if info == nil {
		return ""
	}
	return info.ID
}
