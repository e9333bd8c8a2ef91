package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/pipeline"
)

// StageRunner is what the task handlers drive; *pipeline.Pipeline implements it.
type StageRunner interface {
	SplitPDF(ctx context.Context, filename string, shopName string) ([]string, *xerr.Error)
	DetectItems(ctx context.Context, pageKeys []string) ([]string, pipeline.StageReport)
	ProcessItems(ctx context.Context, itemKeys []string, shopName string) ([]pipeline.ItemRecord, pipeline.StageReport)
}

type stageEnqueuer interface {
	EnqueueDetect(ctx context.Context, payload DetectPayload) *xerr.Error
	EnqueueProcess(ctx context.Context, payload ProcessPayload) *xerr.Error
}

/*
StageHandlers runs one pipeline stage per task and enqueues the next stage.

A stage in which every input failed returns an error so the task is retried;
partial failures are only logged. Malformed payloads are never retried.
*/
type StageHandlers struct {
	stages   StageRunner
	next     stageEnqueuer
	notifier pipeline.Notifier
}

// NewStageHandlers wires the handlers; notifier may be nil.
func NewStageHandlers(stages StageRunner, next *Client, notifier pipeline.Notifier) *StageHandlers {
	return &StageHandlers{stages: stages, next: next, notifier: notifier}
}

// Register adds the three stage handlers to registry.
func (h *StageHandlers) Register(registry *HandlersRegistry) {
	registry.Register(TypeSplit, asynq.HandlerFunc(h.HandleSplit))
	registry.Register(TypeDetect, asynq.HandlerFunc(h.HandleDetect))
	registry.Register(TypeProcess, asynq.HandlerFunc(h.HandleProcess))
}

func decode(t *asynq.Task, payload any) error {
	if err := json.Unmarshal(t.Payload(), payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (h *StageHandlers) HandleSplit(ctx context.Context, t *asynq.Task) error {
	var payload SplitPayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	tl.Log(tl.Notice, palette.PurpleBold, "%s run '%s' for '%s' (%s)", "Starting", payload.RunID, payload.Filename, payload.ShopName)

	pageKeys, e := h.stages.SplitPDF(ctx, payload.Filename, payload.ShopName)
	if e != nil {
		return fmt.Errorf("split %s: %v", payload.Filename, e)
	}
	if len(pageKeys) == 0 {
		tl.Log(tl.Warning, palette.Yellow, "Run '%s': leaflet '%s' has %s", payload.RunID, payload.Filename, "no pages")
		return nil
	}

	if e = h.next.EnqueueDetect(ctx, DetectPayload{SplitPayload: payload, PageKeys: pageKeys}); e != nil {
		return fmt.Errorf("enqueue detect stage: %v", e)
	}
	return nil
}

func (h *StageHandlers) HandleDetect(ctx context.Context, t *asynq.Task) error {
	var payload DetectPayload
	if err := decode(t, &payload); err != nil {
		return err
	}

	itemKeys, report := h.stages.DetectItems(ctx, payload.PageKeys)
	if allFailed(report) {
		return fmt.Errorf("detect stage of run %s: all %d pages failed", payload.RunID, report.Inputs)
	}
	if len(itemKeys) == 0 {
		tl.Log(tl.Warning, palette.Yellow, "Run '%s': %s on '%s' pages", payload.RunID, "no items detected", len(payload.PageKeys))
		return nil
	}

	next := ProcessPayload{
		SplitPayload: payload.SplitPayload,
		Pages:        len(payload.PageKeys),
		DetectReport: report,
		ItemKeys:     itemKeys,
	}
	if e := h.next.EnqueueProcess(ctx, next); e != nil {
		return fmt.Errorf("enqueue process stage: %v", e)
	}
	return nil
}

func (h *StageHandlers) HandleProcess(ctx context.Context, t *asynq.Task) error {
	var payload ProcessPayload
	if err := decode(t, &payload); err != nil {
		return err
	}

	records, report := h.stages.ProcessItems(ctx, payload.ItemKeys, payload.ShopName)
	if allFailed(report) {
		return fmt.Errorf("process stage of run %s: all %d item images failed", payload.RunID, report.Inputs)
	}

	summary := pipeline.Summary{
		RunID:      payload.RunID,
		Filename:   payload.Filename,
		ShopName:   payload.ShopName,
		StartedAt:  payload.StartedAt,
		FinishedAt: time.Now().UTC(),
		Pages:      payload.Pages,
		ItemImages: len(payload.ItemKeys),
		Stages:     []pipeline.StageReport{payload.DetectReport, report},
	}
	summary.AddRecords(records)
	tl.Log(
		tl.Notice1, palette.GreenBold, "%s run '%s': '%s' items, '%s' failed inputs",
		"Finished", summary.RunID, summary.Items, summary.Failed(),
	)

	if h.notifier != nil {
		if e := h.notifier.Notify(ctx, summary); e != nil {
			tl.Log(tl.Warning, palette.Yellow, "Run summary %s: %v", "was not sent", e)
		}
	}
	return nil
}

func allFailed(report pipeline.StageReport) bool {
	return report.Inputs > 0 && report.Failed == report.Inputs
}
