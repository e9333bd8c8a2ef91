package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// Summary describes one leaflet run for logs and the notification email.
type Summary struct {
	RunID          string        `json:"run_id"`
	Filename       string        `json:"filename"`
	ShopName       string        `json:"shop_name"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	Pages          int           `json:"pages"`
	ItemImages     int           `json:"item_images"`
	Items          int           `json:"items"`
	DegradedNames  []string      `json:"degraded_names,omitempty"`
	UnparsedPrices int           `json:"unparsed_prices"`
	Stages         []StageReport `json:"stages"`
}

func (s Summary) Duration() time.Duration { return s.FinishedAt.Sub(s.StartedAt) }

// Failed counts inputs that failed in any stage.
func (s Summary) Failed() (failed int) {
	for _, stage := range s.Stages {
		failed += stage.Failed
	}
	return failed
}

// AddRecords folds processed items into the summary.
func (s *Summary) AddRecords(records []ItemRecord) {
	s.Items += len(records)
	for _, record := range records {
		if record.NameDegraded && record.ProcessedItemName != nil {
			s.DegradedNames = append(s.DegradedNames, *record.ProcessedItemName)
		}
		s.UnparsedPrices += record.Unparsed()
	}
}

type Notifier interface {
	Notify(ctx context.Context, summary Summary) *xerr.Error
}

// Runner chains the stages in-process. A nil notifier sends nothing.
type Runner struct {
	pipeline *Pipeline
	notifier Notifier
}

func NewRunner(pipeline *Pipeline, notifier Notifier) *Runner {
	return &Runner{pipeline: pipeline, notifier: notifier}
}

/*
Run splits, detects and processes one leaflet.

Only a split failure fails the run; per-image failures end up in the stage
reports of the returned summary. Notification errors are logged.
*/
func (r *Runner) Run(ctx context.Context, filename string, shopName string) (summary Summary, e *xerr.Error) {
	summary = Summary{RunID: uuid.NewString(), Filename: filename, ShopName: shopName, StartedAt: time.Now().UTC()}
	tl.Log(tl.Notice, palette.PurpleBold, "%s run '%s' for '%s' (%s)", "Starting", summary.RunID, filename, shopName)

	pageKeys, e := r.pipeline.SplitPDF(ctx, filename, shopName)
	if e != nil {
		return summary, e
	}
	summary.Pages = len(pageKeys)

	itemKeys, detectReport := r.pipeline.DetectItems(ctx, pageKeys)
	summary.ItemImages = len(itemKeys)
	summary.Stages = append(summary.Stages, detectReport)

	records, processReport := r.pipeline.ProcessItems(ctx, itemKeys, shopName)
	summary.Stages = append(summary.Stages, processReport)
	summary.AddRecords(records)
	summary.FinishedAt = time.Now().UTC()

	tl.LogJSON(tl.Verbose, palette.CyanDim, "Run summary", summary)
	tl.Log(
		tl.Notice1, palette.GreenBold, "%s run '%s': '%s' items, '%s' failed inputs in %s",
		"Finished", summary.RunID, summary.Items, summary.Failed(), summary.Duration().Round(time.Millisecond),
	)

	if r.notifier != nil {
		if notifyErr := r.notifier.Notify(ctx, summary); notifyErr != nil {
			tl.Log(tl.Warning, palette.Yellow, "Run summary %s: %v", "was not sent", notifyErr)
		}
	}
	return summary, nil
}
