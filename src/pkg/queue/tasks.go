package queue

import (
	"time"

	"pricetag-ocr/src/pkg/pipeline"
)

const (
	TypeSplit   = "pipeline:split"
	TypeDetect  = "pipeline:detect"
	TypeProcess = "pipeline:process"
)

type SplitPayload struct {
	RunID     string    `json:"run_id"`
	Filename  string    `json:"filename"`
	ShopName  string    `json:"shop_name"`
	StartedAt time.Time `json:"started_at"`
}

type DetectPayload struct {
	SplitPayload
	PageKeys []string `json:"page_keys"`
}

type ProcessPayload struct {
	SplitPayload
	Pages        int                  `json:"pages"`
	DetectReport pipeline.StageReport `json:"detect_report"`
	ItemKeys     []string             `json:"item_keys"`
}
