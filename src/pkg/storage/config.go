package storage

import (
	"context"
	"fmt"
	"path/filepath"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/config"
)

const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendAWS    = "aws"
)

type Tables struct {
	PDFMetadata    string `json:"pdf_metadata,omitempty"`
	ItemDetection  string `json:"item_detection,omitempty"`
	ItemProcessing string `json:"item_processing,omitempty"`
	DetectedItems  string `json:"detected_items,omitempty"`
}

type Config struct {
	Backend        string `json:"backend,omitempty"` // local, memory or aws
	LocalRoot      string `json:"local_root,omitempty"`
	Bucket         string `json:"bucket,omitempty"`
	Region         string `json:"region,omitempty"`
	S3Endpoint     string `json:"s3_endpoint,omitempty"`
	DynamoEndpoint string `json:"dynamo_endpoint,omitempty"`
	Tables         Tables `json:"tables,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Backend:   BackendLocal,
		LocalRoot: "./data",
		Bucket:    "salestelegrambot",
		Tables: Tables{
			PDFMetadata:    "pdf_metadata",
			ItemDetection:  "item_detection_data",
			ItemProcessing: "item_processing_data",
			DetectedItems:  "detected_data",
		},
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "storage", "not provided", "default storage config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "storage", "provided", "local storage config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

// Open builds the blob and record stores for the configured backend.
func Open(ctx context.Context, cfg Config) (blobs BlobStore, records RecordStore, e *xerr.Error) {
	switch cfg.Backend {
	case BackendLocal:
		blobs = NewLocalBlobStore(filepath.Join(cfg.LocalRoot, cfg.Bucket))
		records = NewLocalRecordStore(filepath.Join(cfg.LocalRoot, "tables"))
	case BackendMemory:
		blobs, records = NewMemoryBlobStore(), NewMemoryRecordStore()
	case BackendAWS:
		awsCfg, loadErr := loadAWSConfig(ctx, cfg.Region)
		if loadErr != nil {
			return nil, nil, loadErr
		}
		blobs = NewS3BlobStore(awsCfg, cfg.Bucket, cfg.S3Endpoint)
		records = NewDynamoRecordStore(awsCfg, cfg.DynamoEndpoint)
	default:
		err := fmt.Errorf("backend must be one of %s, %s, %s", BackendLocal, BackendMemory, BackendAWS)
		return nil, nil, xerr.NewError(err, "unknown storage backend", cfg.Backend)
	}

	tl.Log(tl.Info1, palette.Green, "%s '%s' storage (bucket '%s')", "Opened", cfg.Backend, cfg.Bucket)
	return blobs, records, nil
}
