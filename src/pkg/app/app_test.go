package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pricetag-ocr/src/pkg/cache"
	"pricetag-ocr/src/pkg/config"
	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/pipeline"
	"pricetag-ocr/src/pkg/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func TestInitializeSection(t *testing.T) {
	config.InitializeConfig(writeConfig(t, `{"pipeline": {"page_model": "leaflet-v2"}}`))

	var present *pipeline.Config
	InitializeSection("pipeline", func(c *pipeline.Config) { present = c })
	if present == nil || present.PageModel != "leaflet-v2" {
		t.Fatalf("pipeline section = %+v", present)
	}

	called := false
	InitializeSection("absent", func(c *pipeline.Config) {
		called = true
		if c != nil {
			t.Fatalf("absent section must pass nil, got %+v", c)
		}
	})
	if !called {
		t.Fatalf("initialize must run for an absent section")
	}
}

func TestInitializeConfigAppliesDefaults(t *testing.T) {
	InitializeConfig(writeConfig(t, `{"pipeline": {"tag_model": "tags-v3"}}`))
	defer func() { pipeline.Cfg = pipeline.DefaultValueConfig() }()

	if pipeline.Cfg.TagModel != "tags-v3" {
		t.Fatalf("tag model = %q", pipeline.Cfg.TagModel)
	}
	if pipeline.Cfg.PageModel != pipeline.DefaultValueConfig().PageModel {
		t.Fatalf("missing page model must fall back to the default, got %q", pipeline.Cfg.PageModel)
	}
}

func TestLoadNameEngineWithoutCache(t *testing.T) {
	vocabularyPath := filepath.Join(t.TempDir(), "names.txt")
	if err := os.WriteFile(vocabularyPath, []byte("jogurt bily\nmleko\n"), 0o644); err != nil {
		t.Fatalf("write vocabulary: %v", err)
	}
	savedNames, savedCache := names.Cfg, cache.Cfg
	defer func() { names.Cfg, cache.Cfg = savedNames, savedCache }()
	names.Cfg = names.Config{VocabularyPath: vocabularyPath, MaxSuggestions: 3}
	cache.Cfg.Enabled = false

	corrector, release, e := LoadNameEngine(context.Background())
	if e != nil {
		t.Fatalf("load name engine: %v", e)
	}
	defer release()
	if got := corrector.Correct("JOGURTBILY").Name; got != "jogurt bily" {
		t.Fatalf("corrected name = %q", got)
	}
}

func TestNewPipelineWithMemoryStorage(t *testing.T) {
	saved := storage.Cfg
	defer func() { storage.Cfg = saved }()
	storage.Cfg.Backend = storage.BackendMemory

	p, e := NewPipeline(context.Background(), names.NewCorrector(names.BuildTrie([]string{"mleko"}), nil))
	if e != nil || p == nil {
		t.Fatalf("pipeline = %v, %v", p, e)
	}

	storage.Cfg.Backend = "floppy"
	if _, e = NewPipeline(context.Background(), nil); e == nil {
		t.Fatalf("unknown backend must fail")
	}
}
