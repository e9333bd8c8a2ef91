/*
Package cache memoizes name corrections in redis.

The same shelf label shows up on many leaflet pages, so the pipeline sees the
same OCR strings over and over.
*/
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/names"
)

type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, *xerr.Error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) *xerr.Error
}

type NameCorrector interface {
	Correct(raw string) names.Correction
}

// Correctors that implement it get their fingerprint mixed into the cache
// keys, so a changed vocabulary or speller never reads stale corrections.
type fingerprinter interface {
	Fingerprint() string
}

/*
CachedCorrector wraps a NameCorrector with a Store.

Store failures are logged and the correction is computed directly, so a
redis outage slows the pipeline down but never stops it.
*/
type CachedCorrector struct {
	corrector NameCorrector
	store     Store
	cfg       Config
	keyPrefix string
}

func NewCachedCorrector(corrector NameCorrector, store Store, cfg Config) *CachedCorrector {
	keyPrefix := cfg.KeyPrefix
	if tagged, ok := corrector.(fingerprinter); ok && tagged.Fingerprint() != "" {
		keyPrefix += tagged.Fingerprint() + ":"
	}
	return &CachedCorrector{corrector: corrector, store: store, cfg: cfg, keyPrefix: keyPrefix}
}

func (c *CachedCorrector) key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedCorrector) Correct(raw string) (correction names.Correction) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.operationTimeout())
	defer cancel()

	key := c.key(raw)
	found, e := c.store.Get(ctx, key, &correction)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Name cache %s for '%s': %v", "lookup failed", raw, e)
	} else if found {
		tl.Log(tl.Debug, palette.CyanDim, "%s '%s' -> '%s'", "Name cache hit", raw, correction.Name)
		return correction
	}

	correction = c.corrector.Correct(raw)
	if e = c.store.Set(ctx, key, correction, c.cfg.ttl()); e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Name cache %s for '%s': %v", "store failed", raw, e)
	}
	return correction
}
