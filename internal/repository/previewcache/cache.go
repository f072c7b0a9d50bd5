// Package previewcache memoizes rendered previews in a key-value store.
package previewcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/barcodex/internal/db"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
	"github.com/kailas-cloud/barcodex/internal/domain/symbology"
)

// store is the consumer interface for the preview cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedPreviewer caches previews keyed by code and render options.
// Cache failures are logged and never fail the preview.
type CachedPreviewer struct {
	inner      render.Previewer
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner render.Previewer,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedPreviewer {
	return &CachedPreviewer{
		inner:      inner,
		store:      s,
		prefix:     prefix + "preview:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Preview returns a cached preview or renders it with the inner previewer.
// Errors from the inner previewer are not cached.
func (c *CachedPreviewer) Preview(ctx context.Context, req render.PreviewRequest) (*render.Preview, error) {
	key := c.cacheKey(req)

	if p, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return p, nil
	}

	c.incCache("miss")

	p, err := c.inner.Preview(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	c.putToCache(ctx, key, p)
	return p, nil
}

func (c *CachedPreviewer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the normalized request so equivalent inputs share an entry.
func (c *CachedPreviewer) cacheKey(req render.PreviewRequest) string {
	opts := req.Options.WithDefaults()
	code := symbology.Clean(req.Code)

	raw := strings.Join([]string{
		code,
		strconv.FormatFloat(opts.HeightMM, 'g', -1, 64),
		strconv.FormatFloat(opts.WidthMM, 'g', -1, 64),
		string(opts.Format),
	}, "|")
	h := sha256.Sum256([]byte(raw))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *CachedPreviewer) getFromCache(ctx context.Context, key string) (*render.Preview, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached preview", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var p render.Preview
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("Failed to parse cached preview", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to evict cached preview", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return &p, true
}

func (c *CachedPreviewer) putToCache(ctx context.Context, key string, p *render.Preview) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("Failed to encode preview", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache preview", zap.String("key", key), zap.Error(err))
	}
}
