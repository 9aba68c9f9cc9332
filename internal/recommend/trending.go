package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"github.com/stylhelpr/styliq/internal/setup/config"
	"go.uber.org/zap"
)

// trendingCacheKey stores the serialized global top hashtags.
const trendingCacheKey = "trending:hashtags"

// TrendingSource resolves the global top hashtags used for cold-start
// substitution. A short Redis cache in front of the Postgres aggregation
// keeps cold-start bursts from re-running the unnest scan; cache failures
// degrade to the direct query.
type TrendingSource struct {
	posts  PostSource
	cache  rueidis.Client // nil disables caching
	config *config.Recommendation
	logger *zap.Logger
	clock  func() time.Time
}

// NewTrendingSource creates a trending hashtag source. Pass a nil cache
// client to always query the post store directly.
func NewTrendingSource(
	posts PostSource, cache rueidis.Client, cfg *config.Recommendation, logger *zap.Logger,
) *TrendingSource {
	return &TrendingSource{
		posts:  posts,
		cache:  cache,
		config: cfg,
		logger: logger.Named("trending"),
		clock:  time.Now,
	}
}

// TopHashtags returns the most-used hashtags over the trending window.
func (t *TrendingSource) TopHashtags(ctx context.Context) ([]string, error) {
	if tags, ok := t.fromCache(ctx); ok {
		return tags, nil
	}

	since := t.clock().Add(-t.config.TrendingWindow())

	tags, err := t.posts.GlobalTopHashtags(ctx, since, t.config.TrendingTagLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trending hashtags: %w", err)
	}

	t.store(ctx, tags)

	return tags, nil
}

// fromCache attempts a cache read. Any failure is treated as a miss.
func (t *TrendingSource) fromCache(ctx context.Context) ([]string, bool) {
	if t.cache == nil {
		return nil, false
	}

	data, err := t.cache.Do(ctx, t.cache.B().Get().Key(trendingCacheKey).Build()).AsBytes()
	if err != nil {
		return nil, false
	}

	var tags []string
	if err := sonic.Unmarshal(data, &tags); err != nil {
		t.logger.Warn("Failed to decode cached trending hashtags", zap.Error(err))
		return nil, false
	}

	return tags, true
}

// store writes the tags to cache with the configured TTL. Best effort.
func (t *TrendingSource) store(ctx context.Context, tags []string) {
	if t.cache == nil {
		return
	}

	data, err := sonic.Marshal(tags)
	if err != nil {
		t.logger.Warn("Failed to encode trending hashtags", zap.Error(err))
		return
	}

	err = t.cache.Do(ctx, t.cache.B().
		Set().Key(trendingCacheKey).Value(string(data)).
		Ex(t.config.TrendingCacheTTL()).
		Build()).Error()
	if err != nil {
		t.logger.Warn("Failed to cache trending hashtags", zap.Error(err))
	}
}
