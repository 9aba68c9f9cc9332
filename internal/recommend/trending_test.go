package recommend

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylhelpr/styliq/internal/setup/config"
	"go.uber.org/zap"
)

func setupTrendingTest(t *testing.T, posts *fakePosts) *TrendingSource {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	cfg := config.DefaultRecommendation()

	return NewTrendingSource(posts, client, &cfg, zap.NewNop())
}

func TestTrendingTopHashtags_CachesResult(t *testing.T) {
	t.Parallel()

	posts := &fakePosts{topTags: []string{"boho", "vintage", "streetwear"}}
	trending := setupTrendingTest(t, posts)

	ctx := t.Context()

	tags, err := trending.TopHashtags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"boho", "vintage", "streetwear"}, tags)

	// The second read is served from Redis without re-running the aggregation.
	tags, err = trending.TopHashtags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"boho", "vintage", "streetwear"}, tags)

	posts.mu.Lock()
	defer posts.mu.Unlock()
	assert.Equal(t, 1, posts.topTagCalls)
}

func TestTrendingTopHashtags_NilCacheQueriesDirectly(t *testing.T) {
	t.Parallel()

	posts := &fakePosts{topTags: []string{"boho"}}
	cfg := config.DefaultRecommendation()
	trending := NewTrendingSource(posts, nil, &cfg, zap.NewNop())

	ctx := t.Context()

	for range 3 {
		tags, err := trending.TopHashtags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"boho"}, tags)
	}

	posts.mu.Lock()
	defer posts.mu.Unlock()
	assert.Equal(t, 3, posts.topTagCalls)
}

func TestTrendingTopHashtags_WindowCutoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := &fakePosts{topTags: []string{"boho"}}
	cfg := config.DefaultRecommendation()

	trending := NewTrendingSource(posts, nil, &cfg, zap.NewNop())
	trending.clock = func() time.Time { return now }

	_, err := trending.TopHashtags(t.Context())
	require.NoError(t, err)

	posts.mu.Lock()
	defer posts.mu.Unlock()
	require.Len(t, posts.topTagSince, 1)
	assert.Equal(t, now.Add(-cfg.TrendingWindow()), posts.topTagSince[0])
}

func TestTrendingTopHashtags_AggregationFailure(t *testing.T) {
	t.Parallel()

	posts := &fakePosts{topTagsErr: errors.New("relation does not exist")}
	trending := setupTrendingTest(t, posts)

	_, err := trending.TopHashtags(t.Context())
	require.Error(t, err)
}

func TestTrendingTopHashtags_CacheDownDegradesToQuery(t *testing.T) {
	t.Parallel()

	posts := &fakePosts{topTags: []string{"boho"}}

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	// Kill the server so every cache operation fails.
	mr.Close()

	cfg := config.DefaultRecommendation()
	trending := NewTrendingSource(posts, client, &cfg, zap.NewNop())

	tags, err := trending.TopHashtags(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"boho"}, tags)
}
