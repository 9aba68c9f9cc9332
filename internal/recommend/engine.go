package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/sourcegraph/conc/pool"
	"github.com/stylhelpr/styliq/internal/setup/config"
	"go.uber.org/zap"
)

// Dependencies bundles the data-access handles the engine needs. All of them
// are interfaces implemented by the database layer and faked in tests.
type Dependencies struct {
	Signals    SignalRepository
	Social     SocialGraph
	Posts      PostSource
	Engagement EngagementSource
	// Cache is an optional Redis client for the trending hashtag cache.
	Cache rueidis.Client
}

// Engine selects and ranks a small set of community posts for a user from
// the eligible pool. Safe for concurrent use.
type Engine struct {
	signals   *SignalStore
	trending  *TrendingSource
	social    SocialGraph
	posts     PostSource
	refresher *Refresher
	config    *config.Recommendation
	logger    *zap.Logger
	clock     func() time.Time
}

// NewEngine creates a recommendation engine. A nil config uses the
// production defaults.
func NewEngine(deps Dependencies, cfg *config.Recommendation, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		defaults := config.DefaultRecommendation()
		cfg = &defaults
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommendation config: %w", err)
	}

	logger = logger.Named("recommend")
	refresher := NewRefresher(cfg.RefreshQueueSize, cfg.RefreshWorkers, logger)

	return &Engine{
		signals:   NewSignalStore(deps.Signals, deps.Social, deps.Engagement, refresher, cfg, logger),
		trending:  NewTrendingSource(deps.Posts, deps.Cache, cfg, logger),
		social:    deps.Social,
		posts:     deps.Posts,
		refresher: refresher,
		config:    cfg,
		logger:    logger,
		clock:     time.Now,
	}, nil
}

// Recommend returns the ranked "Recommended for You" list for a user,
// between zero and MaxResults entries. An empty list is a valid result when
// no eligible posts exist; any pool failure fails the whole request.
func (e *Engine) Recommend(ctx context.Context, userID uint64) ([]RankedPost, error) {
	var (
		signals    *Signals
		exclusions []uint64
	)

	// Signals and exclusions are independent reads.
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		resolved, err := e.signals.GetSignals(ctx, userID)
		if err != nil {
			return err
		}

		signals = resolved

		return nil
	})

	p.Go(func(ctx context.Context) error {
		resolved, err := e.resolveExclusions(ctx, userID)
		if err != nil {
			return err
		}

		exclusions = resolved

		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to prepare recommendation request: %w", err)
	}

	candidates, err := e.generateCandidates(ctx, signals, exclusions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidates: %w", err)
	}

	if len(candidates) == 0 {
		return []RankedPost{}, nil
	}

	now := e.clock()
	idx := newPreferenceIndex(signals)

	scored := make([]scoredPost, 0, len(candidates))
	for _, post := range candidates {
		scored = append(scored, scoredPost{post: post, score: scorePost(post, idx, now)})
	}

	picked := selectRanked(scored, e.config.MaxResults)

	ranked := make([]RankedPost, 0, len(picked))
	for _, candidate := range picked {
		ranked = append(ranked, RankedPost{
			PostID:     candidate.post.ID,
			AuthorID:   candidate.post.AuthorID,
			Score:      candidate.score,
			Caption:    candidate.post.Caption,
			ImageURL:   candidate.post.ImageURL,
			Hashtags:   candidate.post.Hashtags,
			Keywords:   candidate.post.Keywords,
			LikesCount: candidate.post.LikesCount,
			ViewsCount: candidate.post.ViewsCount,
			CreatedAt:  candidate.post.CreatedAt,
		})
	}

	e.logger.Debug("Recommendation request complete",
		zap.Uint64("userID", userID),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(ranked)))

	return ranked, nil
}

// TrackProfileVisit records a profile visit and updates the visitor's
// frequent-visit signal.
func (e *Engine) TrackProfileVisit(ctx context.Context, visitorID, visitedID uint64) error {
	return e.signals.RecordProfileVisit(ctx, visitorID, visitedID)
}

// RefreshUserSignals synchronously recomputes a user's hashtag and keyword
// preferences. Manual trigger; the read path refreshes asynchronously.
func (e *Engine) RefreshUserSignals(ctx context.Context, userID uint64) error {
	return e.signals.RefreshPreferences(ctx, userID)
}

// Close stops the background refresher, draining queued recomputations.
func (e *Engine) Close() {
	e.refresher.Stop()
}
