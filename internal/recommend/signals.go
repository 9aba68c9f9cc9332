package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/stylhelpr/styliq/internal/database/types"
	"github.com/stylhelpr/styliq/internal/setup/config"
	"go.uber.org/zap"
)

// Engagement weights for preference recomputation. A save is a stronger
// preference signal than a like.
const (
	likedTermWeight = 2
	savedTermWeight = 3
)

// SignalStore owns the per-user affinity signals and their staleness policy.
type SignalStore struct {
	repo       SignalRepository
	social     SocialGraph
	engagement EngagementSource
	scheduler  refreshScheduler
	config     *config.Recommendation
	logger     *zap.Logger
	clock      func() time.Time
}

// NewSignalStore creates a signal store.
func NewSignalStore(
	repo SignalRepository, social SocialGraph, engagement EngagementSource,
	scheduler refreshScheduler, cfg *config.Recommendation, logger *zap.Logger,
) *SignalStore {
	return &SignalStore{
		repo:       repo,
		social:     social,
		engagement: engagement,
		scheduler:  scheduler,
		config:     cfg,
		logger:     logger.Named("signal_store"),
		clock:      time.Now,
	}
}

// GetSignals returns the user's signals for one ranking request.
//
// The follow list is resynced from the social graph and persisted on every
// read; the derived fields come from the persisted row and may lag. A missing
// row or one older than the staleness threshold triggers a detached
// recomputation while the current values are returned immediately. The
// check-and-trigger is deliberately not guarded: concurrent requests inside
// the staleness window may each enqueue a refresh, and the idempotent upsert
// absorbs the duplicate work.
func (s *SignalStore) GetSignals(ctx context.Context, userID uint64) (*Signals, error) {
	followed, err := s.social.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve follow list: %w", err)
	}

	if err := s.repo.UpsertFollowed(ctx, userID, followed); err != nil {
		return nil, fmt.Errorf("failed to persist follow list: %w", err)
	}

	row, err := s.repo.GetRow(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signal row: %w", err)
	}

	signals := &Signals{FollowedUserIDs: followed}
	if row != nil {
		signals.FrequentlyVisitedUserIDs = row.FrequentlyVisitedUserIDs
		signals.PreferredHashtags = row.PreferredHashtags
		signals.PreferredKeywords = row.PreferredKeywords
		signals.UpdatedAt = row.UpdatedAt
	}

	if row == nil || s.clock().Sub(row.UpdatedAt) > s.config.StalenessThreshold() {
		s.enqueueRefresh(userID)
	}

	return signals, nil
}

// RecordProfileVisit appends a visit to the log and recomputes the visitor's
// frequent-visit list from the trailing window. Self-visits are ignored.
func (s *SignalStore) RecordProfileVisit(ctx context.Context, visitorID, visitedID uint64) error {
	if visitorID == visitedID {
		return nil
	}

	now := s.clock()

	if err := s.repo.InsertVisit(ctx, visitorID, visitedID, now); err != nil {
		return fmt.Errorf("failed to record profile visit: %w", err)
	}

	topVisited, err := s.repo.TopVisited(
		ctx, visitorID, now.Add(-s.config.VisitWindow()), s.config.FrequentVisitedLimit,
	)
	if err != nil {
		return fmt.Errorf("failed to aggregate profile visits: %w", err)
	}

	if err := s.repo.UpsertFrequentlyVisited(ctx, visitorID, topVisited); err != nil {
		return fmt.Errorf("failed to persist frequently visited ids: %w", err)
	}

	return nil
}

// RefreshPreferences recomputes hashtag and keyword preferences from the
// trailing engagement window and upserts both with a fresh timestamp.
// Safe to run concurrently for the same user: last write wins.
func (s *SignalStore) RefreshPreferences(ctx context.Context, userID uint64) error {
	since := s.clock().Add(-s.config.EngagementWindow())

	var hashtags, keywords []string

	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		terms, err := s.recomputeTerms(ctx, userID, since,
			s.engagement.LikedTagCounts, s.engagement.SavedTagCounts)
		if err != nil {
			return fmt.Errorf("failed to recompute hashtag preferences: %w", err)
		}

		hashtags = terms

		return nil
	})

	p.Go(func(ctx context.Context) error {
		terms, err := s.recomputeTerms(ctx, userID, since,
			s.engagement.LikedKeywordCounts, s.engagement.SavedKeywordCounts)
		if err != nil {
			return fmt.Errorf("failed to recompute keyword preferences: %w", err)
		}

		keywords = terms

		return nil
	})

	if err := p.Wait(); err != nil {
		return err
	}

	if err := s.repo.UpsertPreferences(ctx, userID, hashtags, keywords, s.clock()); err != nil {
		return fmt.Errorf("failed to persist preferences: %w", err)
	}

	return nil
}

// enqueueRefresh submits a detached preference recomputation. Never blocks
// and never surfaces failures to the read path.
func (s *SignalStore) enqueueRefresh(userID uint64) {
	name := fmt.Sprintf("refresh_preferences_%d", userID)

	s.scheduler.Submit(name, func(ctx context.Context) error {
		return s.RefreshPreferences(ctx, userID)
	})
}

// termCountFunc is one engagement aggregation query.
type termCountFunc func(ctx context.Context, userID uint64, since time.Time) ([]types.TermCount, error)

// recomputeTerms runs the liked and saved aggregations for one term kind and
// merges them into the ordered preference list.
func (s *SignalStore) recomputeTerms(
	ctx context.Context, userID uint64, since time.Time, liked, saved termCountFunc,
) ([]string, error) {
	likedCounts, err := liked(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	savedCounts, err := saved(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return mergeWeightedTerms(likedCounts, savedCounts, s.config.PreferredTermLimit), nil
}

// mergeWeightedTerms sums liked counts at ×2 and saved counts at ×3 per term,
// sorts by summed weight descending, and keeps the top terms. Ties keep
// source query order: the stable sort preserves first-seen order across the
// liked-then-saved sequence.
func mergeWeightedTerms(liked, saved []types.TermCount, limit int) []string {
	weights := make(map[string]int64, len(liked)+len(saved))
	order := make([]string, 0, len(liked)+len(saved))

	for _, tc := range liked {
		if _, ok := weights[tc.Term]; !ok {
			order = append(order, tc.Term)
		}

		weights[tc.Term] += likedTermWeight * tc.Count
	}

	for _, tc := range saved {
		if _, ok := weights[tc.Term]; !ok {
			order = append(order, tc.Term)
		}

		weights[tc.Term] += savedTermWeight * tc.Count
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] > weights[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}

	return order
}
