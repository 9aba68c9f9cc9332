package recommend

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"github.com/stylhelpr/styliq/internal/database/types"
)

// Pool slots in dedup priority order. Pools may execute concurrently, but
// dedup always resolves in this fixed order regardless of completion timing.
const (
	poolFollowed = iota
	poolFrequent
	poolHashtags
	poolKeywords
	poolNewest
	poolCount
)

// poolSet collects the candidates of each pool in its priority slot.
// A post surfaced by more than one pool is attributed to the
// highest-priority pool that returned it (first seen wins).
type poolSet struct {
	slots [poolCount][]*types.Post
}

// merged flattens the slots in priority order, deduplicating by post id.
// The result order is deterministic: pool priority first, then each pool's
// newest-first query order.
func (ps *poolSet) merged() []*types.Post {
	seen := make(map[uint64]struct{})

	var out []*types.Post

	for _, slot := range ps.slots {
		for _, post := range slot {
			if _, ok := seen[post.ID]; ok {
				continue
			}

			seen[post.ID] = struct{}{}
			out = append(out, post)
		}
	}

	return out
}

// generateCandidates queries the five source pools and merges them into a
// deduplicated candidate list. Empty-signal pools are skipped; the recency
// fallback pool always runs, so output is non-empty whenever any eligible
// post exists.
func (e *Engine) generateCandidates(
	ctx context.Context, signals *Signals, exclusions []uint64,
) ([]*types.Post, error) {
	// Cold-start users borrow the global trending hashtags for the hashtag
	// pool before generation runs.
	poolTags := signals.PreferredHashtags
	if signals.IsColdStart() {
		trending, err := e.trending.TopHashtags(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve trending hashtags: %w", err)
		}

		poolTags = trending
	}

	var (
		ps    poolSet
		limit = e.config.PoolLimit
		p     = pool.New().WithContext(ctx).WithCancelOnError()
	)

	// Each pool writes only its own slot, so no lock is needed.
	if len(signals.FollowedUserIDs) > 0 {
		p.Go(func(ctx context.Context) error {
			posts, err := e.posts.CandidatesByAuthors(ctx, signals.FollowedUserIDs, exclusions, limit)
			if err != nil {
				return fmt.Errorf("followed pool failed: %w", err)
			}

			ps.slots[poolFollowed] = posts

			return nil
		})
	}

	if len(signals.FrequentlyVisitedUserIDs) > 0 {
		p.Go(func(ctx context.Context) error {
			posts, err := e.posts.CandidatesByAuthors(ctx, signals.FrequentlyVisitedUserIDs, exclusions, limit)
			if err != nil {
				return fmt.Errorf("frequent-visit pool failed: %w", err)
			}

			ps.slots[poolFrequent] = posts

			return nil
		})
	}

	if len(poolTags) > 0 {
		tags := poolTags
		p.Go(func(ctx context.Context) error {
			posts, err := e.posts.CandidatesByHashtags(ctx, tags, exclusions, limit)
			if err != nil {
				return fmt.Errorf("hashtag pool failed: %w", err)
			}

			ps.slots[poolHashtags] = posts

			return nil
		})
	}

	if len(signals.PreferredKeywords) > 0 {
		p.Go(func(ctx context.Context) error {
			posts, err := e.posts.CandidatesByKeywords(ctx, signals.PreferredKeywords, exclusions, limit)
			if err != nil {
				return fmt.Errorf("keyword pool failed: %w", err)
			}

			ps.slots[poolKeywords] = posts

			return nil
		})
	}

	p.Go(func(ctx context.Context) error {
		posts, err := e.posts.NewestCandidates(ctx, exclusions, limit)
		if err != nil {
			return fmt.Errorf("recency pool failed: %w", err)
		}

		ps.slots[poolNewest] = posts

		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}

	return ps.merged(), nil
}
