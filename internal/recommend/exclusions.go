package recommend

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// resolveExclusions computes the set of author ids that must never appear in
// a user's results: the user themselves plus everyone they blocked or muted.
// Computed fresh per request, never persisted.
func (e *Engine) resolveExclusions(ctx context.Context, userID uint64) ([]uint64, error) {
	var blocked, muted []uint64

	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		ids, err := e.social.BlockedIDs(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get blocked ids: %w", err)
		}

		blocked = ids

		return nil
	})

	p.Go(func(ctx context.Context) error {
		ids, err := e.social.MutedIDs(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get muted ids: %w", err)
		}

		muted = ids

		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(blocked)+len(muted)+1)
	exclusions := make([]uint64, 0, len(blocked)+len(muted)+1)

	for _, id := range append(append([]uint64{userID}, blocked...), muted...) {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		exclusions = append(exclusions, id)
	}

	return exclusions, nil
}
