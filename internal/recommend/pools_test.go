package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stylhelpr/styliq/internal/database/types"
)

func TestPoolSetMerged_PriorityOrder(t *testing.T) {
	t.Parallel()

	var ps poolSet

	// The same post surfaces in a low-priority pool and a high-priority one.
	ps.slots[poolNewest] = []*types.Post{
		{ID: 3, AuthorID: 30},
		{ID: 1, AuthorID: 10},
	}
	ps.slots[poolFollowed] = []*types.Post{
		{ID: 1, AuthorID: 10},
		{ID: 2, AuthorID: 20},
	}

	merged := ps.merged()

	ids := make([]uint64, 0, len(merged))
	for _, post := range merged {
		ids = append(ids, post.ID)
	}

	// Followed-pool order first, then the remaining newest-pool entries.
	assert.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestPoolSetMerged_Empty(t *testing.T) {
	t.Parallel()

	var ps poolSet

	assert.Empty(t, ps.merged())
}
