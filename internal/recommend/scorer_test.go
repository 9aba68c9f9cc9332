package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stylhelpr/styliq/internal/database/types"
)

func TestScorePost_AllComponents(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx := newPreferenceIndex(&Signals{
		FollowedUserIDs:   []uint64{42},
		PreferredHashtags: []string{"boho", "vintage"},
		PreferredKeywords: []string{"dress"},
	})

	post := &types.Post{
		ID:         1,
		AuthorID:   42,
		Hashtags:   []string{"boho", "summer"},
		Keywords:   []string{"dress"},
		LikesCount: 9,
		CreatedAt:  now.Add(-7 * 24 * time.Hour),
	}

	// 0.35·1.0 + 0.25·0.5 + 0.20·1.0 + 0.15·0.5 + 0.05·(log10(10)/4)
	expected := 0.35 + 0.125 + 0.20 + 0.075 + 0.05*0.25
	assert.InDelta(t, expected, scorePost(post, idx, now), 1e-9)
}

func TestScorePost_KnownVector(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx := newPreferenceIndex(&Signals{
		FollowedUserIDs:   []uint64{42},
		PreferredHashtags: []string{"boho", "vintage"},
	})

	// Followed author, half hashtag overlap, no keywords, brand new,
	// no engagement: 0.35·1.0 + 0.25·0.5 + 0.15·1.0 = 0.625.
	post := &types.Post{
		ID:        1,
		AuthorID:  42,
		Hashtags:  []string{"boho", "summer"},
		CreatedAt: now,
	}

	assert.InDelta(t, 0.625, scorePost(post, idx, now), 1e-9)
}

func TestScorePost_NoSignals(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx := newPreferenceIndex(&Signals{})

	post := &types.Post{
		ID:        1,
		AuthorID:  42,
		Hashtags:  []string{"boho"},
		CreatedAt: now,
	}

	// Only the recency component survives for a brand-new post.
	assert.InDelta(t, 0.15, scorePost(post, idx, now), 1e-9)
}

func TestFollowAffinity_FollowTakesPrecedence(t *testing.T) {
	t.Parallel()

	idx := newPreferenceIndex(&Signals{
		FollowedUserIDs:          []uint64{42},
		FrequentlyVisitedUserIDs: []uint64{42, 77},
	})

	assert.InDelta(t, 1.0, followAffinity(42, idx), 1e-9)
	assert.InDelta(t, 0.7, followAffinity(77, idx), 1e-9)
	assert.InDelta(t, 0.0, followAffinity(99, idx), 1e-9)
}

func TestOverlapRatio(t *testing.T) {
	t.Parallel()

	preferred := map[string]struct{}{"boho": {}, "vintage": {}}

	tests := []struct {
		name      string
		candidate []string
		preferred map[string]struct{}
		expected  float64
	}{
		{
			name:      "full overlap",
			candidate: []string{"boho", "vintage"},
			preferred: preferred,
			expected:  1.0,
		},
		{
			name:      "partial overlap",
			candidate: []string{"boho", "summer", "beach", "travel"},
			preferred: preferred,
			expected:  0.25,
		},
		{
			name:      "case insensitive",
			candidate: []string{"BoHo"},
			preferred: preferred,
			expected:  1.0,
		},
		{
			name:      "duplicate candidate terms collapse",
			candidate: []string{"Boho", "boho"},
			preferred: preferred,
			expected:  1.0,
		},
		{
			name:      "empty candidate terms",
			candidate: nil,
			preferred: preferred,
			expected:  0.0,
		},
		{
			name:      "empty preferences",
			candidate: []string{"boho"},
			preferred: map[string]struct{}{},
			expected:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, overlapRatio(tt.candidate, tt.preferred), 1e-9)
		})
	}
}

func TestRecencyScore_HalfLife(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.InDelta(t, 1.0, recencyScore(now, now), 1e-9)
	assert.InDelta(t, 0.5, recencyScore(now.Add(-7*24*time.Hour), now), 1e-9)
	assert.InDelta(t, 0.25, recencyScore(now.Add(-14*24*time.Hour), now), 1e-9)

	// A clock-skewed future timestamp clamps to maximum freshness.
	assert.InDelta(t, 1.0, recencyScore(now.Add(time.Hour), now), 1e-9)
}

func TestEngagementScore(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, engagementScore(0, 0), 1e-9)

	// log10(9 + 0 + 1)/4 = 0.25
	assert.InDelta(t, 0.25, engagementScore(9, 0), 1e-9)

	// Views contribute at a tenth of a like: log10(0 + 9 + 1)/4 = 0.25.
	assert.InDelta(t, 0.25, engagementScore(0, 90), 1e-9)

	// Viral posts cap at 1.0 instead of dominating the formula.
	assert.InDelta(t, 1.0, engagementScore(50_000_000, 900_000_000), 1e-9)
}
