package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylhelpr/styliq/internal/database/types"
	"github.com/stylhelpr/styliq/internal/setup/config"
	"go.uber.org/zap"
)

func newTestStore(
	repo *fakeSignalRepo, social *fakeSocial, engagement *fakeEngagement, now time.Time,
) (*SignalStore, *recordingScheduler) {
	cfg := config.DefaultRecommendation()
	scheduler := &recordingScheduler{}

	store := NewSignalStore(repo, social, engagement, scheduler, &cfg, zap.NewNop())
	store.clock = func() time.Time { return now }

	return store, scheduler
}

func TestGetSignals_FreshRow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeSignalRepo{
		row: &types.UserSignals{
			UserID:                   1,
			FollowedUserIDs:          []uint64{99}, // stale persisted copy, superseded by the resync
			FrequentlyVisitedUserIDs: []uint64{7},
			PreferredHashtags:        []string{"boho"},
			PreferredKeywords:        []string{"dress"},
			UpdatedAt:                now.Add(-30 * time.Minute),
		},
	}
	social := &fakeSocial{followed: []uint64{42, 43}}

	store, scheduler := newTestStore(repo, social, &fakeEngagement{}, now)

	signals, err := store.GetSignals(t.Context(), 1)
	require.NoError(t, err)

	// Follow list comes from the live social graph, not the persisted row.
	assert.Equal(t, []uint64{42, 43}, signals.FollowedUserIDs)
	assert.Equal(t, []uint64{7}, signals.FrequentlyVisitedUserIDs)
	assert.Equal(t, []string{"boho"}, signals.PreferredHashtags)
	assert.Equal(t, []string{"dress"}, signals.PreferredKeywords)

	// The resynced follow list is persisted on every read.
	require.Len(t, repo.upsertedFollowed, 1)
	assert.Equal(t, []uint64{42, 43}, repo.upsertedFollowed[0])

	// A 30-minute-old row is within the staleness window.
	assert.Equal(t, 0, scheduler.count())
}

func TestGetSignals_StaleRowTriggersRefresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeSignalRepo{
		row: &types.UserSignals{
			UserID:            1,
			PreferredHashtags: []string{"boho"},
			UpdatedAt:         now.Add(-61 * time.Minute),
		},
	}

	store, scheduler := newTestStore(repo, &fakeSocial{}, &fakeEngagement{}, now)

	signals, err := store.GetSignals(t.Context(), 1)
	require.NoError(t, err)

	// Stale values are returned immediately while the refresh runs detached.
	assert.Equal(t, []string{"boho"}, signals.PreferredHashtags)
	assert.Equal(t, 1, scheduler.count())
}

func TestGetSignals_ExactThresholdIsFresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeSignalRepo{
		row: &types.UserSignals{UserID: 1, UpdatedAt: now.Add(-60 * time.Minute)},
	}

	store, scheduler := newTestStore(repo, &fakeSocial{}, &fakeEngagement{}, now)

	_, err := store.GetSignals(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, scheduler.count())
}

func TestGetSignals_MissingRowTriggersRefresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, scheduler := newTestStore(&fakeSignalRepo{}, &fakeSocial{}, &fakeEngagement{}, now)

	signals, err := store.GetSignals(t.Context(), 1)
	require.NoError(t, err)

	assert.True(t, signals.IsColdStart())
	assert.Equal(t, 1, scheduler.count())
}

func TestRecordProfileVisit(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeSignalRepo{topVisited: []uint64{8, 3, 5}}

	store, _ := newTestStore(repo, &fakeSocial{}, &fakeEngagement{}, now)

	require.NoError(t, store.RecordProfileVisit(t.Context(), 1, 8))

	require.Len(t, repo.visits, 1)
	assert.Equal(t, visitRecord{visitorID: 1, visitedID: 8, visitedAt: now}, repo.visits[0])

	// The frequent-visit list is recomputed from the trailing window.
	require.Len(t, repo.upsertedVisited, 1)
	assert.Equal(t, []uint64{8, 3, 5}, repo.upsertedVisited[0])
}

func TestRecordProfileVisit_SelfVisitIgnored(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeSignalRepo{}

	store, _ := newTestStore(repo, &fakeSocial{}, &fakeEngagement{}, now)

	require.NoError(t, store.RecordProfileVisit(t.Context(), 1, 1))
	assert.Empty(t, repo.visits)
	assert.Empty(t, repo.upsertedVisited)
}

func TestRefreshPreferences(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeSignalRepo{}
	engagement := &fakeEngagement{
		likedTags: []types.TermCount{
			{Term: "boho", Count: 5},   // weight 10
			{Term: "summer", Count: 2}, // weight 4
		},
		savedTags: []types.TermCount{
			{Term: "vintage", Count: 4}, // weight 12
			{Term: "summer", Count: 1},  // weight 4+3=7
		},
		likedKeywords: []types.TermCount{
			{Term: "dress", Count: 3}, // weight 6
		},
	}

	store, _ := newTestStore(repo, &fakeSocial{}, engagement, now)

	require.NoError(t, store.RefreshPreferences(t.Context(), 1))

	require.Len(t, repo.prefs, 1)
	assert.Equal(t, []string{"vintage", "boho", "summer"}, repo.prefs[0].hashtags)
	assert.Equal(t, []string{"dress"}, repo.prefs[0].keywords)
	assert.Equal(t, now, repo.prefs[0].updatedAt)
}

func TestMergeWeightedTerms(t *testing.T) {
	t.Parallel()

	liked := []types.TermCount{
		{Term: "boho", Count: 3},   // 6 before the saved bump
		{Term: "summer", Count: 3}, // 6
	}
	saved := []types.TermCount{
		{Term: "vintage", Count: 3}, // 9
		{Term: "boho", Count: 1},    // 6+3=9, ties with vintage but was seen first
	}

	merged := mergeWeightedTerms(liked, saved, 30)
	assert.Equal(t, []string{"boho", "vintage", "summer"}, merged)
}

func TestMergeWeightedTerms_Truncates(t *testing.T) {
	t.Parallel()

	liked := make([]types.TermCount, 0, 40)
	for i := range 40 {
		liked = append(liked, types.TermCount{Term: string(rune('a' + i%26)), Count: int64(40 - i)})
	}

	merged := mergeWeightedTerms(liked, nil, 30)
	assert.Len(t, merged, 26)

	merged = mergeWeightedTerms(liked, nil, 10)
	assert.Len(t, merged, 10)
}
