package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/stylhelpr/styliq/internal/database/types"
)

// fakeSocial serves canned relationship lists.
type fakeSocial struct {
	followed []uint64
	blocked  []uint64
	muted    []uint64
	err      error
}

func (f *fakeSocial) FollowedIDs(context.Context, uint64) ([]uint64, error) {
	return f.followed, f.err
}

func (f *fakeSocial) BlockedIDs(context.Context, uint64) ([]uint64, error) {
	return f.blocked, f.err
}

func (f *fakeSocial) MutedIDs(context.Context, uint64) ([]uint64, error) {
	return f.muted, f.err
}

// visitRecord captures one InsertVisit call.
type visitRecord struct {
	visitorID uint64
	visitedID uint64
	visitedAt time.Time
}

// prefsRecord captures one UpsertPreferences call.
type prefsRecord struct {
	hashtags  []string
	keywords  []string
	updatedAt time.Time
}

// fakeSignalRepo is a mutex-guarded in-memory SignalRepository. The guard
// matters: background refreshes touch it from refresher goroutines.
type fakeSignalRepo struct {
	mu sync.Mutex

	row        *types.UserSignals
	topVisited []uint64

	upsertedFollowed [][]uint64
	upsertedVisited  [][]uint64
	visits           []visitRecord
	prefs            []prefsRecord

	err error
}

func (f *fakeSignalRepo) GetRow(context.Context, uint64) (*types.UserSignals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.row, f.err
}

func (f *fakeSignalRepo) UpsertFollowed(_ context.Context, _ uint64, followedIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upsertedFollowed = append(f.upsertedFollowed, followedIDs)

	return f.err
}

func (f *fakeSignalRepo) UpsertFrequentlyVisited(_ context.Context, _ uint64, visitedIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upsertedVisited = append(f.upsertedVisited, visitedIDs)

	return f.err
}

func (f *fakeSignalRepo) UpsertPreferences(
	_ context.Context, _ uint64, hashtags, keywords []string, updatedAt time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prefs = append(f.prefs, prefsRecord{hashtags: hashtags, keywords: keywords, updatedAt: updatedAt})

	return f.err
}

func (f *fakeSignalRepo) InsertVisit(_ context.Context, visitorID, visitedID uint64, visitedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.visits = append(f.visits, visitRecord{visitorID: visitorID, visitedID: visitedID, visitedAt: visitedAt})

	return f.err
}

func (f *fakeSignalRepo) TopVisited(context.Context, uint64, time.Time, int) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.topVisited, f.err
}

// fakePosts serves canned pools and records the queries it receives.
type fakePosts struct {
	mu sync.Mutex

	byAuthors []*types.Post
	byTags    []*types.Post
	byWords   []*types.Post
	newest    []*types.Post
	topTags   []string

	authorQueries  [][]uint64
	tagQueries     [][]string
	keywordQueries [][]string
	excludeQueries [][]uint64

	newestErr   error
	topTagsErr  error
	topTagCalls int
	topTagSince []time.Time
}

func (f *fakePosts) CandidatesByAuthors(
	_ context.Context, authorIDs, excludeAuthors []uint64, _ int,
) ([]*types.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.authorQueries = append(f.authorQueries, authorIDs)
	f.excludeQueries = append(f.excludeQueries, excludeAuthors)

	return filterAuthors(f.byAuthors, excludeAuthors), nil
}

func (f *fakePosts) CandidatesByHashtags(
	_ context.Context, tags []string, excludeAuthors []uint64, _ int,
) ([]*types.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tagQueries = append(f.tagQueries, tags)
	f.excludeQueries = append(f.excludeQueries, excludeAuthors)

	return filterAuthors(f.byTags, excludeAuthors), nil
}

func (f *fakePosts) CandidatesByKeywords(
	_ context.Context, keywords []string, excludeAuthors []uint64, _ int,
) ([]*types.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keywordQueries = append(f.keywordQueries, keywords)
	f.excludeQueries = append(f.excludeQueries, excludeAuthors)

	return filterAuthors(f.byWords, excludeAuthors), nil
}

func (f *fakePosts) NewestCandidates(_ context.Context, excludeAuthors []uint64, _ int) ([]*types.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.newestErr != nil {
		return nil, f.newestErr
	}

	f.excludeQueries = append(f.excludeQueries, excludeAuthors)

	return filterAuthors(f.newest, excludeAuthors), nil
}

func (f *fakePosts) GlobalTopHashtags(_ context.Context, since time.Time, _ int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.topTagCalls++
	f.topTagSince = append(f.topTagSince, since)

	return f.topTags, f.topTagsErr
}

// filterAuthors mirrors the NOT IN clause of the real queries.
func filterAuthors(posts []*types.Post, excludeAuthors []uint64) []*types.Post {
	excluded := make(map[uint64]struct{}, len(excludeAuthors))
	for _, id := range excludeAuthors {
		excluded[id] = struct{}{}
	}

	out := make([]*types.Post, 0, len(posts))

	for _, post := range posts {
		if _, ok := excluded[post.AuthorID]; ok {
			continue
		}

		out = append(out, post)
	}

	return out
}

// fakeEngagement serves canned engagement aggregations.
type fakeEngagement struct {
	likedTags     []types.TermCount
	savedTags     []types.TermCount
	likedKeywords []types.TermCount
	savedKeywords []types.TermCount
	err           error
}

func (f *fakeEngagement) LikedTagCounts(context.Context, uint64, time.Time) ([]types.TermCount, error) {
	return f.likedTags, f.err
}

func (f *fakeEngagement) LikedKeywordCounts(context.Context, uint64, time.Time) ([]types.TermCount, error) {
	return f.likedKeywords, f.err
}

func (f *fakeEngagement) SavedTagCounts(context.Context, uint64, time.Time) ([]types.TermCount, error) {
	return f.savedTags, f.err
}

func (f *fakeEngagement) SavedKeywordCounts(context.Context, uint64, time.Time) ([]types.TermCount, error) {
	return f.savedKeywords, f.err
}

// recordingScheduler counts refresh submissions instead of running them.
type recordingScheduler struct {
	mu        sync.Mutex
	submitted []string
}

func (r *recordingScheduler) Submit(name string, _ func(context.Context) error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.submitted = append(r.submitted, name)

	return true
}

func (r *recordingScheduler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.submitted)
}
