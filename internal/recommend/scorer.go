package recommend

import (
	"math"
	"strings"
	"time"

	"github.com/stylhelpr/styliq/internal/database/types"
)

// Scoring weights. The formula is a locked, auditable contract:
//
//	score = 0.35·followAffinity + 0.25·hashtagMatch + 0.20·keywordMatch + 0.15·recency + 0.05·engagement
//
// The weights sum to 1.0 and must not be altered or made configurable.
const (
	followWeight     = 0.35
	hashtagWeight    = 0.25
	keywordWeight    = 0.20
	recencyWeight    = 0.15
	engagementWeight = 0.05

	// Affinity for followed authors outranks frequent-visit affinity.
	followedAffinity = 1.0
	frequentAffinity = 0.7

	recencyHalfLifeDays  = 7.0
	engagementLogDivisor = 4.0
)

// preferenceIndex holds lowercase lookup sets built once per request from
// a user's signals.
type preferenceIndex struct {
	followed map[uint64]struct{}
	frequent map[uint64]struct{}
	hashtags map[string]struct{}
	keywords map[string]struct{}
}

// newPreferenceIndex builds the per-request lookup sets for scoring.
func newPreferenceIndex(signals *Signals) *preferenceIndex {
	idx := &preferenceIndex{
		followed: make(map[uint64]struct{}, len(signals.FollowedUserIDs)),
		frequent: make(map[uint64]struct{}, len(signals.FrequentlyVisitedUserIDs)),
		hashtags: make(map[string]struct{}, len(signals.PreferredHashtags)),
		keywords: make(map[string]struct{}, len(signals.PreferredKeywords)),
	}

	for _, id := range signals.FollowedUserIDs {
		idx.followed[id] = struct{}{}
	}

	for _, id := range signals.FrequentlyVisitedUserIDs {
		idx.frequent[id] = struct{}{}
	}

	for _, tag := range signals.PreferredHashtags {
		idx.hashtags[strings.ToLower(tag)] = struct{}{}
	}

	for _, keyword := range signals.PreferredKeywords {
		idx.keywords[strings.ToLower(keyword)] = struct{}{}
	}

	return idx
}

// scorePost applies the weighted formula to one candidate.
// Pure function of its inputs; no side effects.
func scorePost(post *types.Post, idx *preferenceIndex, now time.Time) float64 {
	return followWeight*followAffinity(post.AuthorID, idx) +
		hashtagWeight*overlapRatio(post.Hashtags, idx.hashtags) +
		keywordWeight*overlapRatio(post.Keywords, idx.keywords) +
		recencyWeight*recencyScore(post.CreatedAt, now) +
		engagementWeight*engagementScore(post.LikesCount, post.ViewsCount)
}

// followAffinity checks follow membership before frequent-visit membership;
// a followed author scores 1.0 even when also frequently visited.
func followAffinity(authorID uint64, idx *preferenceIndex) float64 {
	if _, ok := idx.followed[authorID]; ok {
		return followedAffinity
	}

	if _, ok := idx.frequent[authorID]; ok {
		return frequentAffinity
	}

	return 0.0
}

// overlapRatio is the case-insensitive overlap between a candidate's term
// set and the user's preferred set, divided by the candidate set size.
// Returns 0 when either set is empty.
func overlapRatio(candidateTerms []string, preferred map[string]struct{}) float64 {
	if len(candidateTerms) == 0 || len(preferred) == 0 {
		return 0.0
	}

	seen := make(map[string]struct{}, len(candidateTerms))
	matched := 0

	for _, term := range candidateTerms {
		lowered := strings.ToLower(term)
		if _, dup := seen[lowered]; dup {
			continue
		}

		seen[lowered] = struct{}{}

		if _, ok := preferred[lowered]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(seen))
}

// recencyScore decays exponentially with age at a 7-day half-life:
// 1.0 at age zero, 0.5 at exactly 7 days, 0.25 at 14 days.
func recencyScore(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Seconds() / 86400
	if ageDays < 0 {
		ageDays = 0
	}

	return math.Pow(0.5, ageDays/recencyHalfLifeDays)
}

// engagementScore grows logarithmically with likes and views and is capped
// at 1.0 so runaway posts cannot dominate the formula.
func engagementScore(likesCount, viewsCount int64) float64 {
	raw := math.Log10(float64(likesCount)+0.1*float64(viewsCount)+1) / engagementLogDivisor

	return math.Min(raw, 1.0)
}
