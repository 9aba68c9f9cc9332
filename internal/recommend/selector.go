package recommend

import (
	"sort"
)

// selectRanked sorts scored candidates by descending score and keeps at most
// one post per author, stopping at the result limit. The sort must be stable:
// no secondary key is defined, so ties keep the candidate merge order and the
// output stays reproducible for the same input.
func selectRanked(scored []scoredPost, limit int) []scoredPost {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	seenAuthors := make(map[uint64]struct{}, limit)
	picked := make([]scoredPost, 0, limit)

	for _, candidate := range scored {
		if _, ok := seenAuthors[candidate.post.AuthorID]; ok {
			continue
		}

		seenAuthors[candidate.post.AuthorID] = struct{}{}
		picked = append(picked, candidate)

		if len(picked) == limit {
			break
		}
	}

	return picked
}
