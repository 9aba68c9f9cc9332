package types

import (
	"time"
)

// PostLike records a user liking a post. Likes contribute ×2 weight to
// preference recomputation.
type PostLike struct {
	UserID    uint64    `bun:",pk,notnull" json:"userId"`
	PostID    uint64    `bun:",pk,notnull" json:"postId"`
	CreatedAt time.Time `bun:",notnull"    json:"createdAt"`
}

// PostSave records a user saving a post to a collection. Saves contribute
// ×3 weight to preference recomputation.
type PostSave struct {
	UserID    uint64    `bun:",pk,notnull" json:"userId"`
	PostID    uint64    `bun:",pk,notnull" json:"postId"`
	CreatedAt time.Time `bun:",notnull"    json:"createdAt"`
}
