package types

import (
	"time"
)

// Post is the candidate snapshot read by the recommendation pipeline.
// The write path (out of scope here) normalizes hashtags and keywords to
// lowercase before insert, so array-overlap filters can match directly.
type Post struct {
	ID         uint64    `bun:",pk,autoincrement" json:"id"`
	AuthorID   uint64    `bun:",notnull"          json:"authorId"`
	Caption    string    `bun:"caption"           json:"caption"`
	ImageURL   string    `bun:"image_url"         json:"imageUrl"`
	Hashtags   []string  `bun:"hashtags,array"    json:"hashtags"`
	Keywords   []string  `bun:"keywords,array"    json:"keywords"`
	LikesCount int64     `bun:"likes_count"       json:"likesCount"`
	ViewsCount int64     `bun:"views_count"       json:"viewsCount"`
	CreatedAt  time.Time `bun:",notnull"          json:"createdAt"`
}
