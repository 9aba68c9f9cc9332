package types

import (
	"time"
)

// Follow records that one user follows another.
type Follow struct {
	FollowerID uint64    `bun:",pk,notnull" json:"followerId"`
	FolloweeID uint64    `bun:",pk,notnull" json:"followeeId"`
	CreatedAt  time.Time `bun:",notnull"    json:"createdAt"`
}

// Block records that one user has blocked another. Blocked authors never
// appear in the blocker's recommendations.
type Block struct {
	BlockerID uint64    `bun:",pk,notnull" json:"blockerId"`
	BlockedID uint64    `bun:",pk,notnull" json:"blockedId"`
	CreatedAt time.Time `bun:",notnull"    json:"createdAt"`
}

// Mute records that one user has muted another. Muting hides the muted
// author's posts without the social-graph consequences of a block.
type Mute struct {
	MuterID   uint64    `bun:",pk,notnull" json:"muterId"`
	MutedID   uint64    `bun:",pk,notnull" json:"mutedId"`
	CreatedAt time.Time `bun:",notnull"    json:"createdAt"`
}
