// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents an image post. Hashtags live in the post_hashtags child
// table and are projected into Hashtags at read time.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Image     string `gorm:"not null" json:"image"`
	Thumbnail string `json:"thumbnail"`
	Filter    string `json:"filter"`
	Caption   string `gorm:"type:text" json:"caption"`
	AuthorID  uint   `gorm:"not null;index" json:"author_id"`
	Author    User   `gorm:"foreignKey:AuthorID" json:"-"`
	// OwnerKind/OwnerID name the actor the post is published on behalf of,
	// e.g. a pet profile. Zero values mean the author posts as themselves.
	OwnerKind ActorKind      `gorm:"type:varchar(10)" json:"owner_kind,omitempty"`
	OwnerID   uint           `json:"owner_id,omitempty"`
	Hashtags  []string       `gorm:"-" json:"hashtags"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostHashtag is one extracted caption hashtag, indexed for the hashtag feed.
type PostHashtag struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	PostID uint   `gorm:"not null;index" json:"-"`
	Tag    string `gorm:"not null;index" json:"tag"`
}

// PostVote is one vote on a post by one tagged actor. The unique index on
// (post_id, voter_kind, voter_id) enforces at most one vote per pair at the
// store layer, so racing identical casts cannot produce duplicates.
type PostVote struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_voter" json:"-"`
	VoterKind ActorKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_post_voter" json:"voterType"`
	VoterID   uint      `gorm:"not null;uniqueIndex:idx_post_voter" json:"voterId"`
	CreatedAt time.Time `json:"-"`
}

// Voter returns the vote's tagged actor reference.
func (v PostVote) Voter() ActorRef {
	return ActorRef{Kind: v.VoterKind, ID: v.VoterID}
}
