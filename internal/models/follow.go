// Package models contains data structures for the application's domain models.
package models

import "time"

// Following is the per-user record of who that user follows. The record row
// itself is created by the follow service when the account is set up, so its
// absence is meaningful: a feed request for a user without a Following record
// is NotFound, distinct from a record with zero entries (a valid empty feed).
//
// The follow service keeps Following and Followers symmetric
// (Following(A) contains B iff Followers(B) contains A); this application
// only reads both sets.
type Following struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;uniqueIndex" json:"user_id"`
	Entries   []FollowingEntry `gorm:"foreignKey:FollowingID" json:"following"`
	CreatedAt time.Time        `json:"created_at"`
}

// FollowingEntry is one followed actor in a Following record.
type FollowingEntry struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	FollowingID uint      `gorm:"not null;index" json:"-"`
	Kind        ActorKind `gorm:"type:varchar(10);not null" json:"kind"`
	TargetID    uint      `gorm:"not null" json:"id"`
}

// Followers is the per-user record of who follows that user.
type Followers struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	Entries   []FollowerEntry `gorm:"foreignKey:FollowersID" json:"followers"`
	CreatedAt time.Time       `json:"created_at"`
}

// FollowerEntry is one following actor in a Followers record.
type FollowerEntry struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	FollowersID uint      `gorm:"not null;index" json:"-"`
	Kind        ActorKind `gorm:"type:varchar(10);not null" json:"kind"`
	TargetID    uint      `gorm:"not null" json:"id"`
}
