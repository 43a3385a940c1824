// Package models contains data structures for the application's domain models.
package models

import "time"

// Comment is a top-level comment on a post, authored by a tagged actor.
// Comments cascade away with their parent post; replies and votes cascade
// away with their parent comment.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	AuthorKind ActorKind `gorm:"type:varchar(10);not null" json:"-"`
	AuthorID   uint      `gorm:"not null" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuthorRef returns the comment's tagged author reference.
func (c Comment) AuthorRef() ActorRef {
	return ActorRef{Kind: c.AuthorKind, ID: c.AuthorID}
}

// CommentVote is one vote on a comment by one tagged actor, unique per
// (comment, voter) pair.
type CommentVote struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_voter" json:"-"`
	VoterKind ActorKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_comment_voter" json:"voterType"`
	VoterID   uint      `gorm:"not null;uniqueIndex:idx_comment_voter" json:"voterId"`
	CreatedAt time.Time `json:"-"`
}

// Voter returns the vote's tagged actor reference.
func (v CommentVote) Voter() ActorRef {
	return ActorRef{Kind: v.VoterKind, ID: v.VoterID}
}

// CommentReply is a second-level reply beneath a comment.
type CommentReply struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CommentID  uint      `gorm:"not null;index" json:"comment_id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	AuthorKind ActorKind `gorm:"type:varchar(10);not null" json:"-"`
	AuthorID   uint      `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuthorRef returns the reply's tagged author reference.
func (r CommentReply) AuthorRef() ActorRef {
	return ActorRef{Kind: r.AuthorKind, ID: r.AuthorID}
}

// CommentReplyVote is one vote on a reply by one tagged actor, unique per
// (reply, voter) pair.
type CommentReplyVote struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ReplyID   uint      `gorm:"not null;uniqueIndex:idx_reply_voter" json:"-"`
	VoterKind ActorKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_reply_voter" json:"voterType"`
	VoterID   uint      `gorm:"not null;uniqueIndex:idx_reply_voter" json:"voterId"`
	CreatedAt time.Time `json:"-"`
}

// Voter returns the vote's tagged actor reference.
func (v CommentReplyVote) Voter() ActorRef {
	return ActorRef{Kind: v.VoterKind, ID: v.VoterID}
}
