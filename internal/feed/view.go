// Package feed builds the denormalized post read model served to clients.
package feed

import "pawgram/internal/models"

// PostView is one fully joined feed document: the post row, its redacted
// author, the unwound vote set and a capped comment preview. Author fields
// always pass through models.User.Redact; no credential or contact field
// ever appears in a view.
type PostView struct {
	models.Post
	Author      models.RedactedUser `json:"author"`
	PostVotes   []models.ActorRef   `json:"postVotes"`
	CommentData CommentData         `json:"commentData"`
}

// CommentData carries the comment preview alongside the independent total,
// so clients can render "view all N comments" under a capped list.
type CommentData struct {
	Comments     []CommentView `json:"comments"`
	CommentCount int64         `json:"commentCount"`
}

// CommentAuthor is the redacted author projection for comments and replies.
// Human authors carry their public username and avatar; animal authors are
// profile refs resolved by the client against the pet service.
type CommentAuthor struct {
	Kind     models.ActorKind `json:"kind"`
	ID       uint             `json:"id"`
	Username string           `json:"username,omitempty"`
	Avatar   string           `json:"avatar,omitempty"`
}

// CommentView is one joined comment: the row, its redacted author and its
// unwound vote set. Replies are populated only in the single-post view.
type CommentView struct {
	models.Comment
	Author  CommentAuthor     `json:"author"`
	Votes   []models.ActorRef `json:"votes"`
	Replies []ReplyView       `json:"replies,omitempty"`
}

// ReplyView is one joined comment reply.
type ReplyView struct {
	models.CommentReply
	Author CommentAuthor     `json:"author"`
	Votes  []models.ActorRef `json:"votes"`
}

// HashtagPage is the hashtag feed response: one page of views plus the total
// number of posts carrying the tag.
type HashtagPage struct {
	Posts     []PostView `json:"posts"`
	PostCount int64      `json:"postCount"`
}
