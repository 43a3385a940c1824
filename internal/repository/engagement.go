package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pawgram/internal/cache"
	"pawgram/internal/models"
)

// EngagementRepository persists vote rows for posts, comments and replies.
// Inserts go through ON CONFLICT DO NOTHING against the per-target unique
// voter index, so concurrent identical casts collapse to one row. Mutations
// sweep the post-derived cache, the same as post writes.
type EngagementRepository interface {
	HasPostVote(ctx context.Context, postID uint, voter models.ActorRef) (bool, error)
	AddPostVote(ctx context.Context, postID uint, voter models.ActorRef) error
	RemovePostVote(ctx context.Context, postID uint, voter models.ActorRef) error
	ListPostVotes(ctx context.Context, postIDs []uint) ([]models.PostVote, error)

	HasCommentVote(ctx context.Context, commentID uint, voter models.ActorRef) (bool, error)
	AddCommentVote(ctx context.Context, commentID uint, voter models.ActorRef) error
	RemoveCommentVote(ctx context.Context, commentID uint, voter models.ActorRef) error
	ListCommentVotes(ctx context.Context, commentIDs []uint) ([]models.CommentVote, error)

	HasReplyVote(ctx context.Context, replyID uint, voter models.ActorRef) (bool, error)
	AddReplyVote(ctx context.Context, replyID uint, voter models.ActorRef) error
	RemoveReplyVote(ctx context.Context, replyID uint, voter models.ActorRef) error
	ListReplyVotes(ctx context.Context, replyIDs []uint) ([]models.CommentReplyVote, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository returns a new EngagementRepository implementation.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) HasPostVote(ctx context.Context, postID uint, voter models.ActorRef) (bool, error) {
	var vote models.PostVote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND voter_kind = ? AND voter_id = ?", postID, voter.Kind, voter.ID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *engagementRepository) AddPostVote(ctx context.Context, postID uint, voter models.ActorRef) error {
	vote := models.PostVote{PostID: postID, VoterKind: voter.Kind, VoterID: voter.ID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&vote).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *engagementRepository) RemovePostVote(ctx context.Context, postID uint, voter models.ActorRef) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND voter_kind = ? AND voter_id = ?", postID, voter.Kind, voter.ID).
		Delete(&models.PostVote{}).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *engagementRepository) ListPostVotes(ctx context.Context, postIDs []uint) ([]models.PostVote, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var votes []models.PostVote
	err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&votes).Error
	return votes, err
}

func (r *engagementRepository) HasCommentVote(ctx context.Context, commentID uint, voter models.ActorRef) (bool, error) {
	var vote models.CommentVote
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND voter_kind = ? AND voter_id = ?", commentID, voter.Kind, voter.ID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *engagementRepository) AddCommentVote(ctx context.Context, commentID uint, voter models.ActorRef) error {
	vote := models.CommentVote{CommentID: commentID, VoterKind: voter.Kind, VoterID: voter.ID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&vote).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *engagementRepository) RemoveCommentVote(ctx context.Context, commentID uint, voter models.ActorRef) error {
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND voter_kind = ? AND voter_id = ?", commentID, voter.Kind, voter.ID).
		Delete(&models.CommentVote{}).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *engagementRepository) ListCommentVotes(ctx context.Context, commentIDs []uint) ([]models.CommentVote, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var votes []models.CommentVote
	err := r.db.WithContext(ctx).Where("comment_id IN ?", commentIDs).Find(&votes).Error
	return votes, err
}

func (r *engagementRepository) HasReplyVote(ctx context.Context, replyID uint, voter models.ActorRef) (bool, error) {
	var vote models.CommentReplyVote
	err := r.db.WithContext(ctx).
		Where("reply_id = ? AND voter_kind = ? AND voter_id = ?", replyID, voter.Kind, voter.ID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *engagementRepository) AddReplyVote(ctx context.Context, replyID uint, voter models.ActorRef) error {
	vote := models.CommentReplyVote{ReplyID: replyID, VoterKind: voter.Kind, VoterID: voter.ID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&vote).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *engagementRepository) RemoveReplyVote(ctx context.Context, replyID uint, voter models.ActorRef) error {
	err := r.db.WithContext(ctx).
		Where("reply_id = ? AND voter_kind = ? AND voter_id = ?", replyID, voter.Kind, voter.ID).
		Delete(&models.CommentReplyVote{}).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *engagementRepository) ListReplyVotes(ctx context.Context, replyIDs []uint) ([]models.CommentReplyVote, error) {
	if len(replyIDs) == 0 {
		return nil, nil
	}
	var votes []models.CommentReplyVote
	err := r.db.WithContext(ctx).Where("reply_id IN ?", replyIDs).Find(&votes).Error
	return votes, err
}
