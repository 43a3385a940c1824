package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pawgram/internal/cache"
	"pawgram/internal/models"
)

// CommentRepository persists comments and replies. Deletes cascade so no
// vote or reply row outlives its parent. Mutations sweep the post-derived
// cache, the same as post writes.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	ListTopByPosts(ctx context.Context, postIDs []uint, perPost int) ([]models.Comment, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)

	CreateReply(ctx context.Context, reply *models.CommentReply) error
	GetReplyByID(ctx context.Context, id uint) (*models.CommentReply, error)
	UpdateReply(ctx context.Context, reply *models.CommentReply) error
	DeleteReply(ctx context.Context, id uint) error
	ListRepliesByComments(ctx context.Context, commentIDs []uint) ([]models.CommentReply, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Save(comment).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

// Delete removes the comment together with its votes, replies and reply votes.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.CommentReply{}).
			Where("comment_id = ?", id).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Where("reply_id IN ?", replyIDs).
				Delete(&models.CommentReplyVote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", replyIDs).
				Delete(&models.CommentReply{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// ListTopByPosts returns the perPost most recent comments for each post in a
// single window query.
func (r *commentRepository) ListTopByPosts(ctx context.Context, postIDs []uint, perPost int) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var comments []models.Comment
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, post_id, message, author_kind, author_id, created_at, updated_at FROM (
			SELECT comments.*,
			       ROW_NUMBER() OVER (PARTITION BY post_id ORDER BY created_at DESC, id DESC) AS rn
			FROM comments
			WHERE post_id IN ?
		) ranked
		WHERE rn <= ?
		ORDER BY post_id, rn`, postIDs, perPost).
		Scan(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	type row struct {
		PostID uint
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		counts[rw.PostID] = rw.Total
	}
	return counts, nil
}

func (r *commentRepository) CreateReply(ctx context.Context, reply *models.CommentReply) error {
	err := r.db.WithContext(ctx).Create(reply).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *commentRepository) GetReplyByID(ctx context.Context, id uint) (*models.CommentReply, error) {
	var reply models.CommentReply
	err := r.db.WithContext(ctx).First(&reply, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Reply not found")
	}
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *commentRepository) UpdateReply(ctx context.Context, reply *models.CommentReply) error {
	err := r.db.WithContext(ctx).Save(reply).Error
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

// DeleteReply removes the reply and its votes.
func (r *commentRepository) DeleteReply(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", id).Delete(&models.CommentReplyVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CommentReply{}, id).Error
	})
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *commentRepository) ListRepliesByComments(ctx context.Context, commentIDs []uint) ([]models.CommentReply, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var replies []models.CommentReply
	err := r.db.WithContext(ctx).
		Where("comment_id IN ?", commentIDs).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	return replies, err
}
