package repository

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"pawgram/internal/cache"
	"pawgram/internal/models"
)

// PostRepository defines persistence operations for posts and their hashtag
// rows. Vote and comment rows belong to the engagement repositories.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByActors(ctx context.Context, actors []models.ActorRef, limit, offset int) ([]models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]models.Post, error)
	ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, tag := range post.Hashtags {
			row := models.PostHashtag{PostID: post.ID, Tag: tag}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadHashtags(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByActors returns the newest posts written by any human author in the
// set or published on behalf of any animal in the set, newest first. A human
// match is by author alone, so a viewer's posts stay in their own feed even
// when published for one of their pets.
func (r *postRepository) ListByActors(ctx context.Context, actors []models.ActorRef, limit, offset int) ([]models.Post, error) {
	humanIDs := actorIDs(actors, models.ActorKindHuman)
	animalIDs := actorIDs(actors, models.ActorKindAnimal)

	q := r.db.WithContext(ctx).Model(&models.Post{}).Preload("Author")
	switch {
	case len(humanIDs) > 0 && len(animalIDs) > 0:
		q = q.Where("author_id IN ? OR (owner_kind = ? AND owner_id IN ?)",
			humanIDs, models.ActorKindAnimal, animalIDs)
	case len(humanIDs) > 0:
		q = q.Where("author_id IN ?", humanIDs)
	case len(animalIDs) > 0:
		q = q.Where("owner_kind = ? AND owner_id IN ?", models.ActorKindAnimal, animalIDs)
	default:
		return nil, nil
	}

	var posts []models.Post
	err := q.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadHashtagsSlice(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadHashtagsSlice(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]models.Post, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
		Where("post_hashtags.tag = ?", tag)

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := base.Session(&gorm.Session{}).Preload("Author").
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadHashtagsSlice(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, count, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadHashtagsSlice(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes the post and every row hanging off it. No orphaned
// engagement row survives its parent.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("post_id = ?", id).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			var replyIDs []uint
			if err := tx.Model(&models.CommentReply{}).
				Where("comment_id IN ?", commentIDs).
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
			if err := tx.Where("comment_id IN ?", commentIDs).
				Delete(&models.CommentVote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).
				Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostHashtag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err == nil {
		cache.InvalidatePosts(ctx)
	}
	return err
}

func (r *postRepository) loadHashtags(ctx context.Context, posts []*models.Post) error {
	ids := lo.Map(posts, func(p *models.Post, _ int) uint { return p.ID })
	var rows []models.PostHashtag
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	byPost := lo.GroupBy(rows, func(h models.PostHashtag) uint { return h.PostID })
	for _, p := range posts {
		p.Hashtags = lo.Map(byPost[p.ID], func(h models.PostHashtag, _ int) string { return h.Tag })
	}
	return nil
}

func (r *postRepository) loadHashtagsSlice(ctx context.Context, posts []models.Post) error {
	ptrs := make([]*models.Post, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	return r.loadHashtags(ctx, ptrs)
}

func actorIDs(actors []models.ActorRef, kind models.ActorKind) []uint {
	ids := lo.FilterMap(actors, func(a models.ActorRef, _ int) (uint, bool) {
		return a.ID, a.Kind == kind
	})
	return lo.Uniq(ids)
}
