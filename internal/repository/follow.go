package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pawgram/internal/models"
)

// FollowRepository reads the social graph records maintained by the follow
// service. Record absence is surfaced as NotFound; an existing record with
// no entries is a valid empty result.
type FollowRepository interface {
	GetFollowing(ctx context.Context, userID uint) (*models.Following, error)
	GetFollowers(ctx context.Context, userID uint) (*models.Followers, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) GetFollowing(ctx context.Context, userID uint) (*models.Following, error) {
	var following models.Following
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("user_id = ?", userID).
		First(&following).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Following record not found")
	}
	if err != nil {
		return nil, err
	}
	return &following, nil
}

func (r *followRepository) GetFollowers(ctx context.Context, userID uint) (*models.Followers, error) {
	var followers models.Followers
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("user_id = ?", userID).
		First(&followers).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Followers record not found")
	}
	if err != nil {
		return nil, err
	}
	return &followers, nil
}
