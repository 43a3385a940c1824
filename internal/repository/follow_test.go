package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawgram/internal/models"
)

func TestFollowRepository_GetFollowing(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	rec := models.Following{UserID: 1}
	require.NoError(t, db.Create(&rec).Error)
	require.NoError(t, db.Create(&models.FollowingEntry{FollowingID: rec.ID, Kind: models.ActorKindHuman, TargetID: 2}).Error)
	require.NoError(t, db.Create(&models.FollowingEntry{FollowingID: rec.ID, Kind: models.ActorKindAnimal, TargetID: 9}).Error)

	following, err := repo.GetFollowing(ctx, 1)
	require.NoError(t, err)
	require.Len(t, following.Entries, 2)
	assert.Equal(t, models.ActorKindHuman, following.Entries[0].Kind)
	assert.Equal(t, uint(2), following.Entries[0].TargetID)

	_, err = repo.GetFollowing(ctx, 99)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestFollowRepository_GetFollowers(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	rec := models.Followers{UserID: 5}
	require.NoError(t, db.Create(&rec).Error)
	require.NoError(t, db.Create(&models.FollowerEntry{FollowersID: rec.ID, Kind: models.ActorKindHuman, TargetID: 7}).Error)

	followers, err := repo.GetFollowers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, followers.Entries, 1)
	assert.Equal(t, uint(7), followers.Entries[0].TargetID)

	// An empty record is a valid empty result, not an error.
	empty := models.Followers{UserID: 6}
	require.NoError(t, db.Create(&empty).Error)
	got, err := repo.GetFollowers(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, got.Entries)

	_, err = repo.GetFollowers(ctx, 99)
	assert.Equal(t, 404, models.StatusFor(err))
}
