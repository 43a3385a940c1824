package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pawgram/internal/cache"
	"pawgram/internal/database"
	"pawgram/internal/models"
	"pawgram/internal/repository"
)

func setupFeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func newTestBuilder(db *gorm.DB) *Builder {
	return NewBuilder(
		repository.NewPostRepository(db),
		repository.NewFollowRepository(db),
		repository.NewCommentRepository(db),
		repository.NewEngagementRepository(db),
		repository.NewUserRepository(db),
	)
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Avatar:       username + ".png",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedFollowing(t *testing.T, db *gorm.DB, userID uint, entries ...models.ActorRef) {
	t.Helper()
	rec := models.Following{UserID: userID}
	require.NoError(t, db.Create(&rec).Error)
	for _, e := range entries {
		row := models.FollowingEntry{FollowingID: rec.ID, Kind: e.Kind, TargetID: e.ID}
		require.NoError(t, db.Create(&row).Error)
	}
}

func seedPost(t *testing.T, db *gorm.DB, post models.Post) models.Post {
	t.Helper()
	if post.Image == "" {
		post.Image = "/media/test.jpg"
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func TestBuilder_Feed(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("filters to the viewer's graph, newest first", func(t *testing.T) {
		db := setupFeedDB(t)
		b := newTestBuilder(db)

		ada := seedUser(t, db, "ada")
		bo := seedUser(t, db, "bo")
		cara := seedUser(t, db, "cara")
		seedFollowing(t, db, ada.ID, models.ActorRef{Kind: models.ActorKindHuman, ID: bo.ID})

		seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "mine", CreatedAt: base})
		seedPost(t, db, models.Post{AuthorID: bo.ID, Caption: "followed", CreatedAt: base.Add(time.Hour)})
		seedPost(t, db, models.Post{AuthorID: cara.ID, Caption: "stranger", CreatedAt: base.Add(2 * time.Hour)})

		views, err := b.Feed(ctx, ada.ID, 0)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "followed", views[0].Caption)
		assert.Equal(t, "mine", views[1].Caption)
		assert.Equal(t, "bo", views[0].Author.Username)
		assert.Equal(t, "bo.png", views[0].Author.Avatar)
		assert.NotNil(t, views[0].PostVotes)
		assert.NotNil(t, views[0].CommentData.Comments)
	})

	t.Run("viewer without a following record is not found", func(t *testing.T) {
		db := setupFeedDB(t)
		b := newTestBuilder(db)

		_, err := b.Feed(ctx, 99, 0)
		assert.Equal(t, 404, models.StatusFor(err))
	})

	t.Run("empty entries still yield the viewer's own posts", func(t *testing.T) {
		db := setupFeedDB(t)
		b := newTestBuilder(db)

		ada := seedUser(t, db, "ada")
		seedFollowing(t, db, ada.ID)
		seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "solo", CreatedAt: base})

		views, err := b.Feed(ctx, ada.ID, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "solo", views[0].Caption)
	})

	t.Run("pages by offset", func(t *testing.T) {
		db := setupFeedDB(t)
		b := newTestBuilder(db)

		ada := seedUser(t, db, "ada")
		bo := seedUser(t, db, "bo")
		seedFollowing(t, db, ada.ID, models.ActorRef{Kind: models.ActorKindHuman, ID: bo.ID})

		for i := 0; i < 7; i++ {
			seedPost(t, db, models.Post{
				AuthorID:  bo.ID,
				Caption:   fmt.Sprintf("post %d", i),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
		}

		first, err := b.Feed(ctx, ada.ID, 0)
		require.NoError(t, err)
		require.Len(t, first, FeedPageSize)
		assert.Equal(t, "post 6", first[0].Caption)

		second, err := b.Feed(ctx, ada.ID, FeedPageSize)
		require.NoError(t, err)
		require.Len(t, second, 2)
		assert.Equal(t, "post 1", second[0].Caption)
		assert.Equal(t, "post 0", second[1].Caption)
	})

	t.Run("followed animals match posts published on their behalf", func(t *testing.T) {
		db := setupFeedDB(t)
		b := newTestBuilder(db)

		ada := seedUser(t, db, "ada")
		cara := seedUser(t, db, "cara")
		seedFollowing(t, db, ada.ID, models.ActorRef{Kind: models.ActorKindAnimal, ID: 9})

		seedPost(t, db, models.Post{
			AuthorID:  cara.ID,
			Caption:   "as rex",
			OwnerKind: models.ActorKindAnimal,
			OwnerID:   9,
			CreatedAt: base.Add(time.Hour),
		})
		seedPost(t, db, models.Post{AuthorID: cara.ID, Caption: "as cara", CreatedAt: base})

		views, err := b.Feed(ctx, ada.ID, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "as rex", views[0].Caption)
	})

	t.Run("comments are capped to a preview with a full count", func(t *testing.T) {
		db := setupFeedDB(t)
		b := newTestBuilder(db)

		ada := seedUser(t, db, "ada")
		bo := seedUser(t, db, "bo")
		seedFollowing(t, db, ada.ID)
		post := seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "busy", CreatedAt: base})

		for i := 0; i < 5; i++ {
			comment := models.Comment{
				PostID:     post.ID,
				Message:    fmt.Sprintf("comment %d", i),
				AuthorKind: models.ActorKindHuman,
				AuthorID:   bo.ID,
				CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, db.Create(&comment).Error)
		}

		views, err := b.Feed(ctx, ada.ID, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.Len(t, views[0].CommentData.Comments, 3)
		assert.Equal(t, int64(5), views[0].CommentData.CommentCount)
		assert.Equal(t, "comment 4", views[0].CommentData.Comments[0].Message)
		assert.Equal(t, "bo", views[0].CommentData.Comments[0].Author.Username)
	})
}

func TestBuilder_Hashtag(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db := setupFeedDB(t)
	b := newTestBuilder(db)

	ada := seedUser(t, db, "ada")
	tagged1 := seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "#RescueDog day", CreatedAt: base})
	tagged2 := seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "another #RescueDog", CreatedAt: base.Add(time.Hour)})
	other := seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "#CatLife", CreatedAt: base})

	require.NoError(t, db.Create(&models.PostHashtag{PostID: tagged1.ID, Tag: "RescueDog"}).Error)
	require.NoError(t, db.Create(&models.PostHashtag{PostID: tagged2.ID, Tag: "RescueDog"}).Error)
	require.NoError(t, db.Create(&models.PostHashtag{PostID: other.ID, Tag: "CatLife"}).Error)

	page, err := b.Hashtag(ctx, "RescueDog", 0)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, int64(2), page.PostCount)
	assert.Equal(t, tagged2.ID, page.Posts[0].ID)
	assert.Equal(t, []string{"RescueDog"}, page.Posts[0].Hashtags)

	empty, err := b.Hashtag(ctx, "NoSuchTag", 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)
	assert.Equal(t, int64(0), empty.PostCount)
}

func TestBuilder_Single(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db := setupFeedDB(t)
	b := newTestBuilder(db)

	ada := seedUser(t, db, "ada")
	bo := seedUser(t, db, "bo")
	post := seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "single", CreatedAt: base})

	comment := models.Comment{
		PostID:     post.ID,
		Message:    "nice pup",
		AuthorKind: models.ActorKindHuman,
		AuthorID:   bo.ID,
		CreatedAt:  base.Add(time.Minute),
	}
	require.NoError(t, db.Create(&comment).Error)
	reply := models.CommentReply{
		CommentID:  comment.ID,
		Message:    "agreed",
		AuthorKind: models.ActorKindAnimal,
		AuthorID:   9,
		CreatedAt:  base.Add(2 * time.Minute),
	}
	require.NoError(t, db.Create(&reply).Error)
	require.NoError(t, db.Create(&models.PostVote{
		PostID: post.ID, VoterKind: models.ActorKindHuman, VoterID: bo.ID,
	}).Error)
	require.NoError(t, db.Create(&models.CommentReplyVote{
		ReplyID: reply.ID, VoterKind: models.ActorKindHuman, VoterID: ada.ID,
	}).Error)

	view, err := b.Single(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "single", view.Caption)
	assert.Equal(t, "ada", view.Author.Username)
	require.Len(t, view.PostVotes, 1)
	assert.Equal(t, models.ActorRef{Kind: models.ActorKindHuman, ID: bo.ID}, view.PostVotes[0])

	require.Len(t, view.CommentData.Comments, 1)
	got := view.CommentData.Comments[0]
	assert.Equal(t, "nice pup", got.Message)
	assert.Equal(t, "bo", got.Author.Username)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, "agreed", got.Replies[0].Message)
	assert.Equal(t, models.ActorKindAnimal, got.Replies[0].Author.Kind)
	assert.Empty(t, got.Replies[0].Author.Username)
	require.Len(t, got.Replies[0].Votes, 1)

	_, err = b.Single(ctx, 999)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestBuilder_Mine(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db := setupFeedDB(t)
	b := newTestBuilder(db)

	ada := seedUser(t, db, "ada")
	bo := seedUser(t, db, "bo")
	for i := 0; i < 6; i++ {
		seedPost(t, db, models.Post{AuthorID: ada.ID,
			Caption:   fmt.Sprintf("mine %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	seedPost(t, db, models.Post{AuthorID: bo.ID, Caption: "theirs", CreatedAt: base})

	views, err := b.Mine(ctx, ada.ID, 0)
	require.NoError(t, err)
	// The own-posts page is larger than a graph feed page.
	require.Len(t, views, 6)
	assert.Equal(t, "mine 5", views[0].Caption)
	for _, v := range views {
		assert.NotEqual(t, "theirs", v.Caption)
	}
}

func TestBuilder_Single_CachedUntilEngagementWrite(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	db := setupFeedDB(t)
	b := newTestBuilder(db)
	ada := seedUser(t, db, "ada")
	post := seedPost(t, db, models.Post{AuthorID: ada.ID, Caption: "cached"})

	view, err := b.Single(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", view.Caption)

	// The row can vanish behind the cache without affecting reads.
	require.NoError(t, db.Exec("DELETE FROM posts WHERE id = ?", post.ID).Error)
	view, err = b.Single(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", view.Caption)

	// An engagement write sweeps the post-derived keys, so the next read
	// goes back to the store.
	engage := repository.NewEngagementRepository(db)
	voter := models.ActorRef{Kind: models.ActorKindHuman, ID: ada.ID}
	require.NoError(t, engage.AddPostVote(ctx, post.ID, voter))

	_, err = b.Single(ctx, post.ID)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestView_BuildsEmptyPlaceholders(t *testing.T) {
	view := View(models.Post{
		ID:      7,
		Caption: "fresh",
		Author:  models.User{ID: 1, Username: "ada", Avatar: "a.png"},
	})
	assert.Equal(t, "ada", view.Author.Username)
	assert.Equal(t, []models.ActorRef{}, view.PostVotes)
	assert.Equal(t, []CommentView{}, view.CommentData.Comments)
	assert.Equal(t, int64(0), view.CommentData.CommentCount)
}
