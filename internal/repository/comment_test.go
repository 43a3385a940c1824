package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawgram/internal/models"
)

func seedComment(t *testing.T, repo CommentRepository, postID uint, msg string, at time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{
		PostID:     postID,
		Message:    msg,
		AuthorKind: models.ActorKindHuman,
		AuthorID:   1,
		CreatedAt:  at,
	}
	require.NoError(t, repo.Create(context.Background(), &comment))
	return comment
}

func TestCommentRepository_ListTopByPosts(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedComment(t, repo, 1, fmt.Sprintf("p1 c%d", i), base.Add(time.Duration(i)*time.Minute))
	}
	seedComment(t, repo, 2, "p2 only", base)

	comments, err := repo.ListTopByPosts(ctx, []uint{1, 2}, 3)
	require.NoError(t, err)
	require.Len(t, comments, 4)

	var p1 []string
	for _, c := range comments {
		if c.PostID == 1 {
			p1 = append(p1, c.Message)
		}
	}
	assert.Equal(t, []string{"p1 c4", "p1 c3", "p1 c2"}, p1)

	empty, err := repo.ListTopByPosts(ctx, nil, 3)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestCommentRepository_CountByPosts(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		seedComment(t, repo, 1, fmt.Sprintf("c%d", i), base)
	}
	seedComment(t, repo, 2, "solo", base)

	counts, err := repo.CountByPosts(ctx, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[1])
	assert.Equal(t, int64(1), counts[2])
	assert.Zero(t, counts[3])
}

func TestCommentRepository_Delete_CascadesReplies(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	comment := seedComment(t, repo, 1, "parent", time.Now())
	reply := models.CommentReply{CommentID: comment.ID, Message: "child", AuthorKind: models.ActorKindHuman, AuthorID: 2}
	require.NoError(t, repo.CreateReply(ctx, &reply))
	require.NoError(t, db.Create(&models.CommentVote{CommentID: comment.ID, VoterKind: models.ActorKindHuman, VoterID: 2}).Error)
	require.NoError(t, db.Create(&models.CommentReplyVote{ReplyID: reply.ID, VoterKind: models.ActorKindHuman, VoterID: 1}).Error)

	require.NoError(t, repo.Delete(ctx, comment.ID))

	for name, model := range map[string]any{
		"replies":       &models.CommentReply{},
		"comment votes": &models.CommentVote{},
		"reply votes":   &models.CommentReplyVote{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "orphaned %s rows survived the delete", name)
	}

	_, err := repo.GetByID(ctx, comment.ID)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestCommentRepository_Replies(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	comment := seedComment(t, repo, 1, "parent", base)
	for i := 0; i < 3; i++ {
		reply := models.CommentReply{
			CommentID:  comment.ID,
			Message:    fmt.Sprintf("r%d", i),
			AuthorKind: models.ActorKindHuman,
			AuthorID:   2,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.CreateReply(ctx, &reply))
	}

	replies, err := repo.ListRepliesByComments(ctx, []uint{comment.ID})
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, "r0", replies[0].Message)
	assert.Equal(t, "r2", replies[2].Message)
}
