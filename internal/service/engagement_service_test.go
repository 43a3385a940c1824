package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawgram/internal/models"
)

// voteKey identifies one vote row in the in-memory engagement stub.
type voteKey struct {
	targetID uint
	voter    models.ActorRef
}

// engagementStub is a map-backed stub for repository.EngagementRepository.
type engagementStub struct {
	postVotes    map[voteKey]bool
	commentVotes map[voteKey]bool
	replyVotes   map[voteKey]bool
}

func newEngagementStub() *engagementStub {
	return &engagementStub{
		postVotes:    make(map[voteKey]bool),
		commentVotes: make(map[voteKey]bool),
		replyVotes:   make(map[voteKey]bool),
	}
}

func (s *engagementStub) HasPostVote(_ context.Context, postID uint, voter models.ActorRef) (bool, error) {
	return s.postVotes[voteKey{postID, voter}], nil
}
func (s *engagementStub) AddPostVote(_ context.Context, postID uint, voter models.ActorRef) error {
	s.postVotes[voteKey{postID, voter}] = true
	return nil
}
func (s *engagementStub) RemovePostVote(_ context.Context, postID uint, voter models.ActorRef) error {
	delete(s.postVotes, voteKey{postID, voter})
	return nil
}
func (s *engagementStub) ListPostVotes(_ context.Context, _ []uint) ([]models.PostVote, error) {
	return nil, nil
}

func (s *engagementStub) HasCommentVote(_ context.Context, commentID uint, voter models.ActorRef) (bool, error) {
	return s.commentVotes[voteKey{commentID, voter}], nil
}
func (s *engagementStub) AddCommentVote(_ context.Context, commentID uint, voter models.ActorRef) error {
	s.commentVotes[voteKey{commentID, voter}] = true
	return nil
}
func (s *engagementStub) RemoveCommentVote(_ context.Context, commentID uint, voter models.ActorRef) error {
	delete(s.commentVotes, voteKey{commentID, voter})
	return nil
}
func (s *engagementStub) ListCommentVotes(_ context.Context, _ []uint) ([]models.CommentVote, error) {
	return nil, nil
}

func (s *engagementStub) HasReplyVote(_ context.Context, replyID uint, voter models.ActorRef) (bool, error) {
	return s.replyVotes[voteKey{replyID, voter}], nil
}
func (s *engagementStub) AddReplyVote(_ context.Context, replyID uint, voter models.ActorRef) error {
	s.replyVotes[voteKey{replyID, voter}] = true
	return nil
}
func (s *engagementStub) RemoveReplyVote(_ context.Context, replyID uint, voter models.ActorRef) error {
	delete(s.replyVotes, voteKey{replyID, voter})
	return nil
}
func (s *engagementStub) ListReplyVotes(_ context.Context, _ []uint) ([]models.CommentReplyVote, error) {
	return nil, nil
}

// commentRepoStub is an in-memory stub for repository.CommentRepository.
type commentRepoStub struct {
	comments map[uint]*models.Comment
	replies  map[uint]*models.CommentReply
	nextID   uint
	deleted  []uint
}

func newCommentRepoStub() *commentRepoStub {
	return &commentRepoStub{
		comments: make(map[uint]*models.Comment),
		replies:  make(map[uint]*models.CommentReply),
		nextID:   1,
	}
}

func (s *commentRepoStub) Create(_ context.Context, comment *models.Comment) error {
	comment.ID = s.nextID
	s.nextID++
	s.comments[comment.ID] = comment
	return nil
}
func (s *commentRepoStub) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	if c, ok := s.comments[id]; ok {
		return c, nil
	}
	return nil, models.NewNotFoundError("Comment not found")
}
func (s *commentRepoStub) Update(_ context.Context, comment *models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}
func (s *commentRepoStub) Delete(_ context.Context, id uint) error {
	delete(s.comments, id)
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *commentRepoStub) ListByPost(_ context.Context, _ uint) ([]models.Comment, error) {
	return nil, nil
}
func (s *commentRepoStub) ListTopByPosts(_ context.Context, _ []uint, _ int) ([]models.Comment, error) {
	return nil, nil
}
func (s *commentRepoStub) CountByPosts(_ context.Context, _ []uint) (map[uint]int64, error) {
	return map[uint]int64{}, nil
}
func (s *commentRepoStub) CreateReply(_ context.Context, reply *models.CommentReply) error {
	reply.ID = s.nextID
	s.nextID++
	s.replies[reply.ID] = reply
	return nil
}
func (s *commentRepoStub) GetReplyByID(_ context.Context, id uint) (*models.CommentReply, error) {
	if r, ok := s.replies[id]; ok {
		return r, nil
	}
	return nil, models.NewNotFoundError("Reply not found")
}
func (s *commentRepoStub) UpdateReply(_ context.Context, reply *models.CommentReply) error {
	s.replies[reply.ID] = reply
	return nil
}
func (s *commentRepoStub) DeleteReply(_ context.Context, id uint) error {
	delete(s.replies, id)
	return nil
}
func (s *commentRepoStub) ListRepliesByComments(_ context.Context, _ []uint) ([]models.CommentReply, error) {
	return nil, nil
}

func newEngagementService() (*EngagementService, *engagementStub, *commentRepoStub) {
	engage := newEngagementStub()
	comments := newCommentRepoStub()
	postRepo := noopPostRepo()
	return NewEngagementService(postRepo, comments, engage), engage, comments
}

func TestEngagementService_SetPostVote(t *testing.T) {
	ctx := context.Background()
	human := models.ActorRef{Kind: models.ActorKindHuman, ID: 5}

	t.Run("casting twice leaves one vote", func(t *testing.T) {
		svc, engage, _ := newEngagementService()

		require.NoError(t, svc.SetPostVote(ctx, 1, human, 5, true))
		require.NoError(t, svc.SetPostVote(ctx, 1, human, 5, true))
		assert.True(t, engage.postVotes[voteKey{1, human}])
		assert.Len(t, engage.postVotes, 1)
	})

	t.Run("retracting an absent vote is a no-op", func(t *testing.T) {
		svc, engage, _ := newEngagementService()

		require.NoError(t, svc.SetPostVote(ctx, 1, human, 5, false))
		assert.Empty(t, engage.postVotes)
	})

	t.Run("cast then retract", func(t *testing.T) {
		svc, engage, _ := newEngagementService()

		require.NoError(t, svc.SetPostVote(ctx, 1, human, 5, true))
		assert.True(t, engage.postVotes[voteKey{1, human}])

		require.NoError(t, svc.SetPostVote(ctx, 1, human, 5, false))
		assert.False(t, engage.postVotes[voteKey{1, human}])
	})

	t.Run("missing voter id defaults to the caller", func(t *testing.T) {
		svc, engage, _ := newEngagementService()

		require.NoError(t, svc.SetPostVote(ctx, 1, models.ActorRef{}, 9, true))
		want := models.ActorRef{Kind: models.ActorKindHuman, ID: 9}
		assert.True(t, engage.postVotes[voteKey{1, want}])
	})

	t.Run("animal and human votes are distinct", func(t *testing.T) {
		svc, engage, _ := newEngagementService()
		animal := models.ActorRef{Kind: models.ActorKindAnimal, ID: 5}

		require.NoError(t, svc.SetPostVote(ctx, 1, human, 5, true))
		require.NoError(t, svc.SetPostVote(ctx, 1, animal, 5, true))
		assert.True(t, engage.postVotes[voteKey{1, human}])
		assert.True(t, engage.postVotes[voteKey{1, animal}])
	})

	t.Run("unknown actor kind is rejected", func(t *testing.T) {
		svc, _, _ := newEngagementService()
		err := svc.SetPostVote(ctx, 1, models.ActorRef{Kind: "robot", ID: 5}, 5, true)
		assert.Equal(t, 400, models.StatusFor(err))
	})
}

func TestEngagementService_Comments(t *testing.T) {
	ctx := context.Background()
	author := models.ActorRef{Kind: models.ActorKindHuman, ID: 5}
	stranger := models.ActorRef{Kind: models.ActorKindHuman, ID: 6}

	t.Run("create then edit", func(t *testing.T) {
		svc, _, comments := newEngagementService()

		comment, err := svc.CreateComment(ctx, 1, "what a good dog", author, 5)
		require.NoError(t, err)
		require.NoError(t, svc.UpdateComment(ctx, comment.ID, "what a great dog", author, 5))
		assert.Equal(t, "what a great dog", comments.comments[comment.ID].Message)
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		svc, _, _ := newEngagementService()
		_, err := svc.CreateComment(ctx, 1, "   ", author, 5)
		assert.Equal(t, 400, models.StatusFor(err))
	})

	t.Run("only the author may edit or delete", func(t *testing.T) {
		svc, _, _ := newEngagementService()

		comment, err := svc.CreateComment(ctx, 1, "mine", author, 5)
		require.NoError(t, err)

		err = svc.UpdateComment(ctx, comment.ID, "hijacked", stranger, 6)
		assert.Equal(t, 403, models.StatusFor(err))
		err = svc.DeleteComment(ctx, comment.ID, stranger, 6)
		assert.Equal(t, 403, models.StatusFor(err))
	})

	t.Run("reply vote casts are idempotent", func(t *testing.T) {
		svc, engage, _ := newEngagementService()

		comment, err := svc.CreateComment(ctx, 1, "parent", author, 5)
		require.NoError(t, err)
		reply, err := svc.CreateReply(ctx, comment.ID, "child", author, 5)
		require.NoError(t, err)

		require.NoError(t, svc.SetReplyVote(ctx, reply.ID, author, 5, true))
		require.NoError(t, svc.SetReplyVote(ctx, reply.ID, author, 5, true))
		assert.Len(t, engage.replyVotes, 1)

		require.NoError(t, svc.SetReplyVote(ctx, reply.ID, author, 5, false))
		assert.False(t, engage.replyVotes[voteKey{reply.ID, author}])
	})
}
