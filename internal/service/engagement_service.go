package service

import (
	"context"
	"strings"

	"pawgram/internal/models"
	"pawgram/internal/repository"
)

// EngagementService handles vote flags and comment/reply CRUD. Votes are
// directional and idempotent per (target, voter): casting an existing vote
// or retracting a missing one is a no-op, and concurrent duplicate casts
// collapse against the store's unique voter index.
type EngagementService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	engageRepo  repository.EngagementRepository
}

// NewEngagementService wires an EngagementService.
func NewEngagementService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	engageRepo repository.EngagementRepository,
) *EngagementService {
	return &EngagementService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		engageRepo:  engageRepo,
	}
}

// resolveVoter normalizes and validates a tagged voter reference.
func resolveVoter(voter models.ActorRef, currentUserID uint) (models.ActorRef, error) {
	voter = voter.OrDefault(currentUserID)
	if err := voter.Validate(); err != nil {
		return models.ActorRef{}, err
	}
	return voter, nil
}

// SetPostVote casts (vote true) or retracts (vote false) the voter's vote on
// a post. Casting an existing vote or retracting a missing one is a no-op.
func (s *EngagementService) SetPostVote(ctx context.Context, postID uint, voter models.ActorRef, currentUserID uint, vote bool) error {
	voter, err := resolveVoter(voter, currentUserID)
	if err != nil {
		return err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}

	if vote {
		return s.engageRepo.AddPostVote(ctx, postID, voter)
	}
	return s.engageRepo.RemovePostVote(ctx, postID, voter)
}

// SetCommentVote casts or retracts the voter's vote on a comment.
func (s *EngagementService) SetCommentVote(ctx context.Context, commentID uint, voter models.ActorRef, currentUserID uint, vote bool) error {
	voter, err := resolveVoter(voter, currentUserID)
	if err != nil {
		return err
	}
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return err
	}

	if vote {
		return s.engageRepo.AddCommentVote(ctx, commentID, voter)
	}
	return s.engageRepo.RemoveCommentVote(ctx, commentID, voter)
}

// SetReplyVote casts or retracts the voter's vote on a comment reply.
func (s *EngagementService) SetReplyVote(ctx context.Context, replyID uint, voter models.ActorRef, currentUserID uint, vote bool) error {
	voter, err := resolveVoter(voter, currentUserID)
	if err != nil {
		return err
	}
	if _, err := s.commentRepo.GetReplyByID(ctx, replyID); err != nil {
		return err
	}

	if vote {
		return s.engageRepo.AddReplyVote(ctx, replyID, voter)
	}
	return s.engageRepo.RemoveReplyVote(ctx, replyID, voter)
}

// CreateComment adds a comment to a post as the given actor.
func (s *EngagementService) CreateComment(ctx context.Context, postID uint, message string, author models.ActorRef, currentUserID uint) (*models.Comment, error) {
	author, err := resolveVoter(author, currentUserID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, models.NewValidationError("Comment message is required")
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:     postID,
		Message:    message,
		AuthorKind: author.Kind,
		AuthorID:   author.ID,
	}
	if err := s.commentRepo.Create(ctx, &comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// UpdateComment edits a comment's message. Only the comment's author may edit.
func (s *EngagementService) UpdateComment(ctx context.Context, commentID uint, message string, actor models.ActorRef, currentUserID uint) error {
	actor, err := resolveVoter(actor, currentUserID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return models.NewValidationError("Comment message is required")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorRef() != actor {
		return models.NewForbiddenError("You can only edit your own comments")
	}

	comment.Message = message
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteComment removes a comment and everything beneath it. Only the
// comment's author may delete.
func (s *EngagementService) DeleteComment(ctx context.Context, commentID uint, actor models.ActorRef, currentUserID uint) error {
	actor, err := resolveVoter(actor, currentUserID)
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorRef() != actor {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CreateReply adds a reply beneath a comment as the given actor.
func (s *EngagementService) CreateReply(ctx context.Context, commentID uint, message string, author models.ActorRef, currentUserID uint) (*models.CommentReply, error) {
	author, err := resolveVoter(author, currentUserID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, models.NewValidationError("Reply message is required")
	}
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	reply := models.CommentReply{
		CommentID:  commentID,
		Message:    message,
		AuthorKind: author.Kind,
		AuthorID:   author.ID,
	}
	if err := s.commentRepo.CreateReply(ctx, &reply); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &reply, nil
}

// UpdateReply edits a reply's message. Only the reply's author may edit.
func (s *EngagementService) UpdateReply(ctx context.Context, replyID uint, message string, actor models.ActorRef, currentUserID uint) error {
	actor, err := resolveVoter(actor, currentUserID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return models.NewValidationError("Reply message is required")
	}

	reply, err := s.commentRepo.GetReplyByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.AuthorRef() != actor {
		return models.NewForbiddenError("You can only edit your own replies")
	}

	reply.Message = message
	if err := s.commentRepo.UpdateReply(ctx, reply); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteReply removes a reply and its votes. Only the reply's author may
// delete.
func (s *EngagementService) DeleteReply(ctx context.Context, replyID uint, actor models.ActorRef, currentUserID uint) error {
	actor, err := resolveVoter(actor, currentUserID)
	if err != nil {
		return err
	}

	reply, err := s.commentRepo.GetReplyByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.AuthorRef() != actor {
		return models.NewForbiddenError("You can only delete your own replies")
	}
	if err := s.commentRepo.DeleteReply(ctx, replyID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
