package server

import (
	"github.com/gofiber/fiber/v2"

	"pawgram/internal/models"
)

type commentRequest struct {
	PostID  uint            `json:"postId"`
	Message string          `json:"message"`
	Author  models.ActorRef `json:"authorDetails"`
}

type replyRequest struct {
	Message string          `json:"message"`
	Author  models.ActorRef `json:"authorDetails"`
}

// CreateComment adds a comment to a post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondError(c, models.NewValidationError("postId is required"))
	}

	if _, err := s.engageService.CreateComment(
		c.UserContext(), req.PostID, req.Message, req.Author, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}

// UpdateComment edits a comment's message.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := idParam(c, "commentId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.engageService.UpdateComment(
		c.UserContext(), commentID, req.Message, req.Author, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}

// DeleteComment removes a comment and everything beneath it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := idParam(c, "commentId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req commentRequest
	// Body is optional on delete; default actor is the caller.
	_ = c.BodyParser(&req)

	if err := s.engageService.DeleteComment(
		c.UserContext(), commentID, req.Author, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}

// VoteComment casts or retracts a vote on a comment.
func (s *Server) VoteComment(c *fiber.Ctx) error {
	commentID, err := idParam(c, "commentId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.engageService.SetCommentVote(
		c.UserContext(), commentID, req.VoterDetails, currentUserID(c), req.Vote); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}

// CreateReply adds a reply beneath a comment.
func (s *Server) CreateReply(c *fiber.Ctx) error {
	commentID, err := idParam(c, "commentId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	if _, err := s.engageService.CreateReply(
		c.UserContext(), commentID, req.Message, req.Author, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}

// UpdateReply edits a reply's message.
func (s *Server) UpdateReply(c *fiber.Ctx) error {
	replyID, err := idParam(c, "replyId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.engageService.UpdateReply(
		c.UserContext(), replyID, req.Message, req.Author, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}

// DeleteReply removes a reply.
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	replyID, err := idParam(c, "replyId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req replyRequest
	_ = c.BodyParser(&req)

	if err := s.engageService.DeleteReply(
		c.UserContext(), replyID, req.Author, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}

// VoteReply casts or retracts a vote on a reply.
func (s *Server) VoteReply(c *fiber.Ctx) error {
	replyID, err := idParam(c, "replyId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.engageService.SetReplyVote(
		c.UserContext(), replyID, req.VoterDetails, currentUserID(c), req.Vote); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}
