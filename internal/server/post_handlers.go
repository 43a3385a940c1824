package server

import (
	"github.com/gofiber/fiber/v2"

	"pawgram/internal/models"
	"pawgram/internal/service"
)

// voteRequest is the body of every vote endpoint. vote true casts the vote,
// false retracts it. voterDetails may be omitted, in which case the vote is
// cast as the authenticated user.
type voteRequest struct {
	VoterDetails models.ActorRef `json:"voterDetails"`
	Vote         bool            `json:"vote"`
}

// CreatePost handles a multipart upload and returns the created post view.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondError(c, models.NewValidationError("An image is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondError(c, models.NewValidationError("The uploaded file could not be read"))
	}
	defer file.Close()

	input := service.CreatePostInput{
		AuthorID: currentUserID(c),
		Image:    file,
		Caption:  c.FormValue("caption"),
		Filter:   c.FormValue("filter"),
	}
	if kind := c.FormValue("ownerKind"); kind != "" {
		ownerID, parseErr := formUint(c, "ownerId")
		if parseErr != nil {
			return models.RespondError(c, parseErr)
		}
		input.Owner = models.ActorRef{Kind: models.ActorKind(kind), ID: ownerID}
	}

	view, err := s.postService.CreatePost(c.UserContext(), input)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post":      view,
		"postVotes": view.PostVotes,
		"comments":  view.CommentData.Comments,
		"author":    view.Author,
	})
}

// DeletePost removes one of the caller's posts.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := idParam(c, "postId")
	if err != nil {
		return models.RespondError(c, err)
	}

	if err := s.postService.DeletePost(c.UserContext(), postID, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VotePost casts or retracts the caller's (or their pet's) vote on a post.
func (s *Server) VotePost(c *fiber.Ctx) error {
	postID, err := idParam(c, "postId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.engageService.SetPostVote(
		c.UserContext(), postID, req.VoterDetails, currentUserID(c), req.Vote); err != nil {
		return models.RespondError(c, err)
	}
	return successResponse(c)
}
