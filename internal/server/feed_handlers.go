package server

import (
	"github.com/gofiber/fiber/v2"

	"pawgram/internal/models"
)

// GetFeed returns one page of the viewer's graph feed.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	offset, err := offsetParam(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	views, err := s.builder.Feed(c.UserContext(), currentUserID(c), offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(views)
}

// GetSuggested returns a shuffled sample of recent posts.
func (s *Server) GetSuggested(c *fiber.Ctx) error {
	offset, err := offsetParam(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	views, err := s.builder.Suggested(c.UserContext(), offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(views)
}

// GetHashtagFeed returns one page of posts carrying the tag plus the total
// match count.
func (s *Server) GetHashtagFeed(c *fiber.Ctx) error {
	offset, err := offsetParam(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	page, err := s.builder.Hashtag(c.UserContext(), c.Params("hashtag"), offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(page)
}

// GetMyPosts returns one page of the viewer's own posts.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	offset, err := offsetParam(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	views, err := s.builder.Mine(c.UserContext(), currentUserID(c), offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(views)
}

// GetPost returns a single post with its full comment tree.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := idParam(c, "postId")
	if err != nil {
		return models.RespondError(c, err)
	}

	view, err := s.builder.Single(c.UserContext(), postID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(view)
}
