// Package service contains the application's business logic.
package service

import (
	"context"
	"io"
	"regexp"

	"pawgram/internal/feed"
	"pawgram/internal/media"
	"pawgram/internal/models"
	"pawgram/internal/repository"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// PostService handles post creation and deletion, including image ingestion,
// moderation and follower fan-out.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	ingester *media.Ingester
	screen   func(ctx context.Context, imageURL string) error
	fanout   func(authorID uint, view feed.PostView)
}

// CreatePostInput is the upload payload for a new post.
type CreatePostInput struct {
	AuthorID uint
	Image    io.Reader
	Caption  string
	Filter   string
	Owner    models.ActorRef
}

// NewPostService wires a PostService. screen is the moderation check and
// fanout is invoked in the background after a successful create.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	ingester *media.Ingester,
	screen func(ctx context.Context, imageURL string) error,
	fanout func(authorID uint, view feed.PostView),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		ingester: ingester,
		screen:   screen,
		fanout:   fanout,
	}
}

// CreatePost runs the creation pipeline: decode and store the image, screen
// it, extract caption hashtags, persist the post, then hand the assembled
// view to fan-out in the background. A moderation rejection or ingestion
// failure aborts before anything durable is written.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*feed.PostView, error) {
	if input.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if input.Image == nil {
		return nil, models.NewValidationError("An image is required")
	}
	if input.Owner.Kind != "" {
		if err := input.Owner.Validate(); err != nil {
			return nil, err
		}
	}

	img, err := media.Decode(input.Image)
	if err != nil {
		return nil, err
	}
	stored, err := s.ingester.Ingest(img)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.screen(ctx, stored.ImageURL); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, input.AuthorID)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Image:     stored.ImageURL,
		Thumbnail: stored.ThumbnailURL,
		Filter:    input.Filter,
		Caption:   input.Caption,
		AuthorID:  input.AuthorID,
		OwnerKind: input.Owner.Kind,
		OwnerID:   input.Owner.ID,
		Hashtags:  ExtractHashtags(input.Caption),
	}
	if err := s.postRepo.Create(ctx, &post); err != nil {
		return nil, models.NewInternalError(err)
	}
	post.Author = *author

	view := feed.View(post)
	if s.fanout != nil {
		go s.fanout(input.AuthorID, view)
	}
	return &view, nil
}

// DeletePost removes a post owned by userID. Posts owned by someone else are
// reported as not found.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewNotFoundError("Post not found")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ExtractHashtags returns the caption's #Tag tokens, hash stripped, order
// and case preserved.
func ExtractHashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}
