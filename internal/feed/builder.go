package feed

import (
	"context"
	"math/rand/v2"

	"github.com/samber/lo"

	"pawgram/internal/cache"
	"pawgram/internal/models"
	"pawgram/internal/observability"
	"pawgram/internal/repository"
)

const (
	// FeedPageSize is the graph feed page size.
	FeedPageSize = 5
	// SuggestedPageSize is the size of the suggested feed sample.
	SuggestedPageSize = 20
	// HashtagPageSize is the hashtag feed page size.
	HashtagPageSize = 20
	// MyPostsPageSize is the own-posts page size.
	MyPostsPageSize = 20
	// commentPreview caps the comments joined onto each feed post.
	commentPreview = 3
)

// Builder assembles PostView pages. Each public method runs the same stage
// pipeline over a different post selection: select, attach votes, attach
// comments, assemble with author redaction.
type Builder struct {
	posts       repository.PostRepository
	follows     repository.FollowRepository
	comments    repository.CommentRepository
	engagements repository.EngagementRepository
	users       repository.UserRepository
}

// NewBuilder wires a Builder over the given repositories.
func NewBuilder(
	posts repository.PostRepository,
	follows repository.FollowRepository,
	comments repository.CommentRepository,
	engagements repository.EngagementRepository,
	users repository.UserRepository,
) *Builder {
	return &Builder{
		posts:       posts,
		follows:     follows,
		comments:    comments,
		engagements: engagements,
		users:       users,
	}
}

// Feed returns one page of the viewer's graph feed: posts published by the
// viewer or anyone they follow, newest first. A viewer without a Following
// record gets NotFound; a record with no entries still yields the viewer's
// own posts (or an empty page), never an error.
func (b *Builder) Feed(ctx context.Context, viewerID uint, offset int) ([]PostView, error) {
	if viewerID == 0 {
		return nil, models.NewValidationError("Viewer id is required")
	}

	following, err := b.follows.GetFollowing(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	actors := lo.Map(following.Entries, func(e models.FollowingEntry, _ int) models.ActorRef {
		return models.ActorRef{Kind: e.Kind, ID: e.TargetID}
	})
	actors = append(actors, models.ActorRef{Kind: models.ActorKindHuman, ID: viewerID})

	var views []PostView
	key := cache.FeedPageKey(viewerID, offset)
	err = cache.Aside(ctx, key, &views, cache.FeedTTL, func() error {
		posts, err := b.posts.ListByActors(ctx, actors, FeedPageSize, offset)
		if err != nil {
			return err
		}
		views, err = b.assemble(ctx, posts, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.FeedPagesServed.WithLabelValues("feed").Inc()
	if views == nil {
		views = []PostView{}
	}
	return views, nil
}

// Suggested returns a shuffled sample of recent posts with no graph filter.
func (b *Builder) Suggested(ctx context.Context, offset int) ([]PostView, error) {
	posts, err := b.posts.ListRecent(ctx, SuggestedPageSize+offset)
	if err != nil {
		return nil, err
	}
	if offset < len(posts) {
		posts = posts[offset:]
	} else {
		posts = nil
	}

	rand.Shuffle(len(posts), func(i, j int) {
		posts[i], posts[j] = posts[j], posts[i]
	})

	views, err := b.assemble(ctx, posts, false)
	if err != nil {
		return nil, err
	}
	observability.FeedPagesServed.WithLabelValues("suggested").Inc()
	return views, nil
}

// Hashtag returns one page of posts carrying the exact tag, plus the total
// number of matching posts.
func (b *Builder) Hashtag(ctx context.Context, tag string, offset int) (*HashtagPage, error) {
	if tag == "" {
		return nil, models.NewValidationError("Hashtag is required")
	}

	var page HashtagPage
	key := cache.HashtagPageKey(tag, offset)
	err := cache.Aside(ctx, key, &page, cache.FeedTTL, func() error {
		posts, count, err := b.posts.ListByHashtag(ctx, tag, HashtagPageSize, offset)
		if err != nil {
			return err
		}
		views, err := b.assemble(ctx, posts, false)
		if err != nil {
			return err
		}
		page = HashtagPage{Posts: views, PostCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if page.Posts == nil {
		page.Posts = []PostView{}
	}
	observability.FeedPagesServed.WithLabelValues("hashtag").Inc()
	return &page, nil
}

// Mine returns one page of the viewer's own posts, same join shape.
func (b *Builder) Mine(ctx context.Context, viewerID uint, offset int) ([]PostView, error) {
	if viewerID == 0 {
		return nil, models.NewValidationError("Viewer id is required")
	}
	posts, err := b.posts.ListByAuthor(ctx, viewerID, MyPostsPageSize, offset)
	if err != nil {
		return nil, err
	}
	return b.assemble(ctx, posts, false)
}

// Single returns one post joined with its full comment tree, replies and
// reply votes included. The assembled view is cached under the post key;
// post and engagement writes sweep it.
func (b *Builder) Single(ctx context.Context, postID uint) (*PostView, error) {
	var view PostView
	key := cache.PostKey(postID)
	err := cache.Aside(ctx, key, &view, cache.PostTTL, func() error {
		post, err := b.posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		views, err := b.assemble(ctx, []models.Post{*post}, true)
		if err != nil {
			return err
		}
		view = views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// View builds the fan-out / create-response document for a freshly written
// post: empty vote and comment placeholders, author redacted.
func View(post models.Post) PostView {
	return PostView{
		Post:      post,
		Author:    post.Author.Redact(),
		PostVotes: []models.ActorRef{},
		CommentData: CommentData{
			Comments:     []CommentView{},
			CommentCount: 0,
		},
	}
}

// assemble runs the join stages over an ordered post selection. When full is
// set every comment is joined with its replies; otherwise the comment list is
// capped to the preview size.
func (b *Builder) assemble(ctx context.Context, posts []models.Post, full bool) ([]PostView, error) {
	if len(posts) == 0 {
		return []PostView{}, nil
	}

	postIDs := lo.Map(posts, func(p models.Post, _ int) uint { return p.ID })

	votesByPost, err := b.attachVotes(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	commentsByPost, countByPost, err := b.attachComments(ctx, postIDs, full)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, PostView{
			Post:      post,
			Author:    post.Author.Redact(),
			PostVotes: orEmpty(votesByPost[post.ID]),
			CommentData: CommentData{
				Comments:     orEmpty(commentsByPost[post.ID]),
				CommentCount: countByPost[post.ID],
			},
		})
	}
	return views, nil
}

func (b *Builder) attachVotes(ctx context.Context, postIDs []uint) (map[uint][]models.ActorRef, error) {
	votes, err := b.engagements.ListPostVotes(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	grouped := lo.GroupBy(votes, func(v models.PostVote) uint { return v.PostID })
	byPost := make(map[uint][]models.ActorRef, len(grouped))
	for id, vs := range grouped {
		byPost[id] = lo.Map(vs, func(v models.PostVote, _ int) models.ActorRef { return v.Voter() })
	}
	return byPost, nil
}

func (b *Builder) attachComments(ctx context.Context, postIDs []uint, full bool) (map[uint][]CommentView, map[uint]int64, error) {
	var comments []models.Comment
	var err error
	if full {
		comments, err = b.comments.ListByPost(ctx, postIDs[0])
	} else {
		comments, err = b.comments.ListTopByPosts(ctx, postIDs, commentPreview)
	}
	if err != nil {
		return nil, nil, err
	}

	counts, err := b.comments.CountByPosts(ctx, postIDs)
	if err != nil {
		return nil, nil, err
	}

	commentIDs := lo.Map(comments, func(c models.Comment, _ int) uint { return c.ID })
	commentVotes, err := b.engagements.ListCommentVotes(ctx, commentIDs)
	if err != nil {
		return nil, nil, err
	}
	votesByComment := lo.GroupBy(commentVotes, func(v models.CommentVote) uint { return v.CommentID })

	authors, err := b.resolveAuthors(ctx, commentRefs(comments))
	if err != nil {
		return nil, nil, err
	}

	repliesByComment := map[uint][]ReplyView{}
	if full {
		repliesByComment, err = b.attachReplies(ctx, commentIDs)
		if err != nil {
			return nil, nil, err
		}
	}

	byPost := make(map[uint][]CommentView)
	for _, c := range comments {
		view := CommentView{
			Comment: c,
			Author:  authors[c.AuthorRef()],
			Votes: orEmpty(lo.Map(votesByComment[c.ID], func(v models.CommentVote, _ int) models.ActorRef {
				return v.Voter()
			})),
			Replies: repliesByComment[c.ID],
		}
		byPost[c.PostID] = append(byPost[c.PostID], view)
	}
	return byPost, counts, nil
}

func (b *Builder) attachReplies(ctx context.Context, commentIDs []uint) (map[uint][]ReplyView, error) {
	replies, err := b.comments.ListRepliesByComments(ctx, commentIDs)
	if err != nil {
		return nil, err
	}
	replyIDs := lo.Map(replies, func(r models.CommentReply, _ int) uint { return r.ID })
	replyVotes, err := b.engagements.ListReplyVotes(ctx, replyIDs)
	if err != nil {
		return nil, err
	}
	votesByReply := lo.GroupBy(replyVotes, func(v models.CommentReplyVote) uint { return v.ReplyID })

	refs := lo.Map(replies, func(r models.CommentReply, _ int) models.ActorRef { return r.AuthorRef() })
	authors, err := b.resolveAuthors(ctx, refs)
	if err != nil {
		return nil, err
	}

	byComment := make(map[uint][]ReplyView)
	for _, r := range replies {
		byComment[r.CommentID] = append(byComment[r.CommentID], ReplyView{
			CommentReply: r,
			Author:       authors[r.AuthorRef()],
			Votes: orEmpty(lo.Map(votesByReply[r.ID], func(v models.CommentReplyVote, _ int) models.ActorRef {
				return v.Voter()
			})),
		})
	}
	return byComment, nil
}

// resolveAuthors turns tagged author refs into redacted author projections.
// Human refs are joined against user rows; animal refs pass through as bare
// profile refs.
func (b *Builder) resolveAuthors(ctx context.Context, refs []models.ActorRef) (map[models.ActorRef]CommentAuthor, error) {
	humanIDs := lo.Uniq(lo.FilterMap(refs, func(r models.ActorRef, _ int) (uint, bool) {
		return r.ID, r.Kind == models.ActorKindHuman
	}))

	users, err := b.users.GetByIDs(ctx, humanIDs)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(users, func(u models.User) uint { return u.ID })

	authors := make(map[models.ActorRef]CommentAuthor, len(refs))
	for _, ref := range refs {
		author := CommentAuthor{Kind: ref.Kind, ID: ref.ID}
		if ref.Kind == models.ActorKindHuman {
			if u, ok := byID[ref.ID]; ok {
				redacted := u.Redact()
				author.Username = redacted.Username
				author.Avatar = redacted.Avatar
			}
		}
		authors[ref] = author
	}
	return authors, nil
}

func commentRefs(comments []models.Comment) []models.ActorRef {
	return lo.Map(comments, func(c models.Comment, _ int) models.ActorRef { return c.AuthorRef() })
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
