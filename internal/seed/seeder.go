// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pawgram/internal/models"
	"pawgram/internal/service"
)

// Seeder populates the database with a plausible social mesh: users, follow
// records, posts with hashtags, votes, comments and replies.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll truncates every seeded table, children first.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.CommentReplyVote{},
		&models.CommentReply{},
		&models.CommentVote{},
		&models.Comment{},
		&models.PostVote{},
		&models.PostHashtag{},
		&models.Post{},
		&models.FollowingEntry{},
		&models.Following{},
		&models.FollowerEntry{},
		&models.Followers{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates n users with follow records, every user following a
// random subset of the others in both directions.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:        fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			PasswordHash: string(hash),
			Avatar:       fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
			Bio:          gofakeit.Sentence(8),
			Confirmed:    true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	for _, user := range users {
		following := models.Following{UserID: user.ID}
		followers := models.Followers{UserID: user.ID}
		if err := s.db.Create(&following).Error; err != nil {
			return nil, err
		}
		if err := s.db.Create(&followers).Error; err != nil {
			return nil, err
		}
	}

	// Random follow edges, kept symmetric across the two record sets.
	for _, follower := range users {
		for _, target := range users {
			if follower.ID == target.ID || s.rng.Float64() > 0.2 {
				continue
			}
			if err := s.follow(follower.ID, target.ID); err != nil {
				return nil, err
			}
		}
	}

	return users, nil
}

func (s *Seeder) follow(followerID, targetID uint) error {
	var following models.Following
	if err := s.db.Where("user_id = ?", followerID).First(&following).Error; err != nil {
		return err
	}
	if err := s.db.Create(&models.FollowingEntry{
		FollowingID: following.ID,
		Kind:        models.ActorKindHuman,
		TargetID:    targetID,
	}).Error; err != nil {
		return err
	}

	var followers models.Followers
	if err := s.db.Where("user_id = ?", targetID).First(&followers).Error; err != nil {
		return err
	}
	return s.db.Create(&models.FollowerEntry{
		FollowersID: followers.ID,
		Kind:        models.ActorKindHuman,
		TargetID:    followerID,
	}).Error
}

// SeedPosts creates n posts spread across the users with captions carrying
// real hashtags, plus votes, comments and replies.
func (s *Seeder) SeedPosts(users []models.User, n int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to seed posts for")
	}

	tags := []string{"RescueDog", "AdoptDontShop", "CatsOfPawgram", "PuppyLove", "SeniorPets", "FosterFail"}

	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		caption := gofakeit.Sentence(6)
		for _, tag := range tags {
			if s.rng.Float64() < 0.3 {
				caption += " #" + tag
			}
		}

		post := models.Post{
			Image:     fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Thumbnail: fmt.Sprintf("https://picsum.photos/seed/%s/400/400", gofakeit.UUID()),
			Caption:   caption,
			AuthorID:  author.ID,
			Hashtags:  service.ExtractHashtags(caption),
			CreatedAt: time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return err
		}
		for _, tag := range post.Hashtags {
			if err := s.db.Create(&models.PostHashtag{PostID: post.ID, Tag: tag}).Error; err != nil {
				return err
			}
		}

		if err := s.seedEngagement(post, users); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedEngagement(post models.Post, users []models.User) error {
	for _, voter := range users {
		if s.rng.Float64() < 0.25 {
			vote := models.PostVote{
				PostID:    post.ID,
				VoterKind: models.ActorKindHuman,
				VoterID:   voter.ID,
			}
			if err := s.db.Create(&vote).Error; err != nil {
				return err
			}
		}
	}

	for c := 0; c < s.rng.Intn(6); c++ {
		author := users[s.rng.Intn(len(users))]
		comment := models.Comment{
			PostID:     post.ID,
			Message:    gofakeit.Sentence(10),
			AuthorKind: models.ActorKindHuman,
			AuthorID:   author.ID,
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}

		if s.rng.Float64() < 0.4 {
			replier := users[s.rng.Intn(len(users))]
			reply := models.CommentReply{
				CommentID:  comment.ID,
				Message:    gofakeit.Sentence(8),
				AuthorKind: models.ActorKindHuman,
				AuthorID:   replier.ID,
			}
			if err := s.db.Create(&reply).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
