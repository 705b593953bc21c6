// Package seed fills a development database with published posts and the
// reactions, collections and comment threads around them.
package seed

import (
	"fmt"
	"time"

	"channelpost/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options control the size and shape of the seeded data.
type Options struct {
	Users int
	Posts int
	// FirstMessageID is the channel message id of the first post; later
	// posts count up from it.
	FirstMessageID int64
	// MaxDays spreads post timestamps over the given number of past days.
	MaxDays int
	// Seed makes a run reproducible. Zero picks a random seed.
	Seed int64
}

// DefaultOptions is a small channel with a few busy posts.
func DefaultOptions() Options {
	return Options{Users: 30, Posts: 40, FirstMessageID: 1000, MaxDays: 30}
}

// Summary counts the rows a run created.
type Summary struct {
	Posts       int
	Reactions   int
	Collections int
	Comments    int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d posts, %d reactions, %d collections, %d comments",
		s.Posts, s.Reactions, s.Collections, s.Comments)
}

type user struct {
	id   int64
	name string
}

// Seeder writes fake data through gorm.
type Seeder struct {
	db   *gorm.DB
	fake *gofakeit.Faker
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes every interaction row and post.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Notification{},
		&models.PinnedPost{},
		&models.Comment{},
		&models.Collection{},
		&models.Reaction{},
		&models.Submission{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds opts.Posts posts authored by a pool of opts.Users users. Each
// user reacts to a post at most once and collects it at most once.
func (s *Seeder) Run(opts Options) (Summary, error) {
	if opts.Users < 1 || opts.Posts < 1 {
		return Summary{}, fmt.Errorf("seed needs at least one user and one post")
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	s.fake = gofakeit.New(opts.Seed)

	users := make([]user, opts.Users)
	for i := range users {
		users[i] = user{id: int64(100000 + i), name: s.fake.Name()}
	}

	var sum Summary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < opts.Posts; i++ {
			postID := opts.FirstMessageID + int64(i)
			author := users[s.fake.Number(0, len(users)-1)]

			post := &models.Submission{
				ChannelMessageID: postID,
				UserID:           author.id,
				UserName:         author.name,
				ContentText:      s.fake.Paragraph(1, s.fake.Number(1, 4), 12, "\n"),
				Timestamp:        s.pastTime(opts.MaxDays),
			}
			if err := tx.Create(post).Error; err != nil {
				return fmt.Errorf("post %d: %w", postID, err)
			}
			sum.Posts++

			reactions, collections := s.interactions(postID, users)
			if len(reactions) > 0 {
				if err := tx.CreateInBatches(reactions, 200).Error; err != nil {
					return fmt.Errorf("reactions of %d: %w", postID, err)
				}
			}
			if len(collections) > 0 {
				if err := tx.CreateInBatches(collections, 200).Error; err != nil {
					return fmt.Errorf("collections of %d: %w", postID, err)
				}
			}
			sum.Reactions += len(reactions)
			sum.Collections += len(collections)

			n, err := s.thread(tx, post, users)
			if err != nil {
				return fmt.Errorf("comments of %d: %w", postID, err)
			}
			sum.Comments += n
		}
		return nil
	})
	return sum, err
}

func (s *Seeder) interactions(postID int64, users []user) ([]models.Reaction, []models.Collection) {
	var reactions []models.Reaction
	var collections []models.Collection
	for _, u := range users {
		switch s.fake.Number(0, 9) {
		case 0, 1, 2, 3:
			reactions = append(reactions, models.Reaction{ChannelMessageID: postID, UserID: u.id, ReactionType: models.ReactionLike})
		case 4:
			reactions = append(reactions, models.Reaction{ChannelMessageID: postID, UserID: u.id, ReactionType: models.ReactionDislike})
		}
		if s.fake.Number(0, 9) == 0 {
			collections = append(collections, models.Collection{ChannelMessageID: postID, UserID: u.id})
		}
	}
	return reactions, collections
}

// thread adds a handful of top-level comments, some with replies.
func (s *Seeder) thread(tx *gorm.DB, post *models.Submission, users []user) (int, error) {
	created := 0
	at := post.Timestamp
	for i, n := 0, s.fake.Number(0, 5); i < n; i++ {
		at = at.Add(time.Duration(s.fake.Number(1, 120)) * time.Minute)
		top := s.comment(post.ChannelMessageID, users, nil, at)
		if err := tx.Create(top).Error; err != nil {
			return created, err
		}
		created++

		for j, m := 0, s.fake.Number(0, 4); j < m; j++ {
			at = at.Add(time.Duration(s.fake.Number(1, 30)) * time.Minute)
			reply := s.comment(post.ChannelMessageID, users, &top.ID, at)
			if err := tx.Create(reply).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) comment(postID int64, users []user, parentID *uint, at time.Time) *models.Comment {
	u := users[s.fake.Number(0, len(users)-1)]
	return &models.Comment{
		ChannelMessageID: postID,
		UserID:           u.id,
		UserName:         u.name,
		CommentText:      s.fake.Sentence(s.fake.Number(3, 14)),
		ParentID:         parentID,
		Timestamp:        at,
	}
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	back := time.Duration(s.fake.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}
