// Package seed provides helpers to create demo data for the
// application database. Intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/md2004sameer/Wire/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with a plausible social mesh: users,
// follow edges in every state, posts, likes, comments and the
// notifications those actions would have produced.
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

// ClearAll wipes every seeded table. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Cleaning database...")
	for _, model := range []interface{}{
		&models.Notification{},
		&models.Comment{},
		&models.Like{},
		&models.Relationship{},
		&models.Post{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
	}
	return nil
}

// SeedUsers creates n accounts. Roughly a quarter are private so the
// pending-request path gets exercised by seeded follows. Every account
// has the password "password123".
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	seen := make(map[string]bool, n)
	for len(users) < n {
		username := strings.ToLower(gofakeit.Username())
		if len(username) < 3 || seen[username] {
			continue
		}
		seen[username] = true

		users = append(users, models.User{
			Username:  username,
			Email:     strings.ToLower(gofakeit.Email()),
			Password:  string(hash),
			Bio:       gofakeit.Sentence(8),
			IsPrivate: s.rng.Intn(4) == 0,
		})
	}

	if err := s.db.Create(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))
	return users, nil
}

// SeedGraph wires follow edges between users. Public targets get
// accepted edges, private targets pending ones, plus a handful of
// blocks. The matching follow notifications are written alongside.
func (s *Seeder) SeedGraph(users []models.User) error {
	if len(users) < 2 {
		return nil
	}

	var edges []models.Relationship
	var notifications []models.Notification
	pairs := make(map[string]bool)

	target := len(users) * 4
	for range target {
		from := users[s.rng.Intn(len(users))]
		to := users[s.rng.Intn(len(users))]
		if from.Username == to.Username {
			continue
		}
		key := from.Username + "->" + to.Username
		if pairs[key] {
			continue
		}
		pairs[key] = true

		status := models.RelationshipStatusAccepted
		notifType := models.NotificationFollow
		if to.IsPrivate && s.rng.Intn(2) == 0 {
			status = models.RelationshipStatusPending
			notifType = models.NotificationFollowRequest
		}
		if s.rng.Intn(50) == 0 {
			status = models.RelationshipStatusBlocked
		}

		edges = append(edges, models.Relationship{
			FromUsername: from.Username,
			ToUsername:   to.Username,
			Status:       status,
		})
		if status != models.RelationshipStatusBlocked {
			notifications = append(notifications, models.Notification{
				ToUsername:   to.Username,
				FromUsername: from.Username,
				Type:         notifType,
				Seen:         s.rng.Intn(2) == 0,
			})
		}
	}

	if len(edges) > 0 {
		if err := s.db.Create(&edges).Error; err != nil {
			return fmt.Errorf("failed to create relationships: %w", err)
		}
	}
	if len(notifications) > 0 {
		if err := s.db.Create(&notifications).Error; err != nil {
			return fmt.Errorf("failed to create notifications: %w", err)
		}
	}
	log.Printf("Created %d relationships", len(edges))
	return nil
}

// SeedPosts creates n posts with a realistic created_at spread, then
// sprinkles likes and comments keeping the denormalized counters
// consistent with the interaction rows.
func (s *Seeder) SeedPosts(users []models.User, n int) error {
	if len(users) == 0 {
		return nil
	}

	posts := make([]models.Post, 0, n)
	for range n {
		author := users[s.rng.Intn(len(users))]
		posts = append(posts, models.Post{
			Author:    author.Username,
			Content:   gofakeit.Paragraph(1, 3, 8, "\n"),
			CreatedAt: time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour),
		})
	}
	if err := s.db.Create(&posts).Error; err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}

	var likes []models.Like
	var comments []models.Comment
	for i := range posts {
		post := &posts[i]

		likers := s.rng.Perm(len(users))[:s.rng.Intn(min(len(users), 12))]
		for _, idx := range likers {
			likes = append(likes, models.Like{PostID: post.ID, Username: users[idx].Username})
		}
		post.LikeCount = len(likers)

		nComments := s.rng.Intn(5)
		for range nComments {
			commenter := users[s.rng.Intn(len(users))]
			comments = append(comments, models.Comment{
				PostID: post.ID,
				Author: commenter.Username,
				Text:   gofakeit.Sentence(10),
			})
		}
		post.CommentCount = nComments
		post.ShareCount = s.rng.Intn(4)

		if err := s.db.Model(post).UpdateColumns(map[string]interface{}{
			"like_count":    post.LikeCount,
			"comment_count": post.CommentCount,
			"share_count":   post.ShareCount,
		}).Error; err != nil {
			return fmt.Errorf("failed to update counters: %w", err)
		}
	}

	if len(likes) > 0 {
		if err := s.db.Create(&likes).Error; err != nil {
			return fmt.Errorf("failed to create likes: %w", err)
		}
	}
	if len(comments) > 0 {
		if err := s.db.Create(&comments).Error; err != nil {
			return fmt.Errorf("failed to create comments: %w", err)
		}
	}

	log.Printf("Created %d posts, %d likes, %d comments", len(posts), len(likes), len(comments))
	return nil
}

// Run executes the full seeding pipeline per the options.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	if err := s.SeedGraph(users); err != nil {
		return err
	}
	return s.SeedPosts(users, opts.NumPosts)
}
