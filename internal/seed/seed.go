// Package seed provides database seeding utilities for development.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"threadline/internal/auth"
	"threadline/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ReplyRatio  float64 // fraction of posts created as replies
	ShouldClean bool
}

// DefaultOptions returns a small but usable development dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:   10,
		NumPosts:   50,
		ReplyRatio: 0.4,
	}
}

// Run populates the database with fake users and a reply-threaded post
// mesh. All seeded users share the password "password".
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts = DefaultOptions()
	}

	if opts.ShouldClean {
		if err := db.Exec("DELETE FROM posts").Error; err != nil {
			return fmt.Errorf("clean posts: %w", err)
		}
		if err := db.Exec("DELETE FROM users").Error; err != nil {
			return fmt.Errorf("clean users: %w", err)
		}
	}

	hashed := auth.HashPassword("password")

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Username:       fmt.Sprintf("%s%d", gofakeit.Username(), i),
			HashedPassword: hashed,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		owner := users[rand.Intn(len(users))]
		post := &models.Post{
			Content: gofakeit.Sentence(12),
			OwnerID: owner.ID,
		}
		if len(posts) > 0 && rand.Float64() < opts.ReplyRatio {
			parent := posts[rand.Intn(len(posts))]
			post.ReplyTo = &parent.ID
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}

	log.Printf("seeded %d users and %d posts", len(users), len(posts))
	return nil
}
