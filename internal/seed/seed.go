package seed

import (
	"context"
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// PublishRatio is the share of posts created as published; 0 means 0.7.
	PublishRatio float64
	MaxDays      int
	SkipBcrypt   bool
	DryRun       bool
}

func (o Options) publishRatio() float64 {
	if o.PublishRatio <= 0 {
		return 0.7
	}
	return o.PublishRatio
}

// Result reports what Seed created.
type Result struct {
	Users     []*models.User
	Posts     int
	Published int
}

// Seed populates the database with demo authors and posts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db.WithContext(ctx), opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		n := i + 1
		user, err := f.CreateUser(func(u *models.User) {
			u.Email = fmt.Sprintf("author%d.%s", n, u.Email)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d authors created", len(users))

	result := &Result{Users: users}
	if len(users) == 0 {
		return result, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		post := f.BuildPost(users[f.rng.Intn(len(users))])
		if post.State == models.PostStatePublished {
			result.Published++
		}
		posts = append(posts, post)
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	result.Posts = len(posts)
	log.Printf("✓ %d posts created (%d published)", result.Posts, result.Published)

	log.Println("🎉 Database seeding completed successfully!")
	return result, nil
}

func clearData(ctx context.Context, db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	tx := db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return tx.Exec(`TRUNCATE TABLE posts, users RESTART IDENTITY CASCADE;`).Error
	}
	if err := tx.Exec(`DELETE FROM posts`).Error; err != nil {
		return err
	}
	return tx.Exec(`DELETE FROM users`).Error
}
