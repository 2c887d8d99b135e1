// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded author can log in with.
const DemoPassword = "Password123!demo"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

// BuildUser constructs an author without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     strings.ToLower(gofakeit.Email()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = DemoPassword
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample author.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for author without persisting it. created_at
// is spread over the last MaxDays and a PublishRatio share is published.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	body := gofakeit.Paragraph(f.rng.Intn(6)+1, f.rng.Intn(8)+3, f.rng.Intn(30)+8, "\n\n")

	tags := make(models.Tags, 0, 3)
	for i := 0; i < f.rng.Intn(3)+1; i++ {
		tags = append(tags, strings.ToLower(gofakeit.HackerNoun()))
	}

	state := models.PostStateDraft
	if f.rng.Float64() < f.opts.publishRatio() {
		state = models.PostStatePublished
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	createdAt := time.Now().Add(-time.Duration(f.rng.Intn(maxDays))*24*time.Hour -
		time.Duration(f.rng.Intn(24))*time.Hour -
		time.Duration(f.rng.Intn(60))*time.Minute)

	post := &models.Post{
		Title:       strings.TrimSuffix(gofakeit.Sentence(f.rng.Intn(5)+3), "."),
		Description: gofakeit.Sentence(12),
		Tags:        tags,
		Body:        body,
		State:       state,
		AuthorID:    author.ID,
		ReadingTime: service.EstimateReadingTime(body),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if state == models.PostStatePublished {
		post.ReadCount = int64(f.rng.Intn(500))
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}
