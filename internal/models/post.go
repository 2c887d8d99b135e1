package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// PostState controls public visibility of a post.
type PostState string

const (
	PostStateDraft     PostState = "draft"
	PostStatePublished PostState = "published"
)

// ParsePostState validates a caller-supplied state value.
func ParsePostState(raw string) (PostState, error) {
	switch PostState(strings.ToLower(strings.TrimSpace(raw))) {
	case PostStateDraft:
		return PostStateDraft, nil
	case PostStatePublished:
		return PostStatePublished, nil
	default:
		return "", NewInvalidArgumentError("state must be one of: draft, published")
	}
}

// Tags is an ordered tag list. On postgres it maps to text[]; other
// dialects store the same array literal as text.
type Tags []string

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*t = Tags(arr)
	return nil
}

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(t).Value()
}

// GormDBDataType picks the column type per dialect.
func (Tags) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Post is a blog post.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Tags        Tags      `json:"tags"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	State       PostState `gorm:"type:varchar(16);not null;default:draft;index" json:"state"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	ReadCount   int64     `gorm:"not null;default:0" json:"read_count"`
	ReadingTime int       `gorm:"not null;default:0" json:"reading_time"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// AuthorSummary is filled from Author after loading; it is what clients see.
	AuthorSummary *AuthorSummary `gorm:"-" json:"author,omitempty"`
}

// IsOwnedBy reports whether userID authored the post.
func (p *Post) IsOwnedBy(userID uint) bool {
	return p.AuthorID == userID
}
