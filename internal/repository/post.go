// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const postNotFoundMessage = "Blog not found"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, query models.PostListQuery) (*models.PostPage, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementReadCount(ctx context.Context, id uint) (*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func withAuthorSummary(db *gorm.DB) *gorm.DB {
	return db.Preload("Author", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "first_name", "last_name", "email")
	})
}

func projectAuthors(posts ...*models.Post) {
	for _, p := range posts {
		p.AuthorSummary = p.Author.Summary()
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogWrite(ctx, "create", post.ID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	if err := withAuthorSummary(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(postNotFoundMessage)
		}
		return nil, err
	}
	projectAuthors(&post)
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, query models.PostListQuery) (*models.PostPage, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "List", "posts")
	defer span.End()
	defer observability.TrackQuery("list", "posts")()

	where, args, err := buildListPredicate(r.db.Dialector.Name(), query).ToSql()
	if err != nil {
		return nil, err
	}
	scoped := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{}).Where(where, args...)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		observability.EndSpan(span, err)
		return nil, err
	}

	tieBreak := "id ASC"
	if query.Sort.Desc {
		tieBreak = "id DESC"
	}

	posts := make([]*models.Post, 0, query.Limit)
	if total > 0 {
		err := withAuthorSummary(scoped()).
			Order(query.Sort.OrderClause()).
			Order(tieBreak).
			Limit(query.Limit).
			Offset(query.Offset()).
			Find(&posts).Error
		if err != nil {
			return nil, err
		}
	}
	projectAuthors(posts...)

	return &models.PostPage{
		Posts:       posts,
		TotalPages:  models.TotalPagesFor(total, query.Limit),
		CurrentPage: query.Page,
		TotalCount:  total,
	}, nil
}

// Update writes the editable columns only; read_count and author_id are
// never overwritten here.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("Title", "Description", "Tags", "Body", "State", "ReadingTime").
		Updates(post).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return err
	}
	r.log.LogWrite(ctx, "update", post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(postNotFoundMessage)
	}
	r.log.LogWrite(ctx, "delete", id)
	return nil
}

// IncrementReadCount bumps read_count of a published post in a single
// statement and returns the post as stored afterwards. Drafts and missing
// posts are both reported as not found.
func (r *postRepository) IncrementReadCount(ctx context.Context, id uint) (*models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "IncrementReadCount", "posts")
	defer span.End()

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND state = ?", id, string(models.PostStatePublished)).
		UpdateColumn("read_count", gorm.Expr("read_count + ?", 1))
	if res.Error != nil {
		observability.EndSpan(span, res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError(postNotFoundMessage)
	}
	return r.GetByID(ctx, id)
}
