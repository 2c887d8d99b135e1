// Package service holds the blog's business rules between the HTTP handlers
// and the repositories.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListCache is the subset of the Redis cache the listing uses.
type ListCache interface {
	ListKey(ctx context.Context, q models.PostListQuery) (string, error)
	Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error
	InvalidatePostLists(ctx context.Context)
	ListTTL() time.Duration
}

type PostService struct {
	postRepo     repository.PostRepository
	cache        ListCache
	flags        *featureflags.Manager
	defaultState models.PostState
}

type ListPostsInput struct {
	Page          int
	Limit         int
	Search        string
	Sort          string
	Filter        string
	CurrentUserID uint
}

type CreatePostInput struct {
	AuthorID    uint
	Title       string
	Description string
	Tags        []string
	Body        string
}

// EditPostInput carries only the fields an author may change; nil means
// leave as is.
type EditPostInput struct {
	UserID      uint
	PostID      uint
	Title       *string
	Description *string
	Tags        *[]string
	Body        *string
}

type ChangeStateInput struct {
	UserID uint
	PostID uint
	State  string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// NewPostService wires the post use cases. cache and flags may be nil;
// an empty defaultState means draft.
func NewPostService(
	postRepo repository.PostRepository,
	cache ListCache,
	flags *featureflags.Manager,
	defaultState models.PostState,
) *PostService {
	if defaultState == "" {
		defaultState = models.PostStateDraft
	}
	return &PostService{
		postRepo:     postRepo,
		cache:        cache,
		flags:        flags,
		defaultState: defaultState,
	}
}

// NormalizePage applies the listing defaults: page < 1 becomes 1, limit <= 0
// becomes DefaultLimit and limit is capped at MaxLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// ListPosts returns one page of posts. Without a filter only published posts
// are listed. filter=draft lists the caller's own drafts and needs an
// authenticated caller, unless the public_state_filter flag is on.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "ListPosts")
	defer span.End()

	sort, err := models.ParseSortSpec(in.Sort)
	if err != nil {
		return nil, err
	}

	page, limit := NormalizePage(in.Page, in.Limit)
	query := models.PostListQuery{
		State:  models.PostStatePublished,
		Search: strings.TrimSpace(in.Search),
		Sort:   sort,
		Page:   page,
		Limit:  limit,
	}

	if in.Filter != "" {
		state, err := models.ParsePostState(in.Filter)
		if err != nil {
			return nil, models.NewInvalidArgumentError("filter must be one of: draft, published")
		}
		query.State = state
		if state == models.PostStateDraft && !s.flags.Enabled(featureflags.PublicStateFilter, in.CurrentUserID) {
			if in.CurrentUserID == 0 {
				return nil, models.NewUnauthorizedError("Authentication required to list drafts")
			}
			query.AuthorID = in.CurrentUserID
		}
	}

	if s.cache == nil || query.AuthorID != 0 {
		return s.postRepo.List(ctx, query)
	}

	key, err := s.cache.ListKey(ctx, query)
	if err != nil || key == "" {
		if err != nil {
			slog.Default().WarnContext(ctx, "list cache key unavailable", slog.String("error", err.Error()))
		}
		return s.postRepo.List(ctx, query)
	}

	var result models.PostPage
	err = s.cache.Aside(ctx, key, &result, s.cache.ListTTL(), func() error {
		fetched, err := s.postRepo.List(ctx, query)
		if err != nil {
			return err
		}
		result = *fetched
		return nil
	})
	if err != nil {
		observability.EndSpan(span, err)
		return nil, err
	}
	return &result, nil
}

// GetPublishedPost counts one read of a published post and returns it with
// the new read_count. Drafts are reported as not found.
func (s *PostService) GetPublishedPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.IncrementReadCount(ctx, id)
	if err != nil {
		return nil, err
	}
	observability.BlogReads.Inc()
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("body is required")
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		Tags:        models.Tags(in.Tags),
		Body:        in.Body,
		State:       s.defaultState,
		AuthorID:    in.AuthorID,
		ReadingTime: EstimateReadingTime(in.Body),
	}
	if post.Tags == nil {
		post.Tags = models.Tags{}
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "create")

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) ChangeState(ctx context.Context, in ChangeStateInput) (*models.Post, error) {
	state, err := models.ParsePostState(in.State)
	if err != nil {
		return nil, err
	}

	post, err := s.ownedPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	post.State = state
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "state")
	return post, nil
}

func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, models.NewValidationError("title cannot be empty")
	}
	if in.Body != nil && strings.TrimSpace(*in.Body) == "" {
		return nil, models.NewValidationError("body cannot be empty")
	}

	post, err := s.ownedPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Description != nil {
		post.Description = *in.Description
	}
	if in.Tags != nil {
		post.Tags = models.Tags(*in.Tags)
		if post.Tags == nil {
			post.Tags = models.Tags{}
		}
	}
	if in.Body != nil {
		post.Body = *in.Body
	}
	post.ReadingTime = EstimateReadingTime(post.Body)

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "edit")
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	if _, err := s.ownedPost(ctx, in.PostID, in.UserID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}
	s.afterMutation(ctx, "delete")
	return nil
}

// ownedPost loads the post and checks authorship: absent is NOT_FOUND,
// someone else's is FORBIDDEN.
func (s *PostService) ownedPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError("You are not the author of this blog")
	}
	return post, nil
}

func (s *PostService) afterMutation(ctx context.Context, operation string) {
	observability.BlogMutations.WithLabelValues(operation).Inc()
	if s.cache != nil {
		s.cache.InvalidatePostLists(ctx)
	}
}
