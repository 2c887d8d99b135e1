package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type listResponse struct {
	Blogs       []models.Post `json:"blogs"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

func TestCreateBlog(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.author(t, "a@example.com")

	t.Run("short body reads in one minute", func(t *testing.T) {
		status, out := env.do(t, http.MethodPost, "/api/blogs", token, map[string]any{
			"title":       "Hello",
			"description": "first",
			"tags":        []string{"go", "web"},
			"body":        "one two three",
		})
		require.Equal(t, http.StatusCreated, status, string(out))

		var post models.Post
		require.NoError(t, json.Unmarshal(out, &post))
		assert.Equal(t, 1, post.ReadingTime)
		assert.Equal(t, models.PostStateDraft, post.State)
		assert.Equal(t, models.Tags{"go", "web"}, post.Tags)
		assert.Equal(t, int64(0), post.ReadCount)
		require.NotNil(t, post.AuthorSummary)
		assert.Equal(t, "a@example.com", post.AuthorSummary.Email)
	})

	t.Run("400 words read in two minutes", func(t *testing.T) {
		status, out := env.do(t, http.MethodPost, "/api/blogs", token, map[string]any{
			"title": "Long",
			"body":  words(400),
		})
		require.Equal(t, http.StatusCreated, status, string(out))

		var post models.Post
		require.NoError(t, json.Unmarshal(out, &post))
		assert.Equal(t, 2, post.ReadingTime)
	})

	t.Run("missing title", func(t *testing.T) {
		status, out := env.do(t, http.MethodPost, "/api/blogs", token, map[string]any{"body": "text"})
		assert.Equal(t, http.StatusBadRequest, status)
		body := decodeError(t, out)
		assert.Equal(t, models.CodeValidation, body.Code)
		assert.Equal(t, "title is required", body.Error)
	})

	t.Run("no token", func(t *testing.T) {
		status, out := env.do(t, http.MethodPost, "/api/blogs", "", map[string]any{"title": "x", "body": "y"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, models.ErrorResponse{Error: "No token provided", Code: models.CodeMissingToken}, decodeError(t, out))
	})

	t.Run("bad token", func(t *testing.T) {
		status, out := env.do(t, http.MethodPost, "/api/blogs", "not.a.jwt", map[string]any{"title": "x", "body": "y"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, models.ErrorResponse{Error: "Invalid token", Code: models.CodeInvalidToken}, decodeError(t, out))
	})
}

func TestChangeBlogState(t *testing.T) {
	env := newTestEnv(t, nil)
	_, tokenA := env.author(t, "a@example.com")
	_, tokenB := env.author(t, "b@example.com")
	id := env.createBlog(t, tokenA, "Mine", "body text")
	path := fmt.Sprintf("/api/blogs/%d/state", id)

	status, out := env.do(t, http.MethodPatch, path, tokenB, map[string]string{"state": "published"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You are not the author of this blog", decodeError(t, out).Error)

	status, out = env.do(t, http.MethodPatch, path, tokenA, map[string]string{"state": "archived"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeInvalidArgument, decodeError(t, out).Code)

	status, out = env.do(t, http.MethodPatch, path, tokenA, map[string]string{"state": "published"})
	require.Equal(t, http.StatusOK, status, string(out))
	var post models.Post
	require.NoError(t, json.Unmarshal(out, &post))
	assert.Equal(t, models.PostStatePublished, post.State)

	status, _ = env.do(t, http.MethodPatch, "/api/blogs/9999/state", tokenA, map[string]string{"state": "draft"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPatch, "/api/blogs/abc/state", tokenA, map[string]string{"state": "draft"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPatch, path, "", map[string]string{"state": "draft"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetBlog(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.author(t, "a@example.com")
	published := env.createBlog(t, token, "Public", "read me")
	env.publish(t, token, published)
	draft := env.createBlog(t, token, "Hidden", "not yet")

	for want := int64(1); want <= 2; want++ {
		status, out := env.do(t, http.MethodGet, fmt.Sprintf("/api/blogs/%d", published), "", nil)
		require.Equal(t, http.StatusOK, status, string(out))
		var post models.Post
		require.NoError(t, json.Unmarshal(out, &post))
		assert.Equal(t, want, post.ReadCount)
		require.NotNil(t, post.AuthorSummary)
		assert.Equal(t, "Ada", post.AuthorSummary.FirstName)
	}

	// Drafts stay hidden, even from their author.
	status, out := env.do(t, http.MethodGet, fmt.Sprintf("/api/blogs/%d", draft), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.ErrorResponse{Error: "Blog not found", Code: models.CodeNotFound}, decodeError(t, out))

	status, _ = env.do(t, http.MethodGet, "/api/blogs/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListBlogs(t *testing.T) {
	env := newTestEnv(t, nil)
	_, tokenA := env.author(t, "a@example.com")
	_, tokenB := env.author(t, "b@example.com")

	first := env.createBlog(t, tokenA, "Go tips", "alpha")
	env.publish(t, tokenA, first)
	second := env.createBlog(t, tokenA, "Rust notes", words(500))
	env.publish(t, tokenA, second)
	env.createBlog(t, tokenA, "Draft A", "draft")
	env.createBlog(t, tokenB, "Draft B", "draft")

	list := func(t *testing.T, query, token string) listResponse {
		t.Helper()
		status, out := env.do(t, http.MethodGet, "/api/blogs"+query, token, nil)
		require.Equal(t, http.StatusOK, status, string(out))
		var resp listResponse
		require.NoError(t, json.Unmarshal(out, &resp))
		return resp
	}

	t.Run("only published by default", func(t *testing.T) {
		resp := list(t, "", "")
		assert.Len(t, resp.Blogs, 2)
		assert.Equal(t, 1, resp.TotalPages)
		assert.Equal(t, 1, resp.CurrentPage)
		for _, b := range resp.Blogs {
			assert.Equal(t, models.PostStatePublished, b.State)
		}
	})

	t.Run("paging", func(t *testing.T) {
		resp := list(t, "?limit=1&page=2", "")
		assert.Len(t, resp.Blogs, 1)
		assert.Equal(t, 2, resp.TotalPages)
		assert.Equal(t, 2, resp.CurrentPage)
	})

	t.Run("search by title", func(t *testing.T) {
		resp := list(t, "?search=rust", "")
		require.Len(t, resp.Blogs, 1)
		assert.Equal(t, "Rust notes", resp.Blogs[0].Title)
	})

	t.Run("sort by reading time", func(t *testing.T) {
		resp := list(t, "?sort=-reading_time", "")
		require.Len(t, resp.Blogs, 2)
		assert.Equal(t, "Rust notes", resp.Blogs[0].Title)
	})

	t.Run("invalid sort", func(t *testing.T) {
		status, out := env.do(t, http.MethodGet, "/api/blogs?sort=password", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, models.CodeInvalidArgument, decodeError(t, out).Code)
	})

	t.Run("invalid filter", func(t *testing.T) {
		status, out := env.do(t, http.MethodGet, "/api/blogs?filter=archived", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "filter must be one of: draft, published", decodeError(t, out).Error)
	})

	t.Run("drafts need a caller", func(t *testing.T) {
		status, out := env.do(t, http.MethodGet, "/api/blogs?filter=draft", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, models.CodeUnauthorized, decodeError(t, out).Code)
	})

	t.Run("drafts are scoped to the caller", func(t *testing.T) {
		resp := list(t, "?filter=draft", tokenB)
		require.Len(t, resp.Blogs, 1)
		assert.Equal(t, "Draft B", resp.Blogs[0].Title)
	})

	t.Run("empty page renders an empty array", func(t *testing.T) {
		status, out := env.do(t, http.MethodGet, "/api/blogs?search=nothing-matches", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(out), `"blogs":[]`)
	})
}

func TestListBlogs_CacheInvalidatedAfterMutation(t *testing.T) {
	rdb, mr := setupRedis(t)
	env := newTestEnv(t, rdb)
	_, token := env.author(t, "a@example.com")

	status, out := env.do(t, http.MethodGet, "/api/blogs", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(out), `"blogs":[]`)
	assert.NotEmpty(t, mr.Keys())

	id := env.createBlog(t, token, "Fresh", "new post")
	env.publish(t, token, id)

	status, out = env.do(t, http.MethodGet, "/api/blogs", "", nil)
	require.Equal(t, http.StatusOK, status)
	var resp listResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Len(t, resp.Blogs, 1)
	assert.Equal(t, "Fresh", resp.Blogs[0].Title)
}

func TestEditBlog(t *testing.T) {
	env := newTestEnv(t, nil)
	userA, tokenA := env.author(t, "a@example.com")
	_, tokenB := env.author(t, "b@example.com")
	id := env.createBlog(t, tokenA, "Before", "short")
	path := fmt.Sprintf("/api/blogs/%d", id)

	status, _ := env.do(t, http.MethodPatch, path, tokenB, map[string]any{"title": "Hijack"})
	assert.Equal(t, http.StatusForbidden, status)

	status, out := env.do(t, http.MethodPatch, path, tokenA, map[string]any{
		"title":      "After",
		"body":       words(401),
		"read_count": 999,
		"state":      "published",
		"author_id":  12345,
	})
	require.Equal(t, http.StatusOK, status, string(out))

	var post models.Post
	require.NoError(t, json.Unmarshal(out, &post))
	assert.Equal(t, "After", post.Title)
	assert.Equal(t, 3, post.ReadingTime)
	assert.Equal(t, int64(0), post.ReadCount)
	assert.Equal(t, models.PostStateDraft, post.State)
	assert.Equal(t, userA.ID, post.AuthorID)

	status, out = env.do(t, http.MethodPatch, path, tokenA, map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, decodeError(t, out).Code)

	status, _ = env.do(t, http.MethodPatch, "/api/blogs/9999", tokenA, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteBlog(t *testing.T) {
	env := newTestEnv(t, nil)
	_, tokenA := env.author(t, "a@example.com")
	_, tokenB := env.author(t, "b@example.com")
	id := env.createBlog(t, tokenA, "Doomed", "bye")
	env.publish(t, tokenA, id)
	path := fmt.Sprintf("/api/blogs/%d", id)

	status, _ := env.do(t, http.MethodDelete, path, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, out := env.do(t, http.MethodDelete, path, tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Blog deleted"}`, string(out))

	status, _ = env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodDelete, path, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, query models.PostListQuery) (*models.PostPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostPage), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostRepository) IncrementReadCount(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func TestGetBlog_StoreFailureIsOpaque(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockRepo.On("IncrementReadCount", mock.Anything, uint(7)).
		Return(nil, models.NewInternalError(errors.New("connection refused")))

	s := &Server{postService: service.NewPostService(mockRepo, nil, nil, "")}
	app := fiber.New()
	app.Get("/blogs/:id", s.GetBlog)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/7", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.ErrorResponse{Error: "Internal server error", Code: models.CodeInternal}, body)
	mockRepo.AssertExpectations(t)
}

func TestListBlogs_PassesNormalizedQuery(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockRepo.On("List", mock.Anything, models.PostListQuery{
		State: models.PostStatePublished,
		Sort:  models.SortSpec{Key: models.SortByReadCount, Desc: true},
		Page:  1,
		Limit: service.MaxLimit,
	}).Return(&models.PostPage{CurrentPage: 1}, nil)

	s := &Server{postService: service.NewPostService(mockRepo, nil, nil, "")}
	app := fiber.New()
	app.Get("/blogs", s.ListBlogs)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs?page=0&limit=1000&sort=-read_count", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}
