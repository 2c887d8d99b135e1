package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateBlogRequest is the body of POST /api/blogs.
type CreateBlogRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=300"`
	Description string   `json:"description" validate:"max=1000"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=64"`
	Body        string   `json:"body" validate:"required,notblank"`
}

// EditBlogRequest lists the only fields an author may change. Anything else
// in the body is ignored.
type EditBlogRequest struct {
	Title       *string   `json:"title" validate:"omitnil,notblank,max=300"`
	Description *string   `json:"description" validate:"omitnil,max=1000"`
	Tags        *[]string `json:"tags" validate:"omitnil,max=50,dive,max=64"`
	Body        *string   `json:"body" validate:"omitnil,notblank"`
}

// ChangeStateRequest is the body of PATCH /api/blogs/:id/state.
type ChangeStateRequest struct {
	State string `json:"state"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListBlogs handles GET /api/blogs
// @Summary List blogs
// @Description Paginated list of published blogs with search and sort. filter=draft lists the caller's drafts.
// @Tags blogs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(20)
// @Param search query string false "Substring of title, tags or author id"
// @Param sort query string false "created_at, updated_at, read_count, reading_time or title; prefix with - for descending" default(-created_at)
// @Param filter query string false "draft or published"
// @Success 200 {object} models.PostPage
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /blogs [get]
func (s *Server) ListBlogs(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:          c.QueryInt("page", service.DefaultPage),
		Limit:         c.QueryInt("limit", service.DefaultLimit),
		Search:        c.Query("search"),
		Sort:          c.Query("sort"),
		Filter:        c.Query("filter"),
		CurrentUserID: middleware.UserID(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	if page.Posts == nil {
		page.Posts = []*models.Post{}
	}
	return c.JSON(page)
}

// GetBlog handles GET /api/blogs/:id
// @Summary Read a blog
// @Description Returns a published blog and counts the read
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [get]
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPublishedPost(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// CreateBlog handles POST /api/blogs
// @Summary Create a blog
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBlogRequest true "Blog"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /blogs [post]
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req CreateBlogRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if err := validation.Struct(&req); err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:    middleware.UserID(c),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Body:        req.Body,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ChangeBlogState handles PATCH /api/blogs/:id/state
// @Summary Publish or unpublish a blog
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Param request body ChangeStateRequest true "New state"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id}/state [patch]
func (s *Server) ChangeBlogState(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ChangeStateRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.ChangeState(c.UserContext(), service.ChangeStateInput{
		UserID: middleware.UserID(c),
		PostID: id,
		State:  req.State,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// EditBlog handles PATCH /api/blogs/:id
// @Summary Edit a blog
// @Description Only title, description, tags and body can be changed
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Param request body EditBlogRequest true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [patch]
func (s *Server) EditBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req EditBlogRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if err := validation.Struct(&req); err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postService.EditPost(c.UserContext(), service.EditPostInput{
		UserID:      middleware.UserID(c),
		PostID:      id,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Body:        req.Body,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// DeleteBlog handles DELETE /api/blogs/:id
// @Summary Delete a blog
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [delete]
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: middleware.UserID(c),
		PostID: id,
	}); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Blog deleted"})
}
