package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func testConfig() *config.Config {
	return &config.Config{
		Port:                "0",
		Env:                 "test",
		JWTSecret:           testSecret,
		JWTTTLMinutes:       60,
		AllowedOrigins:      "http://localhost:5173",
		DefaultPostState:    "draft",
		ListCacheTTLSeconds: 30,
	}
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	db := setupSQLiteDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	return &testEnv{srv: srv, app: srv.NewApp(), db: db}
}

// author inserts a user directly and returns it with a valid token.
func (e *testEnv) author(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "hash"}
	require.NoError(t, repository.NewUserRepository(e.db).Create(context.Background(), user))
	token, err := e.srv.tokens.Issue(user.ID)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// createBlog posts a blog as the token holder and returns its id.
func (e *testEnv) createBlog(t *testing.T, token, title, body string) uint {
	t.Helper()
	status, out := e.do(t, http.MethodPost, "/api/blogs", token, map[string]any{
		"title": title,
		"body":  body,
		"tags":  []string{"go"},
	})
	require.Equal(t, http.StatusCreated, status, string(out))
	var post models.Post
	require.NoError(t, json.Unmarshal(out, &post))
	return post.ID
}

func (e *testEnv) publish(t *testing.T, token string, id uint) {
	t.Helper()
	status, out := e.do(t, http.MethodPatch, fmt.Sprintf("/api/blogs/%d/state", id), token,
		map[string]string{"state": "published"})
	require.Equal(t, http.StatusOK, status, string(out))
}

func decodeError(t *testing.T, out []byte) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(out, &body), string(out))
	return body
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}
