package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestAuthRequired(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour, nil)
	app := fiber.New()

	called := false
	app.Get("/test", AuthRequired(tokens), func(c *fiber.Ctx) error {
		called = true
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": UserID(c), "jti": ClaimsFrom(c).JTI})
	})

	valid, err := tokens.Issue(123)
	require.NoError(t, err)
	otherSecret, err := auth.NewTokenManager("another-secret-another-secret-0000", time.Hour, nil).Issue(123)
	require.NoError(t, err)
	expired, err := auth.NewTokenManager(testSecret, -time.Minute, nil).Issue(123)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedError  string
		expectedCode   string
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK, "", ""},
		{"Missing Header", "", http.StatusUnauthorized, "No token provided", models.CodeMissingToken},
		{"Empty Bearer", "Bearer ", http.StatusUnauthorized, "No token provided", models.CodeMissingToken},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "Invalid token", models.CodeInvalidToken},
		{"Wrong Secret", "Bearer " + otherSecret, http.StatusUnauthorized, "Invalid token", models.CodeInvalidToken},
		{"Expired", "Bearer " + expired, http.StatusUnauthorized, "Invalid token", models.CodeInvalidToken},
		{"Garbage", "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid token", models.CodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				assert.True(t, called)
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(123), body["userID"])
				assert.NotEmpty(t, body["jti"])
				return
			}

			assert.False(t, called, "handler must not run on auth failure")
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedError, body.Error)
			assert.Equal(t, tt.expectedCode, body.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour, nil)
	app := fiber.New()
	app.Get("/test", OptionalAuth(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": UserID(c)})
	})

	valid, err := tokens.Issue(9)
	require.NoError(t, err)

	for header, want := range map[string]float64{
		"":                 0,
		"Bearer " + valid:  9,
		"Bearer not.a.jwt": 0,
	} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]float64
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()
		assert.Equal(t, want, body["userID"])
	}
}
