// Package middleware provides the Fiber middleware shared by every route:
// authentication, rate limiting, structured logging, metrics and tracing.
package middleware

import (
	"context"
	"errors"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals written by the auth middleware.
const (
	LocalUserID = "userID"
	LocalClaims = "claims"
)

// TokenVerifier turns a bearer token into claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthRequired rejects requests without a valid bearer token with 401 and
// never reaches the handler in that case.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, verifier)
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					&models.AppError{Code: models.CodeMissingToken, Message: "No token provided"})
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				&models.AppError{Code: models.CodeInvalidToken, Message: "Invalid token"})
		}
		setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is presented and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := authenticate(c, verifier); err == nil {
			setIdentity(c, claims)
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, verifier TokenVerifier) (*auth.Claims, error) {
	token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return verifier.Verify(c.UserContext(), token)
}

func setIdentity(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalClaims, claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// UserID returns the authenticated caller, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(LocalUserID).(uint); ok {
		return id
	}
	return 0
}

// ClaimsFrom returns the verified token claims, if any.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}
