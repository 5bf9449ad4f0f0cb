package middleware

import (
	"github.com/gofiber/fiber/v2"

	"trial-catalog-service/internal/transport/httpserver/dto"
)

// viewerIDKey is the Locals key carrying the authenticated viewer id.
const viewerIDKey = "viewer_id"

// TokenVerifier validates a bearer token and returns the subject id.
// Implementations: internal/infra/auth
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth returns a middleware that rejects requests without a
// valid bearer token. On success the viewer id is stored in Locals.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "authorization required",
				Code:  "UNAUTHORIZED",
			})
		}

		viewerID, err := verifier.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid token",
				Code:  "INVALID_TOKEN",
			})
		}

		c.Locals(viewerIDKey, viewerID)

		return c.Next()
	}
}

// OptionalAuth returns a middleware that resolves the viewer when a
// bearer token is present but lets anonymous requests through. A token
// that is present and invalid is still rejected.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			return c.Next()
		}

		viewerID, err := verifier.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid token",
				Code:  "INVALID_TOKEN",
			})
		}

		c.Locals(viewerIDKey, viewerID)

		return c.Next()
	}
}

// ViewerID returns the authenticated viewer id, or "" for anonymous
// requests.
func ViewerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(viewerIDKey).(string); ok {
		return id
	}
	return ""
}
