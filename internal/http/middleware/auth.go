package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocalKey is the key under which RequireAuth stores the authenticated user ID.
const UserIDLocalKey = "user_id"

// AccessTokenParser verifies an access token and returns its subject.
type AccessTokenParser interface {
	ParseAccess(token string) (string, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <access token>" header
// with a 401 fiber.Error, rendered by the app's ErrorHandler.
func RequireAuth(p AccessTokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication credentials were not provided.")
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must contain two space-delimited values.")
		}

		userID, err := p.ParseAccess(token)
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
			return fiber.NewError(fiber.StatusUnauthorized, "Given token not valid for any token type.")
		}

		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user ID, or "" outside RequireAuth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
