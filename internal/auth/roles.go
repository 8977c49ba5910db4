package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// APIKeyHeader carries the scheduler shared secret.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey guards scheduler entry points. An empty configured key
// rejects every request.
func RequireAPIKey(key string) fiber.Handler {
	expected := []byte(key)
	return func(c *fiber.Ctx) error {
		provided := []byte(c.Get(APIKeyHeader))
		if len(expected) == 0 || len(provided) == 0 {
			return apperrors.NewUnauthenticated("missing api key")
		}
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			return apperrors.NewUnauthenticated("invalid api key")
		}
		return c.Next()
	}
}
