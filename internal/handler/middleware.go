package handler

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/observability"
)

// requestIDLocalKey matches the fiber requestid middleware's default ContextKey.
const requestIDLocalKey = "requestid"

// AdminAuth guards admin routes with a static bearer token.
func AdminAuth(token string) fiber.Handler {
	expected := []byte(strings.TrimSpace(token))

	return func(c *fiber.Ctx) error {
		presented, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil || len(expected) == 0 {
			return toHTTPError(fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized))
		}
		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			return toHTTPError(fmt.Errorf("%w: invalid bearer token", domain.ErrUnauthorized))
		}
		return c.Next()
	}
}

// RequestContext copies the request id into the user context so services
// can attach it to logs and published events.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := requestID(c); id != "" {
			c.SetUserContext(observability.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", fmt.Errorf("missing bearer token")
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", fmt.Errorf("missing bearer token")
	}
	return token, nil
}

func requestID(c *fiber.Ctx) string {
	if value, ok := c.Locals(requestIDLocalKey).(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
}
