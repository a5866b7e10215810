// Package middleware provides authentication, request context, tracing and
// rate limiting middleware for the HTTP server.
package middleware

import (
	"log/slog"
	"strings"

	"github.com/Pratik1374/API-GraphQL/internal/identity"
	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// SubjectLocal is the fiber locals key holding the verified subject.
const SubjectLocal = "subject"

func unauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized: " + reason,
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthRequired verifies the bearer token with the identity provider and puts
// the caller on both the fiber locals and the request context.
func AuthRequired(idp identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "missing bearer token")
		}
		token, ok := bearerToken(header)
		if !ok {
			return unauthorized(c, "invalid authorization header format")
		}

		ctx := c.UserContext()
		id, err := idp.Verify(ctx, token)
		if err != nil {
			observability.Logger.WarnContext(ctx, "bearer token rejected",
				slog.String("provider", idp.Name()),
				slog.String("error", err.Error()),
			)
			return unauthorized(c, "invalid or expired token")
		}
		if id == nil || id.Subject == "" {
			return unauthorized(c, "token has no subject")
		}

		c.Locals(SubjectLocal, id.Subject)
		ctx = identity.WithIdentity(ctx, id)
		ctx = observability.WithSubject(ctx, id.Subject)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// Subject returns the verified subject stored by AuthRequired, if any.
func Subject(c *fiber.Ctx) string {
	if sub, ok := c.Locals(SubjectLocal).(string); ok {
		return sub
	}
	return ""
}
