package middleware

import (
	"log"
	"strings"

	"testquest/models"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts user identity and roles set by Gateway.
// It is applied only to routes under /s/ — but for safety, we guard.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")

		path := c.Path()
		isSecured := strings.HasPrefix(path, "/s/")
		if isSecured && userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []models.Role
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, models.Role(r))
				}
			}
		}

		c.Locals("actor", models.Actor{ID: userID, Roles: roles})

		return c.Next()
	}
}

// ActorFromCtx pulls the gateway-provided identity back out of the request.
func ActorFromCtx(c *fiber.Ctx) models.Actor {
	actor, _ := c.Locals("actor").(models.Actor)
	return actor
}
