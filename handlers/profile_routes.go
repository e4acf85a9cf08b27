package handlers

import (
	"errors"

	"testquest/middleware"
	"testquest/models"
	"testquest/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupProfileRoutes(app *fiber.App, db *gorm.DB, leaderboard *services.LeaderboardService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/profile", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)

		var user models.User
		if err := db.First(&user, "id = ?", actor.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return respondError(c, &services.NotFoundError{Resource: "user", ID: actor.ID})
			}
			return respondError(c, err)
		}
		return c.JSON(user)
	})

	// Public: the leaderboard needs no auth context.
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		board, err := leaderboard.Generate()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(board)
	})
}
