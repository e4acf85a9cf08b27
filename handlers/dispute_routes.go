package handlers

import (
	"strconv"

	"testquest/middleware"
	"testquest/models"
	"testquest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDisputeRoutes(app *fiber.App, disputes *services.DisputeService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/disputes", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)

		var req services.FileDisputeRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		dispute, err := disputes.FileDispute(actor, req)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dispute)
	})

	secured.Get("/disputes", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)

		list, err := disputes.ListMyDisputes(actor, c.Query("projectId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"disputes": list})
	})

	secured.Get("/moderator/disputes", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)
		if !actor.Has(models.RoleModerator) {
			return respondError(c, &services.ForbiddenError{Reason: "moderator role required"})
		}

		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		filter := services.DisputeFilter{
			Status:   models.DisputeStatus(c.Query("status")),
			Priority: models.DisputePriority(c.Query("priority")),
			Category: models.DisputeCategory(c.Query("category")),
			Page:     page,
			Limit:    limit,
		}
		list, err := disputes.ListDisputes(actor.ID, filter)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"disputes": list})
	})

	secured.Put("/moderator/disputes/resolve", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)
		if !actor.Has(models.RoleModerator) {
			return respondError(c, &services.ForbiddenError{Reason: "moderator role required"})
		}

		var body struct {
			DisputeID   string `json:"disputeId"`
			DisputeType string `json:"disputeType"`
			Action      string `json:"action"`
			Response    string `json:"response"`
			Resolution  struct {
				Action  string `json:"action"`
				Details string `json:"details"`
			} `json:"resolution"`
			Override *services.BugReportOverride `json:"bugReportOverride"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		// Only project disputes exist today; reject anything else loudly
		// rather than misrouting it.
		if body.DisputeType != "" && body.DisputeType != "project" {
			return respondError(c, &services.ValidationError{Field: "disputeType", Reason: "unknown dispute type"})
		}

		result, err := disputes.ResolveDispute(actor.ID, services.ResolveDisputeRequest{
			DisputeID:         body.DisputeID,
			Action:            services.DisputeAction(body.Action),
			Response:          body.Response,
			ResolutionAction:  body.Resolution.Action,
			ResolutionDetails: body.Resolution.Details,
			Override:          body.Override,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})
}
