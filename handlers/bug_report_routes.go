package handlers

import (
	"strconv"

	"testquest/middleware"
	"testquest/models"
	"testquest/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBugReportRoutes(app *fiber.App, submission *services.SubmissionService, settlement *services.SettlementService) {
	// 🔐 Secured routes — require user context (userID, roles).
	// The gateway forwards paths like /api/v1/testquest/s/bug-reports -> /s/bug-reports
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/bug-reports", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)

		var req services.SubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		report, err := submission.SubmitBugReport(actor, req)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	})

	secured.Put("/bug-reports/process", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)

		var req services.ProcessRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		result, err := settlement.ProcessBugReport(actor, req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/bug-reports", func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)
		projectID := c.Query("projectId")
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		q := submission.DB.Model(&models.BugReport{}).Preload("Attachments")

		blur := false
		switch {
		case actor.CanViewAllReports():
			if projectID != "" {
				q = q.Where("project_id = ?", projectID)
			}
		case actor.Has(models.RoleDeveloper):
			// Developers see reports against their own projects only. With a
			// project selected the blur policy hides later unreviewed
			// duplicates per severity.
			if projectID != "" {
				var project models.Project
				if err := submission.DB.First(&project, "id = ?", projectID).Error; err != nil {
					return respondError(c, &services.NotFoundError{Resource: "project", ID: projectID})
				}
				if project.PostedByID != actor.ID {
					return respondError(c, &services.ForbiddenError{Reason: "project does not belong to you"})
				}
				q = q.Where("project_id = ?", projectID)
				blur = true
			} else {
				q = q.Joins("JOIN projects ON projects.id = bug_reports.project_id").
					Where("projects.posted_by_id = ?", actor.ID)
			}
		default:
			q = q.Where("submitted_by_id = ?", actor.ID)
			if projectID != "" {
				q = q.Where("project_id = ?", projectID)
			}
		}

		var total int64
		if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return respondError(c, err)
		}

		var reports []models.BugReport
		if err := q.Order("bug_reports.created_at ASC").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&reports).Error; err != nil {
			return respondError(c, err)
		}

		if blur {
			services.ApplyBlurPolicy(reports)
		}

		return c.JSON(fiber.Map{
			"bug_reports": reports,
			"page":        page,
			"limit":       limit,
			"total":       total,
		})
	})
}
