package handlers

import (
	"errors"

	"testquest/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto HTTP status codes and stable JSON
// shapes. Money errors carry the amounts so clients can explain what happened.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validation     *services.ValidationError
		notFound       *services.NotFoundError
		forbidden      *services.ForbiddenError
		processed      *services.AlreadyProcessedError
		insufficient   *services.InsufficientBountyError
		cannotReduce   *services.CannotReduceRewardError
		alreadyCorrect *services.AlreadyCorrectAmountError
	)

	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validation.Error(),
			"field": validation.Field,
		})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": notFound.Error(),
		})
	case errors.As(err, &forbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": forbidden.Error(),
		})
	case errors.As(err, &processed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  processed.Error(),
			"status": processed.Status,
		})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":           insufficient.Error(),
			"remainingBounty": insufficient.RemainingBounty,
			"requestedAmount": insufficient.Requested,
			"alreadyPaid":     insufficient.AlreadyPaid,
			"newTotalReward":  insufficient.NewTotalReward,
		})
	case errors.As(err, &cannotReduce):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":           cannotReduce.Error(),
			"alreadyPaid":     cannotReduce.AlreadyPaid,
			"newRewardAmount": cannotReduce.NewRewardAmount,
		})
	case errors.As(err, &alreadyCorrect):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":       alreadyCorrect.Error(),
			"alreadyPaid": alreadyCorrect.AlreadyPaid,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
			"cause": err.Error(),
		})
	}
}
