package handlers

import (
	"ehr-analysis-service/internal/domain/dtos"
	"ehr-analysis-service/internal/services"

	"github.com/gofiber/fiber/v2"
)

func statusFor(kind string) int {
	switch kind {
	case services.ErrorKindNotFound:
		return fiber.StatusNotFound
	case services.ErrorKindParse:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadRequest
	}
}

func writeError(c *fiber.Ctx, err error) error {
	kind := services.ErrorKind(err)
	return c.Status(statusFor(kind)).JSON(dtos.ErrorResponse{ErrorKind: kind, Error: err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dtos.ErrorResponse{ErrorKind: services.ErrorKindInvalidRequest, Error: msg})
}
