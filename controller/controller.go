package controller

import (
	"strconv"

	apperrors "chat-service/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// userID extracts the authenticated user's id from the verified JWT. The
// id is trusted once the middleware has accepted the token.
func userID(c *fiber.Ctx) uint {
	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)
	id, _ := strconv.ParseUint(claims["id"].(string), 10, 64)
	return uint(id)
}

func success(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    data,
	})
}

func successMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    nil,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

// fail maps a service error to an HTTP status. Distinct conflict kinds
// (already friends vs request pending) keep their specific messages.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidArgument:
		status, message = fiber.StatusBadRequest, err.Error()
	case apperrors.CodeNotFound:
		status, message = fiber.StatusNotFound, err.Error()
	case apperrors.CodeAlreadyExists, apperrors.CodeFailedPrecondition:
		status, message = fiber.StatusConflict, err.Error()
	case apperrors.CodePermissionDenied:
		status, message = fiber.StatusForbidden, err.Error()
	case apperrors.CodeUnauthenticated:
		status, message = fiber.StatusUnauthorized, err.Error()
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}
