package rest

import (
	"errors"
	"fmt"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/bikram73/My-Bank/internal/server/auth"
	"github.com/bikram73/My-Bank/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

const msgServerError = "Server error"

// toHTTPError maps service errors to client-facing status and message.
// storageMsg is used for storage failures so each route keeps its wording;
// backend detail never reaches the body.
func toHTTPError(err error, storageMsg string) *fiber.Error {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters.", services.MinPasswordLength))
	case errors.Is(err, services.ErrPasswordTooLong):
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Password must be at most %d bytes.", auth.MaxPasswordBytes))
	case errors.Is(err, services.ErrMissingIdentity):
		return fiber.NewError(fiber.StatusBadRequest, "Username and email are required.")
	case errors.Is(err, common.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	case errors.Is(err, common.ErrDuplicateEmail):
		return fiber.NewError(fiber.StatusBadRequest, "Email already exists.")
	case errors.Is(err, common.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "Invalid Token")
	case errors.Is(err, common.ErrorNotFound):
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	case errors.Is(err, common.ErrStorage):
		return fiber.NewError(fiber.StatusInternalServerError, storageMsg)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, msgServerError)
	}
}

// errorHandler renders every error as {"error": msg}. Anything that is not
// a *fiber.Error becomes a generic 500.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := msgServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		s.logger.Error(c.UserContext(), "unhandled error", "error", err)
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
