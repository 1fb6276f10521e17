package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"policygen/pkg/generation"
	"policygen/pkg/wizard"
)

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case wizard.IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, wizard.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, wizard.ErrNotFound),
		errors.Is(err, wizard.ErrSessionNotFound),
		errors.Is(err, wizard.ErrDocumentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, generation.ErrMalformedResponse):
		return fiber.StatusBadGateway
	case errors.Is(err, generation.ErrEmptyGeneration):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrGenerationTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, wizard.ErrUpstreamUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, wizard.ErrGenerationInProgress),
		errors.Is(err, wizard.ErrStaleGeneration),
		errors.Is(err, wizard.ErrTerminalStep),
		errors.Is(err, wizard.ErrFirstStep):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns errors returned by handlers into the
// standard error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "internal server error"
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
