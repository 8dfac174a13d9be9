package serverutils

import (
	"errors"

	"bpmn-interview-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorMapping binds a sentinel error to a status code. An empty Message
// exposes the error text to the client.
type ErrorMapping struct {
	Err     error
	Code    int
	Message string
}

// Resolve returns the status code and client message for err.
func Resolve(err error, mappings []ErrorMapping) (int, string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, verr.Error()
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ferr.Message
	}

	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			if m.Message != "" {
				return m.Code, m.Message
			}
			return m.Code, err.Error()
		}
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// ErrorHandlerMiddleware turns errors returned by handlers into the
// standard response envelope. Server-side failures are logged with the
// original error.
func ErrorHandlerMiddleware(log logger.ILogger, mappings ...ErrorMapping) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := Resolve(err, mappings)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err.Error(),
			})
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
