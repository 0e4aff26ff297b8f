package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/pkg/apperr"
)

// ErrorHandlerMiddleware converts every error escaping a handler into a
// well-formed envelope. Internal error text never reaches the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		var storeErr *apperr.StoreError
		if errors.As(err, &storeErr) {
			log.Error("http", "store failure", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			return ctx.Status(fiber.StatusServiceUnavailable).
				JSON(ErrorResponse("Service temporarily unavailable. Please try again."))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse("Something went wrong. Please try again."))
	}
}
