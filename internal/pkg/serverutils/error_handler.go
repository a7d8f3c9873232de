package serverutils

import (
	"errors"

	"leave-auth-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors returned by handlers onto
// HTTP status codes and a uniform JSON envelope.
func ErrorHandlerMiddleware(log interface {
	Error(module, message string, details map[string]interface{})
}) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *entity.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": validationErr.Message,
				"field":   validationErr.Field,
			})
		}

		var preconditionErr *entity.PreconditionError
		if errors.As(err, &preconditionErr) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success":        false,
				"message":        preconditionErr.Message,
				"current_status": preconditionErr.CurrentStatus,
			})
		}

		var notFoundErr *entity.NotFoundError
		if errors.As(err, &notFoundErr) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": notFoundErr.Error(),
			})
		}

		var conflictErr *entity.ConflictError
		if errors.As(err, &conflictErr) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": conflictErr.Message,
			})
		}

		var rateLimitErr *entity.RateLimitError
		if errors.As(err, &rateLimitErr) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":     false,
				"message":     rateLimitErr.Error(),
				"usage":       rateLimitErr.Usage,
				"limit":       rateLimitErr.Limit,
				"retry_after": rateLimitErr.RetryAfter,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		if log != nil {
			log.Error("http", "unhandled error", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}
