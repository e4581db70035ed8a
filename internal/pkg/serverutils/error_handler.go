package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docbox-be/pkg/rag"
)

// ErrorHandlerMiddleware converts errors escaping handlers into structured
// JSON responses. Callers never see a raw error string for scope issues.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		switch {
		case errors.Is(err, rag.ErrScopeViolation):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "access outside authorized scope"))
		case errors.Is(err, rag.ErrEmbeddingUnavailable),
			errors.Is(err, rag.ErrRetrievalUnavailable),
			errors.Is(err, rag.ErrGenerationUnavailable):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(fiber.StatusServiceUnavailable, "a backing service is unavailable, try again"))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
		}
	}
}
