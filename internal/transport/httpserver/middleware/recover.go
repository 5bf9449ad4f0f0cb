package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trial-catalog-service/internal/transport/httpserver/dto"
)

// Recover returns a middleware that turns handler panics into 500
// responses instead of dropping the connection. The stack is logged
// at the panic site; the client sees only a generic error body.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("panic recovered",
				zap.Any("error", r),
				zap.String("path", c.Path()),
				zap.String("stack", string(debug.Stack())),
			)

			err = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: "internal server error",
				Code:  "PANIC",
			})
		}()

		return c.Next()
	}
}
