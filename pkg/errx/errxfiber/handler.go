// Package errxfiber renders errx errors as Fiber JSON responses.
package errxfiber

import (
	"errors"

	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

const requestIDHeader = "X-Request-ID"

// Config tunes the error handler.
type Config struct {
	// Debug adds the wrapped cause to responses.
	Debug bool
}

// NewErrorHandler returns a fiber.ErrorHandler that converts *errx.Error,
// *fiber.Error and unknown errors into the standard error body.
func NewErrorHandler(cfg Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = c.GetRespHeader(requestIDHeader)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":      fe.Message,
				"code":       "FIBER_ERROR",
				"status":     fe.Code,
				"request_id": requestID,
			})
		}

		var e *errx.Error
		if errors.As(err, &e) {
			fields := logx.Fields{
				"path":       c.Path(),
				"method":     c.Method(),
				"code":       e.Code,
				"request_id": requestID,
			}
			if e.HTTPStatus >= fiber.StatusInternalServerError {
				logx.WithFields(fields).WithError(err).Error("request failed")
			} else {
				logx.WithFields(fields).Debug(e.Message)
			}

			resp := fiber.Map{
				"error":      e.Message,
				"code":       e.Code,
				"type":       string(e.Type),
				"status":     e.HTTPStatus,
				"request_id": requestID,
			}
			if len(e.Details) > 0 {
				resp["details"] = e.Details
			}
			if cfg.Debug && e.Err != nil {
				resp["underlying_error"] = e.Err.Error()
			}
			return c.Status(e.HTTPStatus).JSON(resp)
		}

		logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"request_id": requestID,
		}).WithError(err).Error("unhandled request error")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Internal Server Error",
			"type":       string(errx.TypeInternal),
			"code":       "INTERNAL_ERROR",
			"message":    "An unexpected error occurred",
			"request_id": requestID,
		})
	}
}
