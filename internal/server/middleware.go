package server

import (
	"errors"
	"time"

	"github.com/Rana718/seedforge/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusOf is the status the client will see once the error handler has
// run on err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := statusOf(c, err)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
		}
		switch {
		case status >= 500:
			logger.Error("request failed", append(fields, zap.Error(err))...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		default:
			logger.Debug("request", fields...)
		}
		return err
	}
}

func metricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if metrics.ShouldSkipEndpoint(c.Path()) {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		// Route pattern, not the concrete path, to bound label cardinality.
		m.RecordHTTPRequest(c.Method(), c.Route().Path, statusOf(c, err), time.Since(start))
		return err
	}
}
