// Package middleware provides HTTP middleware components for the fiber app.
package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestIDKey is where the requestid middleware stores the request id.
const RequestIDKey = "requestid"

// HTTPMetrics receives one observation per request.
type HTTPMetrics interface {
	RecordHTTPRequest(method, endpoint string, status int, duration time.Duration)
}

// RequestLogger logs every request through zap and reports it to metrics.
// metrics may be nil.
func RequestLogger(log *zap.Logger, metrics HTTPMetrics) fiber.Handler {
	log = log.Named("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		// Method and path alias fasthttp buffers that are reused after the
		// handler returns.
		method := utils.CopyString(c.Method())
		path := utils.CopyString(c.Path())
		// Route pattern keeps label cardinality bounded.
		route := c.Route().Path
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		if id, ok := c.Locals(RequestIDKey).(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}

		if metrics != nil {
			metrics.RecordHTTPRequest(method, route, status, latency)
		}
		return err
	}
}
