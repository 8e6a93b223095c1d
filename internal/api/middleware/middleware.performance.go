package middleware

import (
	"time"

	"lead_center/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// slowRequestThreshold là ngưỡng thời gian xử lý để coi một request là chậm.
const slowRequestThreshold = 500 * time.Millisecond

// RequestTiming đo thời gian xử lý từng request và ghi log performance
// cho các request vượt ngưỡng chậm.
func RequestTiming() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		if elapsed >= slowRequestThreshold {
			logger.GetPerformanceLogger().WithFields(logrus.Fields{
				"method":      c.Method(),
				"path":        c.Path(),
				"status":      c.Response().StatusCode(),
				"duration_ms": elapsed.Milliseconds(),
			}).Warn("Slow request")
		}
		return err
	}
}
