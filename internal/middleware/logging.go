package middleware

import (
	"time"

	"github.com/dimitrije/capsule-api/internal/logging"
	"github.com/m1z23r/drift/pkg/drift"
)

// RequestLog logs one line per handled request.
func RequestLog(log logging.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		start := time.Now()

		c.Next()

		log.Info(c.Request.Context(), "request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"user_id", GetUserID(c),
			"duration", time.Since(start),
		)
	}
}
