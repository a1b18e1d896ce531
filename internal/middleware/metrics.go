package middleware

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Metrics records request counts and latency labelled by the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		// Label values outlive the request; fasthttp reuses the backing buffers.
		metrics.RecordHTTPRequest(utils.CopyString(c.Method()), utils.CopyString(c.Route().Path), status, time.Since(start))
		return err
	}
}
