package middleware

import (
	"strconv"
	"time"

	"github.com/Muntazir86/short-it/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request duration and totals by method and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start).Seconds()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, status).Observe(elapsed)
		metrics.RequestTotal.WithLabelValues(c.Request.Method, status).Inc()
	}
}
