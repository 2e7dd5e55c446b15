package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics records one observation per request.
type HTTPMetrics interface {
	ObserveHTTPRequest(method, path, status string, elapsed time.Duration)
}

// Metrics labels requests by route template so path parameters such as
// order GUIDs do not create new series.
func Metrics(m HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
