package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorai-backend/internal/observability"
)

// unmeteredPaths are probes and scrapes that would drown out API traffic.
var unmeteredPaths = map[string]bool{
	"/metrics":     true,
	"/healthcheck": true,
	"/readyz":      true,
}

// Metrics records request count, latency and in-flight gauge per route template.
// Unmatched paths share the "unknown" route so arbitrary URLs cannot grow label sets.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || unmeteredPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		m.APIInflightInc()
		start := time.Now()
		defer func() {
			m.APIInflightDec()
			route := c.FullPath()
			if route == "" {
				route = "unknown"
			}
			m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
		}()
		c.Next()
	}
}
