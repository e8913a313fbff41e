package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorai-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

// RequestLogger writes one line per request. Every AI endpoint answers 200, so a
// request that recorded errors on the gin context is logged at warn level as well.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if unmeteredPaths[c.Request.URL.Path] {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}

		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			fields = append(fields, "user_id", rd.UserID, "plan", string(rd.Plan))
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "error", errs.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400 || len(c.Errors) > 0:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}
