package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one access line per request and logs any errors
// handlers attached with c.Error.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		if len(c.Errors) > 0 {
			log.Errorw(c.Errors.String(), fields...)
			return
		}
		log.Infow("request", fields...)
	}
}
