package middleware

import (
	"time"

	"github.com/Dhoini/storefront-payments/pkg/logger"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware логирует каждый HTTP запрос
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("%s %s -> %d (%s)",
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
