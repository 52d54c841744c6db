package config

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PerformanceLogger logs every request with its latency and flags slow ones.
func PerformanceLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Msg("request")

		if latency > 200*time.Millisecond {
			log.Warn().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Dur("latency", latency).
				Msg("slow request")
		}
	}
}
