package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
)

// requestLogger writes one JSON line per request in the service log format.
func requestLogger(lg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/api/events" {
			return
		}
		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			lg.Warn("http_request", fields)
		default:
			lg.Debug("http_request", fields)
		}
	}
}

// recovery turns a panic into a 500 and logs it.
func recovery(lg *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		lg.Warn("http_panic", map[string]any{"path": c.Request.URL.Path, "panic": err})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// corsConfig allows the configured front-end origins. "*" allows any origin.
// ok is false when no origin is configured.
func corsConfig(origins []string) (cfg cors.Config, ok bool) {
	cfg = cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       10 * time.Minute,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowOrigins = nil
			return cfg, true
		}
		cfg.AllowOrigins = append(cfg.AllowOrigins, strings.TrimRight(o, "/"))
	}
	return cfg, len(cfg.AllowOrigins) > 0
}
