package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junwei-lu/scoreroom/internal/auth"
	"github.com/junwei-lu/scoreroom/internal/metrics"
)

// Context keys set by the auth middleware.
const (
	ctxOpenID   = "openid"
	ctxNickname = "nickname"
)

// AuthMiddleware validates the Bearer token and stashes the session identity
// in the gin context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		claims, err := jwtManager.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(ctxOpenID, claims.OpenID)
		c.Set(ctxNickname, claims.Nickname)
		c.Next()
	}
}

// SettleKeyMiddleware guards the privileged settlement route. The key is
// shared only with the trusted caller, never with clients.
func SettleKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		presented := c.GetHeader("X-Settle-Key")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			slog.Warn("settlement request with bad key", "remote", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ObserveMiddleware records request metrics and a structured access log line.
func ObserveMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(elapsed.Seconds())

		slog.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}

func sessionOpenID(c *gin.Context) string {
	return c.GetString(ctxOpenID)
}
