package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tecelaria/internal/apperr"
)

const userIDKey = "tecelaria.user_id"

// requireSession validates the bearer token and stores the user id on the
// request context. Unauthenticated calls never reach a handler.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			s.abortWithError(c, apperr.New(apperr.Unauthorized, "missing bearer token"))
			return
		}

		userID, err := s.auth.UserIDFromToken(strings.TrimSpace(token))
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// sessionUserID reads the authenticated user id set by requireSession.
func sessionUserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
