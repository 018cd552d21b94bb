package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tecelaria/internal/apperr"
)

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.External:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error onto the wire. Unclassified errors become
// 500s with a generic message; the cause stays in the log only.
func (s *Server) writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)

	message := "internal error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   kind.String(),
		"message": message,
	})
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	s.writeError(c, err)
	c.Abort()
}
