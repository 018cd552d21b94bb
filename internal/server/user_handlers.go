package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tecelaria/internal/apperr"
)

func (s *Server) handleGetProfile(c *gin.Context) {
	user, err := s.auth.GetUser(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

type updateProfileRequest struct {
	Name string `json:"name"`
	CPF  string `json:"cpf"`
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	user, err := s.auth.UpdateProfile(c.Request.Context(), sessionUserID(c), req.Name, req.CPF)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

func (s *Server) handleDashboard(c *gin.Context) {
	dashboard, err := s.dashboard.ForUser(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// handleActivateOwnKit activates the caller's own kit, the common path from
// the onboarding screen.
func (s *Server) handleActivateOwnKit(c *gin.Context) {
	userID := sessionUserID(c)
	kit, err := s.kits.OwnedKit(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if kit == nil {
		s.writeError(c, apperr.New(apperr.NotFound, "you do not own a kit yet"))
		return
	}

	activated, err := s.kits.Activate(c.Request.Context(), kit.ID, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kit": activated})
}
