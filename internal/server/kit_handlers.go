package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tecelaria/internal/apperr"
)

type createKitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) handleCreateKit(c *gin.Context) {
	var req createKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	kit, err := s.kits.Create(c.Request.Context(), sessionUserID(c), req.Name, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"kit": kit})
}

func (s *Server) handleListKits(c *gin.Context) {
	kits, err := s.kits.ListForUser(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kits": kits})
}

func (s *Server) handleGetKit(c *gin.Context) {
	kitID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	userID := sessionUserID(c)

	kit, err := s.kits.Get(c.Request.Context(), kitID, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	clock, err := s.kits.Clock(c.Request.Context(), kitID, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kit": kit, "clock": clock})
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

func (s *Server) handleAddKitMember(c *gin.Context) {
	kitID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	member, err := s.kits.AddMember(c.Request.Context(), kitID, sessionUserID(c), req.Email, req.Role)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

func (s *Server) handleRemoveKitMember(c *gin.Context) {
	kitID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := s.pathID(c, "userId")
	if !ok {
		return
	}

	if err := s.kits.RemoveMember(c.Request.Context(), kitID, sessionUserID(c), userID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
