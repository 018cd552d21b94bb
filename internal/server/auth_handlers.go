package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tecelaria/internal/apperr"
	"tecelaria/internal/model"
	"tecelaria/internal/service"
)

// userView strips credentials from the wire representation.
type userView struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	CPF   string `json:"cpf,omitempty"`
}

func newUserView(user *model.User) userView {
	return userView{ID: user.ID, Email: user.Email, Name: user.Name, CPF: user.CPF}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	CPF      string `json:"cpf"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	user, err := s.auth.Signup(c.Request.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		CPF:      req.CPF,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": newUserView(user)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	user, token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user), "token": token})
}

func (s *Server) handleSession(c *gin.Context) {
	user, err := s.auth.GetUser(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

// handleLogout exists for client symmetry: bearer sessions are stateless, so
// the server side has nothing to revoke.
func (s *Server) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
