package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tecelaria/internal/apperr"
)

func (s *Server) handleListQuestions(c *gin.Context) {
	questions, err := s.questions.WithStatus(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) handleRandomQuestion(c *gin.Context) {
	var box *int
	if raw := c.Query("box"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(c, apperr.New(apperr.Validation, "invalid box"))
			return
		}
		box = &value
	}

	question, err := s.questions.Random(c.Request.Context(), sessionUserID(c), box)
	if err != nil {
		s.writeError(c, err)
		return
	}
	// question == nil means the pool is exhausted; the client shows a
	// congratulations state instead of a prompt.
	c.JSON(http.StatusOK, gin.H{"question": question})
}

func (s *Server) handleProgress(c *gin.Context) {
	progress, err := s.questions.Progress(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (s *Server) handleAnsweredIDs(c *gin.Context) {
	ids, err := s.questions.AnsweredIDs(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if ids == nil {
		ids = []uint{}
	}
	c.JSON(http.StatusOK, gin.H{"question_ids": ids})
}
