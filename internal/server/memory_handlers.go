package server

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tecelaria/internal/apperr"
	"tecelaria/internal/service"
)

type processMemoryRequest struct {
	Type        string `json:"type" binding:"required"`
	Content     string `json:"content"`
	AudioBase64 string `json:"audio_base64"`
	MimeType    string `json:"mime_type"`
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name"`
	CategoryID  *uint  `json:"category_id"`
	QuestionID  *uint  `json:"question_id"`
}

func (s *Server) handleProcessMemory(c *gin.Context) {
	var req processMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	input := service.ProcessInput{
		Type:       req.Type,
		Content:    req.Content,
		MimeType:   req.MimeType,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
		CategoryID: req.CategoryID,
		QuestionID: req.QuestionID,
	}
	if req.AudioBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			s.writeError(c, apperr.Wrap(apperr.Validation, "invalid base64 audio payload", err))
			return
		}
		input.AudioData = data
	}

	result, err := s.memories.Process(c.Request.Context(), sessionUserID(c), input)
	if err != nil {
		// The raw memory survives enrichment failures; tell the client which
		// row to retry against.
		if apperr.IsKind(err, apperr.External) && result != nil && result.Memory != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":     apperr.External.String(),
				"message":   "enrichment failed",
				"memory_id": result.Memory.ID,
			})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleListMemories(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(c, apperr.New(apperr.Validation, "invalid category_id"))
			return
		}
		value := uint(id)
		categoryID = &value
	}

	memories, err := s.memories.List(c.Request.Context(), sessionUserID(c), categoryID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories})
}

func (s *Server) handleGetMemory(c *gin.Context) {
	memoryID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	memory, err := s.memories.Get(c.Request.Context(), sessionUserID(c), memoryID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memory": memory})
}

type updateMemoryRequest struct {
	Title           *string  `json:"title"`
	Summary         *string  `json:"summary"`
	Themes          []string `json:"themes"`
	PeopleMentioned []string `json:"people_mentioned"`
	PeriodMentioned *string  `json:"period_mentioned"`
	CategoryID      *uint    `json:"category_id"`
}

func (s *Server) handleUpdateMemory(c *gin.Context) {
	memoryID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req updateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	memory, err := s.memories.Update(c.Request.Context(), sessionUserID(c), memoryID, service.UpdateInput{
		Title:           req.Title,
		Summary:         req.Summary,
		Themes:          req.Themes,
		PeopleMentioned: req.PeopleMentioned,
		PeriodMentioned: req.PeriodMentioned,
		CategoryID:      req.CategoryID,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memory": memory})
}

func (s *Server) handleDeleteMemory(c *gin.Context) {
	memoryID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	if err := s.memories.Delete(c.Request.Context(), sessionUserID(c), memoryID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.categories.List(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	category, err := s.categories.CreateCustom(c.Request.Context(), sessionUserID(c), req.Name, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

type uploadRequest struct {
	DataBase64  string `json:"data_base64" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileName    string `json:"file_name"`
}

func (s *Server) handleUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.DataBase64)
	if err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid base64 payload", err))
		return
	}

	url, err := s.files.Save(data, req.ContentType, req.FileName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file_url": url})
}

type extractTextRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	MimeType    string `json:"mime_type" binding:"required"`
}

func (s *Server) handleExtractText(c *gin.Context) {
	var req extractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		s.writeError(c, apperr.Wrap(apperr.Validation, "invalid base64 payload", err))
		return
	}

	text, err := s.memories.ExtractText(c.Request.Context(), data, req.MimeType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// pathID parses a numeric path parameter, writing a Validation error on failure.
func (s *Server) pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		s.writeError(c, apperr.Newf(apperr.Validation, "invalid %s", name))
		return 0, false
	}
	return uint(id), true
}
