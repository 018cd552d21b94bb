// Package server exposes the HTTP API: auth, user, memories, questions and
// kits namespaces under /api/v1, plus the static uploads mount.
package server

import (
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"

	"tecelaria/internal/service"
	"tecelaria/internal/storage"
)

// Server aggregates the HTTP handlers with the services they call.
type Server struct {
	auth       *service.AuthService
	categories *service.CategoryService
	questions  *service.QuestionService
	memories   *service.MemoryService
	kits       *service.KitService
	dashboard  *service.DashboardService
	files      *storage.FileStore
	logger     *zap.Logger
}

func New(
	auth *service.AuthService,
	categories *service.CategoryService,
	questions *service.QuestionService,
	memories *service.MemoryService,
	kits *service.KitService,
	dashboard *service.DashboardService,
	files *storage.FileStore,
	logger *zap.Logger,
) *Server {
	return &Server{
		auth:       auth,
		categories: categories,
		questions:  questions,
		memories:   memories,
		kits:       kits,
		dashboard:  dashboard,
		files:      files,
		logger:     logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.Static("/uploads", s.files.Dir())

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", s.handleSignup)
		auth.POST("/login", s.handleLogin)
		auth.GET("/session", s.requireSession(), s.handleSession)
		auth.POST("/logout", s.requireSession(), s.handleLogout)
	}

	user := api.Group("/user", s.requireSession())
	{
		user.GET("/profile", s.handleGetProfile)
		user.PUT("/profile", s.handleUpdateProfile)
		user.GET("/dashboard", s.handleDashboard)
		user.POST("/kit/activate", s.handleActivateOwnKit)
	}

	memories := api.Group("/memories", s.requireSession())
	{
		memories.GET("", s.handleListMemories)
		memories.POST("/process", s.handleProcessMemory)
		memories.GET("/categories", s.handleListCategories)
		memories.POST("/categories", s.handleCreateCategory)
		memories.POST("/upload", s.handleUpload)
		memories.POST("/extract-text", s.handleExtractText)
		memories.GET("/:id", s.handleGetMemory)
		memories.PUT("/:id", s.handleUpdateMemory)
		memories.DELETE("/:id", s.handleDeleteMemory)
	}

	questions := api.Group("/questions", s.requireSession())
	{
		questions.GET("", s.handleListQuestions)
		questions.GET("/random", s.handleRandomQuestion)
		questions.GET("/progress", s.handleProgress)
		questions.GET("/answered", s.handleAnsweredIDs)
	}

	kits := api.Group("/kits", s.requireSession())
	{
		kits.POST("", s.handleCreateKit)
		kits.GET("", s.handleListKits)
		kits.GET("/:id", s.handleGetKit)
		kits.POST("/:id/members", s.handleAddKitMember)
		kits.DELETE("/:id/members/:userId", s.handleRemoveKitMember)
	}

	return router
}
