package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tecelaria/internal/config"
	"tecelaria/internal/enrichment"
	"tecelaria/internal/repository"
	"tecelaria/internal/server"
	"tecelaria/internal/service"
	"tecelaria/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	adapter, err := enrichment.NewGeminiAdapter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal("enrichment adapter", zap.Error(err))
	}

	files, err := storage.NewFileStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal("file store", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	memoryRepo := repository.NewMemoryRepository(db)
	kitRepo := repository.NewKitRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	categorySvc := service.NewCategoryService(categoryRepo)
	questionSvc := service.NewQuestionService(questionRepo)
	memorySvc := service.NewMemoryService(memoryRepo, categorySvc, questionSvc, adapter, logger)
	kitSvc := service.NewKitService(kitRepo, userRepo)
	dashboardSvc := service.NewDashboardService(kitSvc, questionSvc, memoryRepo)
	digestSvc := service.NewDigestService(kitRepo, logger)

	api := server.New(authSvc, categorySvc, questionSvc, memorySvc, kitSvc, dashboardSvc, files, logger)

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.DigestInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.DigestInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := digestSvc.Run(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("digest run failed", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("schedule digest", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped with error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
