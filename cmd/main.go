package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/coursebridge-backend/internal/clients/redis"
	"github.com/yungbote/coursebridge-backend/internal/db"
	"github.com/yungbote/coursebridge-backend/internal/handlers"
	"github.com/yungbote/coursebridge-backend/internal/middleware"
	"github.com/yungbote/coursebridge-backend/internal/observability"
	"github.com/yungbote/coursebridge-backend/internal/platform/envutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/server"
	"github.com/yungbote/coursebridge-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "coursebridge-backend",
		Environment: envutil.Str("DEPLOY_ENV", "development"),
		Version:     envutil.Str("SERVICE_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := envutil.Str("JWT_SECRET_KEY", "defaultsecret")
	sweepInterval := time.Duration(envutil.Int("RETENTION_SWEEP_INTERVAL_SECONDS", 3600)) * time.Second

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	courseRepo := repos.NewCourseRepo(thePG, log)
	sectionRepo := repos.NewSectionRepo(thePG, log)
	lectureRepo := repos.NewLectureRepo(thePG, log)
	enrollmentRepo := repos.NewEnrollmentRepo(thePG, log)

	// Clients
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	workQueue, err := redis.NewWorkQueue(log)
	if err != nil {
		log.Error("Could not init WorkQueue", "error", err)
		os.Exit(1)
	}
	defer workQueue.Close()

	// Services
	log.Info("Setting up services from main...")
	verifier := services.NewOwnershipVerifier(courseRepo, sectionRepo, lectureRepo)
	authService := services.NewAuthService(log, jwtSecretKey)
	courseService := services.NewCourseService(thePG, log, courseRepo, verifier, bucketService)
	sectionService := services.NewSectionService(thePG, log, courseRepo, sectionRepo, verifier)
	lectureService := services.NewLectureService(thePG, log, courseRepo, sectionRepo, lectureRepo, verifier)
	videoService := services.NewVideoService(thePG, log, lectureRepo, verifier, bucketService, workQueue)
	catalogService := services.NewCatalogService(thePG, log, courseRepo)
	enrollmentService := services.NewEnrollmentService(thePG, log, courseRepo, enrollmentRepo)
	sweeper := services.NewRetentionSweeper(thePG, log, courseRepo, sectionRepo, lectureRepo, bucketService)

	// Background work
	videoService.StartResultConsumer(ctx)
	sweeper.Start(ctx, sweepInterval)

	// Handlers
	log.Info("Setting up handlers from main...")
	courseHandler := handlers.NewCourseHandler(log, courseService)
	sectionHandler := handlers.NewSectionHandler(log, sectionService)
	lectureHandler := handlers.NewLectureHandler(log, lectureService, videoService)
	catalogHandler := handlers.NewCatalogHandler(log, catalogService)
	enrollmentHandler := handlers.NewEnrollmentHandler(log, enrollmentService)
	adminHandler := handlers.NewAdminHandler(log, sweeper)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	traceMiddleware := middleware.NewTraceMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:    authMiddleware,
		TraceMiddleware:   traceMiddleware,
		CourseHandler:     courseHandler,
		SectionHandler:    sectionHandler,
		LectureHandler:    lectureHandler,
		CatalogHandler:    catalogHandler,
		EnrollmentHandler: enrollmentHandler,
		AdminHandler:      adminHandler,
	})

	port := envutil.Str("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
