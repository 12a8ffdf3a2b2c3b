package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/coursebridge-backend/internal/handlers"
	"github.com/yungbote/coursebridge-backend/internal/middleware"
	"github.com/yungbote/coursebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/envutil"
)

type RouterConfig struct {
	AuthMiddleware    *middleware.AuthMiddleware
	TraceMiddleware   *middleware.TraceMiddleware
	CourseHandler     *handlers.CourseHandler
	SectionHandler    *handlers.SectionHandler
	LectureHandler    *handlers.LectureHandler
	CatalogHandler    *handlers.CatalogHandler
	EnrollmentHandler *handlers.EnrollmentHandler
	AdminHandler      *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("coursebridge-backend"))
	if cfg.TraceMiddleware != nil {
		router.Use(cfg.TraceMiddleware.RequestTrace())
	}

	origins := strings.Split(envutil.Str("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	api.GET("/courses", cfg.CatalogHandler.List)

	// ===============
	// || Student   ||
	// ===============
	student := api.Group("/")
	student.Use(cfg.AuthMiddleware.RequireAuth())
	student.POST("/courses/:courseId/enroll", cfg.EnrollmentHandler.Enroll)
	student.GET("/enrollments", cfg.EnrollmentHandler.ListMine)

	// ================
	// || Instructor ||
	// ================
	instructor := api.Group("/instructor")
	instructor.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRole(ctxutil.RoleInstructor, ctxutil.RoleAdmin))
	// Courses
	instructor.POST("/courses", cfg.CourseHandler.Create)
	instructor.GET("/courses", cfg.CourseHandler.List)
	instructor.GET("/courses/trash", cfg.CourseHandler.ListTrash)
	instructor.GET("/courses/:courseId", cfg.CourseHandler.Get)
	instructor.PATCH("/courses/:courseId", cfg.CourseHandler.Update)
	instructor.DELETE("/courses/:courseId", cfg.CourseHandler.Delete)
	instructor.POST("/courses/:courseId/restore", cfg.CourseHandler.Restore)
	instructor.PATCH("/courses/:courseId/thumbnail", cfg.CourseHandler.UploadThumbnail)
	// Sections
	instructor.POST("/courses/:courseId/sections", cfg.SectionHandler.Create)
	instructor.GET("/courses/:courseId/sections", cfg.SectionHandler.List)
	instructor.GET("/courses/:courseId/sections/trash", cfg.SectionHandler.ListTrash)
	instructor.PATCH("/sections/:sectionId", cfg.SectionHandler.Update)
	instructor.DELETE("/sections/:sectionId", cfg.SectionHandler.Delete)
	instructor.POST("/sections/:sectionId/restore", cfg.SectionHandler.Restore)
	// Lectures
	instructor.POST("/sections/:sectionId/lectures", cfg.LectureHandler.Create)
	instructor.GET("/sections/:sectionId/lectures", cfg.LectureHandler.List)
	instructor.GET("/sections/:sectionId/lectures/trash", cfg.LectureHandler.ListTrash)
	instructor.PATCH("/lectures/:lectureId", cfg.LectureHandler.Update)
	instructor.DELETE("/lectures/:lectureId", cfg.LectureHandler.Delete)
	instructor.POST("/lectures/:lectureId/restore", cfg.LectureHandler.Restore)
	instructor.POST("/lectures/:lectureId/video", cfg.LectureHandler.UploadVideo)

	// ===============
	// || Admin     ||
	// ===============
	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRole(ctxutil.RoleAdmin))
	admin.POST("/retention/sweep", cfg.AdminHandler.TriggerSweep)

	return router
}
