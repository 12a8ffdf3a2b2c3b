package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/services"
)

type EnrollmentHandler struct {
	log               *logger.Logger
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(log *logger.Logger, enrollmentService services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:               log.With("handler", "EnrollmentHandler"),
		enrollmentService: enrollmentService,
	}
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		h.log.Error("Enroll failed", "error", err, "course_id", courseID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	enrollments, err := h.enrollmentService.ListForStudent(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("List enrollments failed", "error", err, "user_id", rd.UserID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"enrollments": enrollments})
}
