package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
	"github.com/yungbote/coursebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

func (h *CourseHandler) Create(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	var input services.CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalidBody(c)
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), nil, rd.UserID, input)
	if err != nil {
		h.log.Error("Create course failed", "error", err, "user_id", rd.UserID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"course": course})
}

func (h *CourseHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courses, err := h.courseService.ListForOwner(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		h.log.Error("List courses failed", "error", err, "user_id", rd.UserID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) ListTrash(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courses, err := h.courseService.ListTrashForOwner(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		h.log.Error("List course trash failed", "error", err, "user_id", rd.UserID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) Get(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	course, err := h.courseService.GetForOwner(c.Request.Context(), nil, rd.UserID, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Update(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	var input services.UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalidBody(c)
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), nil, rd.UserID, courseID, input)
	if err != nil {
		h.log.Error("Update course failed", "error", err, "course_id", courseID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	course, err := h.courseService.SoftDelete(c.Request.Context(), nil, rd.UserID, courseID)
	if err != nil {
		h.log.Error("Delete course failed", "error", err, "course_id", courseID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Restore(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	course, err := h.courseService.Restore(c.Request.Context(), nil, rd.UserID, courseID)
	if err != nil {
		h.log.Error("Restore course failed", "error", err, "course_id", courseID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

// UploadThumbnail replaces the course thumbnail with the uploaded image.
func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("thumbnail")
	if err != nil {
		RespondError(c, apierr.Validation(fmt.Errorf("thumbnail image is required")))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, apierr.Validation(fmt.Errorf("could not read thumbnail image")))
		return
	}
	defer file.Close()

	course, err := h.courseService.UploadThumbnail(c.Request.Context(), rd.UserID, courseID, fileHeader.Filename, file)
	if err != nil {
		h.log.Error("Thumbnail upload failed", "error", err, "course_id", courseID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, apierr.Validation(fmt.Errorf("invalid %s", name)))
		return uuid.Nil, false
	}
	return id, true
}

func respondUnauthorized(c *gin.Context) {
	RespondError(c, apierr.Unauthorized(fmt.Errorf("authentication required")))
}

func respondInvalidBody(c *gin.Context) {
	RespondError(c, apierr.Validation(fmt.Errorf("invalid request body")))
}
