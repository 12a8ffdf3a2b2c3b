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

type LectureHandler struct {
	log            *logger.Logger
	lectureService services.LectureService
	videoService   services.VideoService
}

func NewLectureHandler(log *logger.Logger, lectureService services.LectureService, videoService services.VideoService) *LectureHandler {
	return &LectureHandler{
		log:            log.With("handler", "LectureHandler"),
		lectureService: lectureService,
		videoService:   videoService,
	}
}

func (h *LectureHandler) Create(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalidBody(c)
		return
	}
	lecture, err := h.lectureService.Create(c.Request.Context(), rd.UserID, sectionID, body.Title)
	if err != nil {
		h.log.Error("Create lecture failed", "error", err, "section_id", sectionID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"lecture": lecture})
}

func (h *LectureHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	lectures, err := h.lectureService.ListActive(c.Request.Context(), nil, rd.UserID, sectionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"lectures": lectures})
}

func (h *LectureHandler) ListTrash(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	lectures, err := h.lectureService.ListTrash(c.Request.Context(), nil, rd.UserID, sectionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"lectures": lectures})
}

func (h *LectureHandler) Update(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	lectureID, ok := parseIDParam(c, "lectureId")
	if !ok {
		return
	}
	var input services.UpdateLectureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalidBody(c)
		return
	}
	lecture, err := h.lectureService.Update(c.Request.Context(), nil, rd.UserID, lectureID, input)
	if err != nil {
		h.log.Error("Update lecture failed", "error", err, "lecture_id", lectureID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"lecture": lecture})
}

func (h *LectureHandler) Delete(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	lectureID, ok := parseIDParam(c, "lectureId")
	if !ok {
		return
	}
	lecture, err := h.lectureService.SoftDelete(c.Request.Context(), nil, rd.UserID, lectureID)
	if err != nil {
		h.log.Error("Delete lecture failed", "error", err, "lecture_id", lectureID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"lecture": lecture})
}

func (h *LectureHandler) Restore(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	lectureID, ok := parseIDParam(c, "lectureId")
	if !ok {
		return
	}
	lecture, err := h.lectureService.Restore(c.Request.Context(), rd.UserID, lectureID)
	if err != nil {
		h.log.Error("Restore lecture failed", "error", err, "lecture_id", lectureID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"lecture": lecture})
}

// UploadVideo stores the raw video and queues transcoding. The 202 response
// carries the lecture as it stands; the worker result lands asynchronously.
func (h *LectureHandler) UploadVideo(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	lectureID, ok := parseIDParam(c, "lectureId")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("video")
	if err != nil {
		RespondError(c, apierr.Validation(fmt.Errorf("video file is required")))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, apierr.Validation(fmt.Errorf("could not read video file")))
		return
	}
	defer file.Close()

	lecture, err := h.videoService.AcceptUpload(c.Request.Context(), rd.UserID, lectureID, fileHeader.Filename, file)
	if err != nil {
		h.log.Error("Video upload failed", "error", err, "lecture_id", lectureID)
		RespondError(c, err)
		return
	}
	RespondAccepted(c, gin.H{"lecture": lecture, "status": "processing"})
}
