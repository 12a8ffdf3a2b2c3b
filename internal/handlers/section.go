package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/services"
)

type SectionHandler struct {
	log            *logger.Logger
	sectionService services.SectionService
}

func NewSectionHandler(log *logger.Logger, sectionService services.SectionService) *SectionHandler {
	return &SectionHandler{
		log:            log.With("handler", "SectionHandler"),
		sectionService: sectionService,
	}
}

func (h *SectionHandler) Create(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
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
	section, err := h.sectionService.Create(c.Request.Context(), rd.UserID, courseID, body.Title)
	if err != nil {
		h.log.Error("Create section failed", "error", err, "course_id", courseID)
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"section": section})
}

func (h *SectionHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	sections, err := h.sectionService.ListActive(c.Request.Context(), nil, rd.UserID, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}

func (h *SectionHandler) ListTrash(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	sections, err := h.sectionService.ListTrash(c.Request.Context(), nil, rd.UserID, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}

func (h *SectionHandler) Update(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	var input services.UpdateSectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondInvalidBody(c)
		return
	}
	section, err := h.sectionService.Update(c.Request.Context(), nil, rd.UserID, sectionID, input)
	if err != nil {
		h.log.Error("Update section failed", "error", err, "section_id", sectionID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"section": section})
}

func (h *SectionHandler) Delete(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	section, err := h.sectionService.SoftDelete(c.Request.Context(), nil, rd.UserID, sectionID)
	if err != nil {
		h.log.Error("Delete section failed", "error", err, "section_id", sectionID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"section": section})
}

func (h *SectionHandler) Restore(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		respondUnauthorized(c)
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	section, err := h.sectionService.Restore(c.Request.Context(), rd.UserID, sectionID)
	if err != nil {
		h.log.Error("Restore section failed", "error", err, "section_id", sectionID)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"section": section})
}
