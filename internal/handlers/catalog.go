package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/services"
)

type CatalogHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:            log.With("handler", "CatalogHandler"),
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	result, err := h.catalogService.ListPublished(c.Request.Context(), c.Query("search"), c.Query("level"), page, pageSize)
	if err != nil {
		h.log.Error("Catalog listing failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}
